package providers

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

const (
	ProviderGoogle        domain.ProviderID = "google"
	ProviderOpenStreetMap domain.ProviderID = "openstreetmap"
	ProviderYahoo         domain.ProviderID = "yahoo"
	ProviderMicrosoft     domain.ProviderID = "microsoft"
	ProviderOpenLayers    domain.ProviderID = "openlayers"
	ProviderMapQuest      domain.ProviderID = "mapquest"
	ProviderOpenSpace     domain.ProviderID = "openspace"
	ProviderMap24         domain.ProviderID = "map24"
)

// Constructor builds an adapter from its options.
type Constructor func(Options) ports.ProviderAdapter

// Registry implements ports.ProviderRegistry over the built-in adapters.
type Registry struct {
	keys   map[domain.ProviderID]string
	sink   ports.CommandSink
	logger *slog.Logger
	ctors  map[domain.ProviderID]Constructor
}

// NewRegistry registers every built-in provider. keys maps provider ids to
// API keys; sink receives native commands and may be nil.
func NewRegistry(keys map[string]string, sink ports.CommandSink) *Registry {
	r := &Registry{
		keys:   make(map[domain.ProviderID]string, len(keys)),
		sink:   sink,
		logger: slog.Default(),
		ctors:  make(map[domain.ProviderID]Constructor),
	}
	for id, k := range keys {
		r.keys[domain.ProviderID(id)] = k
	}

	r.Register(ProviderGoogle, func(o Options) ports.ProviderAdapter { return NewGoogle(o) })
	r.Register(ProviderOpenStreetMap, func(o Options) ports.ProviderAdapter { return NewOpenStreetMap(o) })
	r.Register(ProviderYahoo, func(o Options) ports.ProviderAdapter { return NewYahoo(o) })
	r.Register(ProviderMicrosoft, func(o Options) ports.ProviderAdapter { return NewMicrosoft(o) })
	r.Register(ProviderOpenLayers, func(o Options) ports.ProviderAdapter { return NewOpenLayers(o) })
	r.Register(ProviderMapQuest, func(o Options) ports.ProviderAdapter { return NewMapQuest(o) })
	r.Register(ProviderOpenSpace, func(o Options) ports.ProviderAdapter { return NewOpenSpace(o) })
	r.Register(ProviderMap24, func(o Options) ports.ProviderAdapter { return NewMap24(o) })
	return r
}

// Register adds or replaces a provider constructor.
func (r *Registry) Register(id domain.ProviderID, c Constructor) {
	r.ctors[id] = c
}

// New builds a fresh adapter for id.
func (r *Registry) New(id domain.ProviderID) (ports.ProviderAdapter, error) {
	c, ok := r.ctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return c(Options{
		APIKey: r.keys[id],
		Sink:   r.sink,
		Logger: r.logger.With("provider", id),
	}), nil
}

// Available lists registered provider ids, sorted.
func (r *Registry) Available() []domain.ProviderID {
	out := make([]domain.ProviderID, 0, len(r.ctors))
	for id := range r.ctors {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
