// Package mapbridge is the public surface of the map abstraction: sessions,
// coordinates, bounding boxes and the overlays placed on a map. Everything
// else stays internal.
package mapbridge

import (
	"context"
	"log/slog"

	"github.com/samirrijal/mapbridge/internal/adapters/providers"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

type (
	Session     = usecases.Session
	GeoPoint    = domain.GeoPoint
	BoundingBox = domain.BoundingBox
	Marker      = domain.Marker
	Polyline    = domain.Polyline

	ProviderID    = domain.ProviderID
	MarkerOptions = domain.MarkerOptions
	PolylineStyle = domain.PolylineStyle
	Filter        = domain.Filter
	Event         = domain.Event
	Viewport      = usecases.Viewport
	Fit           = usecases.Fit
	Command       = ports.Command
	CommandSink   = ports.CommandSink
)

const (
	Google        = providers.ProviderGoogle
	OpenStreetMap = providers.ProviderOpenStreetMap
	Yahoo         = providers.ProviderYahoo
	Microsoft     = providers.ProviderMicrosoft
	OpenLayers    = providers.ProviderOpenLayers
	MapQuest      = providers.ProviderMapQuest
	OpenSpace     = providers.ProviderOpenSpace
	Map24         = providers.ProviderMap24
)

var (
	NewGeoPoint    = domain.NewGeoPoint
	NewBoundingBox = domain.NewBoundingBox
	NewMarker      = domain.NewMarker
	NewPolyline    = domain.NewPolyline
)

// Options configure New.
type Options struct {
	// Element names the host container the map is drawn into.
	Element  string
	Provider ProviderID
	Viewport Viewport
	// Keys maps provider ids to API keys.
	Keys map[string]string
	// Sink receives native commands. Nil discards them.
	Sink CommandSink
	// KeepEqualMatches makes eq filters keep matching entities instead of
	// hiding them.
	KeepEqualMatches bool
	Debug            bool
	Logger           *slog.Logger
}

// New creates a session and selects its first provider. The provider starts
// loading; calls made before MarkReady are queued.
func New(ctx context.Context, id string, opts Options) (*Session, error) {
	mode := domain.EqualityHidesMatches
	if opts.KeepEqualMatches {
		mode = domain.EqualityKeepsMatches
	}
	s := usecases.NewSession(id, providers.NewRegistry(opts.Keys, opts.Sink), usecases.SessionOptions{
		Element:      opts.Element,
		Viewport:     opts.Viewport,
		EqualityMode: mode,
		Debug:        opts.Debug,
		Logger:       opts.Logger,
	})
	provider := opts.Provider
	if provider == "" {
		provider = OpenLayers
	}
	if err := s.Swap(ctx, provider); err != nil {
		s.Teardown()
		return nil, err
	}
	return s, nil
}
