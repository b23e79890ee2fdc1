package usecases

import (
	"fmt"
	"log/slog"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
)

// ListenerID identifies a registered listener.
type ListenerID uint64

// LegacyListener receives the click location, or nil for moveend.
type LegacyListener func(loc *domain.GeoPoint)

// Listener receives the structured event.
type Listener func(ev domain.Event) error

type listener struct {
	id       ListenerID
	kind     domain.EventKind
	legacy   LegacyListener
	modern   Listener
	receiver any
}

// EventBus delivers map events synchronously in registration order. A
// failing listener is logged and skipped; later listeners still run.
type EventBus struct {
	next      ListenerID
	listeners []listener
	logger    *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{logger: logger}
}

// AddLegacyListener registers fn for kind using the positional convention.
func (b *EventBus) AddLegacyListener(kind domain.EventKind, fn LegacyListener) ListenerID {
	return b.add(listener{kind: kind, legacy: fn})
}

// AddListener registers fn for kind. receiver is handed back in
// Event.Receiver.
func (b *EventBus) AddListener(kind domain.EventKind, fn Listener, receiver any) ListenerID {
	return b.add(listener{kind: kind, modern: fn, receiver: receiver})
}

func (b *EventBus) add(l listener) ListenerID {
	b.next++
	l.id = b.next
	b.listeners = append(b.listeners, l)
	return l.id
}

// RemoveListener unregisters id and reports whether it was present.
func (b *EventBus) RemoveListener(id ListenerID) bool {
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of listeners registered for kind.
func (b *EventBus) Len(kind domain.EventKind) int {
	n := 0
	for _, l := range b.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// Fire delivers an event to every listener of kind and returns how many
// returned without failing.
func (b *EventBus) Fire(kind domain.EventKind, loc *domain.GeoPoint, source domain.ProviderID) int {
	// listeners may add or remove listeners while running
	snapshot := make([]listener, len(b.listeners))
	copy(snapshot, b.listeners)

	delivered := 0
	for _, l := range snapshot {
		if l.kind != kind {
			continue
		}
		if err := b.deliver(l, loc, source); err != nil {
			metrics.ListenerFailures.WithLabelValues(string(kind)).Inc()
			b.logger.Warn("event listener failed", "kind", kind, "listener", l.id, "error", err)
			continue
		}
		delivered++
	}
	metrics.EventsDelivered.WithLabelValues(string(kind)).Add(float64(delivered))
	return delivered
}

func (b *EventBus) deliver(l listener, loc *domain.GeoPoint, source domain.ProviderID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()

	if l.legacy != nil {
		var arg *domain.GeoPoint
		if l.kind == domain.EventClick && loc != nil {
			p := *loc
			arg = &p
		}
		l.legacy(arg)
		return nil
	}

	ev := domain.Event{Kind: l.kind, Source: source, Receiver: l.receiver}
	if loc != nil {
		p := *loc
		ev.Location = &p
	}
	return l.modern(ev)
}

// Clear drops every listener.
func (b *EventBus) Clear() { b.listeners = nil }
