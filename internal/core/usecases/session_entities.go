package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/mapbridge/internal/core/dispatch"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// overlayOwner is implemented by *domain.Marker and *domain.Polyline.
type overlayOwner interface {
	Bind(p domain.ProviderID, h domain.OverlayHandle)
	Unbind(p domain.ProviderID)
	Handle(p domain.ProviderID) (domain.OverlayHandle, bool)
	RenderedOn() []domain.ProviderID
}

// entityRef lets markers and polylines share the add, remove and replay
// paths.
type entityRef struct {
	kind    string
	id      string
	owner   overlayOwner
	render  func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) (domain.OverlayHandle, error)
	visible func() bool
	stored  func() bool
	drop    func()
}

func (s *Session) markerRef(m *domain.Marker) entityRef {
	return entityRef{
		kind:  "marker",
		id:    m.ID,
		owner: m,
		render: func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) (domain.OverlayHandle, error) {
			return a.RenderMarker(ctx, h, m)
		},
		visible: func() bool { return m.Visible },
		stored: func() bool {
			cur, ok := s.store.Marker(m.ID)
			return ok && cur == m
		},
		drop: func() {
			if cur, ok := s.store.Marker(m.ID); ok && cur == m {
				_, _ = s.store.RemoveMarker(m.ID)
			}
		},
	}
}

func (s *Session) polylineRef(p *domain.Polyline) entityRef {
	return entityRef{
		kind:  "polyline",
		id:    p.ID,
		owner: p,
		render: func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) (domain.OverlayHandle, error) {
			return a.RenderPolyline(ctx, h, p)
		},
		visible: func() bool { return p.Visible },
		stored: func() bool {
			cur, ok := s.store.Polyline(p.ID)
			return ok && cur == p
		},
		drop: func() {
			if cur, ok := s.store.Polyline(p.ID); ok && cur == p {
				_, _ = s.store.RemovePolyline(p.ID)
			}
		},
	}
}

type renderMode int

const (
	// renderNow draws an entity that is committed only if drawing succeeds.
	renderNow renderMode = iota
	// renderQueuedAdd draws an entity committed at issue time; failure rolls
	// the add back.
	renderQueuedAdd
	// renderReplay draws a live entity on a provider swapped in later.
	renderReplay
)

func (s *Session) renderOp(ref entityRef, mode renderMode) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		if mode != renderNow && !ref.stored() {
			// removed while the operation was queued
			return nil
		}
		if _, ok := ref.owner.Handle(a.ID()); ok {
			return nil
		}
		oh, err := ref.render(ctx, a, h)
		if err != nil {
			if mode == renderQueuedAdd {
				s.discard(ctx, ref, a.ID())
			}
			return fmt.Errorf("render %s %s: %w", ref.kind, ref.id, err)
		}
		ref.owner.Bind(a.ID(), oh)

		if !ref.visible() {
			if t, ok := a.(ports.OverlayToggler); ok {
				if err := t.SetOverlayVisible(ctx, h, oh, false); err != nil {
					s.logger.Warn("could not hide filtered entity", "kind", ref.kind, "id", ref.id, "error", err)
				}
			}
		}
		return nil
	}
}

func (s *Session) removeOp(ref entityRef) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		oh, ok := ref.owner.Handle(a.ID())
		if !ok {
			return nil
		}
		if err := a.RemoveOverlay(ctx, h, oh); err != nil && !errors.Is(err, domain.ErrEntityNotFound) {
			return err
		}
		ref.owner.Unbind(a.ID())
		return nil
	}
}

// add draws ref on the active provider and commits it. When the provider is
// ready, drawing happens first and the commit only on success. Otherwise the
// entity is committed now and drawn on replay, where a failure rolls the add
// back.
func (s *Session) add(ctx context.Context, ref entityRef, commit func() error) error {
	if s.closed {
		return dispatch.ErrTornDown
	}
	if s.active == "" {
		return errNoProvider
	}
	name := "add" + titleKind(ref.kind)

	if _, _, ok := s.live(); ok {
		if err := s.dispatcher.Do(ctx, s.active, name, s.renderOp(ref, renderNow)); err != nil {
			return fmt.Errorf("add %s: %w", ref.kind, err)
		}
		if err := commit(); err != nil {
			_ = s.dispatcher.Do(ctx, s.active, "remove"+titleKind(ref.kind), s.removeOp(ref))
			return err
		}
		return nil
	}

	if err := commit(); err != nil {
		return err
	}
	if err := s.dispatcher.Do(ctx, s.active, name, s.renderOp(ref, renderQueuedAdd)); err != nil {
		ref.drop()
		return fmt.Errorf("add %s: %w", ref.kind, err)
	}
	return nil
}

// remove unbinds ref from every provider holding an overlay for it and then
// deletes it canonically. A failed native removal leaves the entity in place.
func (s *Session) remove(ctx context.Context, ref entityRef) error {
	if s.closed {
		return dispatch.ErrTornDown
	}
	for _, p := range ref.owner.RenderedOn() {
		if err := s.dispatcher.Do(ctx, p, "remove"+titleKind(ref.kind), s.removeOp(ref)); err != nil {
			return fmt.Errorf("remove %s %s: %w", ref.kind, ref.id, err)
		}
	}
	ref.drop()
	return nil
}

// discard undoes a queued add whose render failed on provider failed.
func (s *Session) discard(ctx context.Context, ref entityRef, failed domain.ProviderID) {
	ref.drop()
	for _, p := range ref.owner.RenderedOn() {
		if p == failed {
			continue
		}
		if err := s.dispatcher.Do(ctx, p, "remove"+titleKind(ref.kind), s.removeOp(ref)); err != nil {
			s.logger.Warn("rollback could not remove overlay", "kind", ref.kind, "id", ref.id, "provider", p, "error", err)
		}
	}
	s.logger.Warn("entity add rolled back", "kind", ref.kind, "id", ref.id, "provider", failed)
}

func titleKind(kind string) string {
	if kind == "polyline" {
		return "Polyline"
	}
	return "Marker"
}

// --- Markers ---

// AddMarker adds m to the session and draws it on the active provider.
func (s *Session) AddMarker(ctx context.Context, m *domain.Marker) error {
	if !m.Location.Valid() {
		return fmt.Errorf("add marker: %w: %s", domain.ErrInvalidCoordinate, m.Location)
	}
	if _, dup := s.store.Marker(m.ID); dup {
		return fmt.Errorf("add marker %s: %w", m.ID, domain.ErrDuplicateEntity)
	}
	return s.add(ctx, s.markerRef(m), func() error { return s.store.AddMarker(m) })
}

// AddMarkerWithData builds a marker from a loosely typed option object.
func (s *Session) AddMarkerWithData(ctx context.Context, loc domain.GeoPoint, data map[string]any) (*domain.Marker, error) {
	m := domain.NewMarker(loc, domain.MarkerOptionsFromData(data))
	if err := s.AddMarker(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Session) RemoveMarker(ctx context.Context, id string) error {
	m, ok := s.store.Marker(id)
	if !ok {
		return fmt.Errorf("remove marker %s: %w", id, domain.ErrEntityNotFound)
	}
	return s.remove(ctx, s.markerRef(m))
}

// RemoveAllMarkers removes every marker it can and joins the failures.
func (s *Session) RemoveAllMarkers(ctx context.Context) error {
	var errs []error
	for _, m := range s.store.Markers() {
		if err := s.remove(ctx, s.markerRef(m)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) Marker(id string) (*domain.Marker, bool) { return s.store.Marker(id) }
func (s *Session) Markers() []*domain.Marker               { return s.store.Markers() }

// --- Polylines ---

// AddPolyline adds p to the session and draws it on the active provider.
func (s *Session) AddPolyline(ctx context.Context, p *domain.Polyline) error {
	if len(p.Points) < 2 {
		return fmt.Errorf("add polyline: %w: need at least two points", domain.ErrInvalidCoordinate)
	}
	for i, pt := range p.Points {
		if !pt.Valid() {
			return fmt.Errorf("add polyline: %w: vertex %d %s", domain.ErrInvalidCoordinate, i, pt)
		}
	}
	if _, dup := s.store.Polyline(p.ID); dup {
		return fmt.Errorf("add polyline %s: %w", p.ID, domain.ErrDuplicateEntity)
	}
	return s.add(ctx, s.polylineRef(p), func() error { return s.store.AddPolyline(p) })
}

// AddPolylineWithData builds a polyline from points and a loosely typed
// option object.
func (s *Session) AddPolylineWithData(ctx context.Context, pts []domain.GeoPoint, data map[string]any) (*domain.Polyline, error) {
	p := domain.NewPolyline(pts, false, domain.PolylineStyle{})
	p.ApplyData(data)
	if err := s.AddPolyline(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Session) RemovePolyline(ctx context.Context, id string) error {
	p, ok := s.store.Polyline(id)
	if !ok {
		return fmt.Errorf("remove polyline %s: %w", id, domain.ErrEntityNotFound)
	}
	return s.remove(ctx, s.polylineRef(p))
}

// RemoveAllPolylines removes every polyline it can and joins the failures.
func (s *Session) RemoveAllPolylines(ctx context.Context) error {
	var errs []error
	for _, p := range s.store.Polylines() {
		if err := s.remove(ctx, s.polylineRef(p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) Polyline(id string) (*domain.Polyline, bool) { return s.store.Polyline(id) }
func (s *Session) Polylines() []*domain.Polyline               { return s.store.Polylines() }

// --- Filters ---

func (s *Session) AddFilter(f domain.Filter) error { return s.filters.Add(f) }

// RemoveFilter drops matching filters. An empty op drops every filter on
// field.
func (s *Session) RemoveFilter(field string, op domain.FilterOp, value any) int {
	return s.filters.Remove(field, op, value)
}

// ToggleFilter adds f or removes it when already active.
func (s *Session) ToggleFilter(f domain.Filter) (bool, error) { return s.filters.Toggle(f) }

func (s *Session) RemoveAllFilters()                     { s.filters.Clear() }
func (s *Session) Filters() []domain.Filter              { return s.filters.Filters() }
func (s *Session) SetEqualityMode(m domain.EqualityMode) { s.filters.SetMode(m) }

// DoFilter recomputes marker visibility and returns the visible count. show
// and hide replace the native toggle when set. Without them the active
// provider is asked to show or hide each drawn marker; a provider that cannot
// toggle overlays yields a single unsupported error after the flags have been
// updated.
func (s *Session) DoFilter(ctx context.Context, show, hide func(*domain.Marker)) (int, error) {
	count := s.filters.Apply(s.store)

	a, _, live := s.live()
	var errs []error
	for _, m := range s.store.Markers() {
		switch {
		case m.Visible && show != nil:
			show(m)
			continue
		case !m.Visible && hide != nil:
			hide(m)
			continue
		case !live:
			// drawn later with the right visibility
			continue
		}
		oh, ok := m.Handle(a.ID())
		if !ok {
			continue
		}
		if err := s.do(ctx, "setOverlayVisible", visibilityOp(oh, m.Visible)); err != nil {
			errs = append(errs, err)
			if errors.Is(err, domain.ErrUnsupported) {
				break
			}
		}
	}
	return count, errors.Join(errs...)
}
