package usecases

import (
	"fmt"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

// EntityStore holds a session's markers and polylines in insertion order.
// It knows nothing about providers; native handles live on the entities.
type EntityStore struct {
	markers   []*domain.Marker
	polylines []*domain.Polyline
	byMarker  map[string]*domain.Marker
	byLine    map[string]*domain.Polyline
}

// NewEntityStore creates an empty store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		byMarker: make(map[string]*domain.Marker),
		byLine:   make(map[string]*domain.Polyline),
	}
}

// AddMarker commits m. Adding an ID twice fails with domain.ErrDuplicateEntity.
func (s *EntityStore) AddMarker(m *domain.Marker) error {
	if _, ok := s.byMarker[m.ID]; ok {
		return fmt.Errorf("marker %s: %w", m.ID, domain.ErrDuplicateEntity)
	}
	s.markers = append(s.markers, m)
	s.byMarker[m.ID] = m
	return nil
}

// Marker looks up a marker by ID.
func (s *EntityStore) Marker(id string) (*domain.Marker, bool) {
	m, ok := s.byMarker[id]
	return m, ok
}

// RemoveMarker drops the marker from the store and returns it.
func (s *EntityStore) RemoveMarker(id string) (*domain.Marker, error) {
	m, ok := s.byMarker[id]
	if !ok {
		return nil, fmt.Errorf("marker %s: %w", id, domain.ErrEntityNotFound)
	}
	delete(s.byMarker, id)
	for i, x := range s.markers {
		if x == m {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			break
		}
	}
	return m, nil
}

// Markers returns a snapshot of all markers.
func (s *EntityStore) Markers() []*domain.Marker {
	out := make([]*domain.Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// AddPolyline commits p. Adding an ID twice fails with domain.ErrDuplicateEntity.
func (s *EntityStore) AddPolyline(p *domain.Polyline) error {
	if _, ok := s.byLine[p.ID]; ok {
		return fmt.Errorf("polyline %s: %w", p.ID, domain.ErrDuplicateEntity)
	}
	s.polylines = append(s.polylines, p)
	s.byLine[p.ID] = p
	return nil
}

func (s *EntityStore) Polyline(id string) (*domain.Polyline, bool) {
	p, ok := s.byLine[id]
	return p, ok
}

// RemovePolyline drops the polyline from the store and returns it.
func (s *EntityStore) RemovePolyline(id string) (*domain.Polyline, error) {
	p, ok := s.byLine[id]
	if !ok {
		return nil, fmt.Errorf("polyline %s: %w", id, domain.ErrEntityNotFound)
	}
	delete(s.byLine, id)
	for i, x := range s.polylines {
		if x == p {
			s.polylines = append(s.polylines[:i], s.polylines[i+1:]...)
			break
		}
	}
	return p, nil
}

// Polylines returns a snapshot of all polylines.
func (s *EntityStore) Polylines() []*domain.Polyline {
	out := make([]*domain.Polyline, len(s.polylines))
	copy(out, s.polylines)
	return out
}

// Len returns the number of markers and polylines.
func (s *EntityStore) Len() (markers, polylines int) {
	return len(s.markers), len(s.polylines)
}

// Bounds covers every marker location and polyline vertex. With visibleOnly
// set, hidden entities are skipped.
func (s *EntityStore) Bounds(visibleOnly bool) domain.BoundingBox {
	b := domain.EmptyBoundingBox()
	for _, m := range s.markers {
		if visibleOnly && !m.Visible {
			continue
		}
		b = b.Extend(m.Location)
	}
	for _, p := range s.polylines {
		if visibleOnly && !p.Visible {
			continue
		}
		for _, pt := range p.Points {
			b = b.Extend(pt)
		}
	}
	return b
}
