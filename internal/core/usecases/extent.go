package usecases

import (
	"math"

	"github.com/spf13/cast"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

// Viewport is the pixel size of the map container.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fit is the outcome of a bounds-fitting operation. Clipped is set when the
// provider cannot zoom out as far as Zoom and shows its minimum zoom instead,
// so part of Bounds falls outside the view.
type Fit struct {
	Bounds  domain.BoundingBox `json:"bounds"`
	Center  domain.GeoPoint    `json:"center"`
	Zoom    int                `json:"zoom"`
	Clipped bool               `json:"clipped,omitempty"`
}

// ZoomForBoundingBox returns the deepest canonical zoom at which b fits vp.
// The result is rounded down so the box is never clipped.
func ZoomForBoundingBox(b domain.BoundingBox, vp Viewport) int {
	if b.IsEmpty() {
		return 0
	}
	_, lonSpan := b.Span()
	return geospatial.FitZoom(b.SouthWest.Lat, b.NorthEast.Lat, lonSpan, vp.Width, vp.Height)
}

// FitBounds centres b in vp.
func FitBounds(b domain.BoundingBox, vp Viewport) Fit {
	return Fit{Bounds: b, Center: b.Center(), Zoom: ZoomForBoundingBox(b, vp)}
}

// ViewBounds returns the box visible at center and zoom in vp.
func ViewBounds(center domain.GeoPoint, zoom int, vp Viewport) (domain.BoundingBox, error) {
	x, y := geospatial.PixelXY(center.Lat, center.Lon, zoom)
	south, west := geospatial.PointFromPixel(x-float64(vp.Width)/2, y+float64(vp.Height)/2, zoom)
	north, east := geospatial.PointFromPixel(x+float64(vp.Width)/2, y-float64(vp.Height)/2, zoom)
	return domain.NewBoundingBox(
		domain.GeoPoint{Lat: south, Lon: west},
		domain.GeoPoint{Lat: north, Lon: east},
	)
}

// PaddedPolylineBounds covers every polyline vertex grown by radiusKm in each
// direction, using the local km-per-degree at each vertex.
func PaddedPolylineBounds(lines []*domain.Polyline, radiusKm float64) domain.BoundingBox {
	b := domain.EmptyBoundingBox()
	for _, l := range lines {
		for _, p := range l.Points {
			dLat := radiusKm / p.LatConv()
			dLon := radiusKm / p.LonConv()
			if math.IsInf(dLon, 0) || math.IsNaN(dLon) {
				dLon = 180
			}
			b = b.Extend(domain.GeoPoint{Lat: math.Max(-90, p.Lat-dLat), Lon: p.Lon - dLon})
			b = b.Extend(domain.GeoPoint{Lat: math.Min(90, p.Lat+dLat), Lon: p.Lon + dLon})
		}
	}
	return b
}

// AttributeExtremes returns the smallest and largest numeric value of field
// across markers and polylines. ok is false when no entity holds a numeric
// value for it.
func AttributeExtremes(store *EntityStore, field string) (lo, hi float64, ok bool) {
	visit := func(v any, present bool) {
		if !present {
			return
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return
		}
		if !ok {
			lo, hi, ok = f, f, true
			return
		}
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}
	for _, m := range store.Markers() {
		visit(m.Attribute(field))
	}
	for _, p := range store.Polylines() {
		visit(p.Attribute(field))
	}
	return lo, hi, ok
}

// FilterSet is the list of active attribute filters. A marker is visible when
// it passes every filter.
type FilterSet struct {
	filters []domain.Filter
	mode    domain.EqualityMode
}

// NewFilterSet creates an empty set using mode for eq filters.
func NewFilterSet(mode domain.EqualityMode) *FilterSet {
	return &FilterSet{mode: mode}
}

// Add appends f after validating it.
func (fs *FilterSet) Add(f domain.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	fs.filters = append(fs.filters, f)
	return nil
}

// Remove drops the filters on field matching op and value. An empty op drops
// every filter on field. It returns how many were removed.
func (fs *FilterSet) Remove(field string, op domain.FilterOp, value any) int {
	kept := fs.filters[:0]
	removed := 0
	for _, f := range fs.filters {
		match := f.Field == field && (op == "" || f.Same(domain.Filter{Field: field, Op: op, Value: value}))
		if match {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	fs.filters = kept
	return removed
}

// Toggle removes f when present and adds it otherwise. It reports whether f
// is active afterwards.
func (fs *FilterSet) Toggle(f domain.Filter) (bool, error) {
	if fs.Remove(f.Field, f.Op, f.Value) > 0 {
		return false, nil
	}
	if err := fs.Add(f); err != nil {
		return false, err
	}
	return true, nil
}

func (fs *FilterSet) Clear() { fs.filters = nil }

// Filters returns a copy of the active filters.
func (fs *FilterSet) Filters() []domain.Filter {
	out := make([]domain.Filter, len(fs.filters))
	copy(out, fs.filters)
	return out
}

func (fs *FilterSet) Mode() domain.EqualityMode { return fs.mode }

func (fs *FilterSet) SetMode(m domain.EqualityMode) { fs.mode = m }

// Passes evaluates the conjunction of all filters. No filters means visible.
func (fs *FilterSet) Passes(attrs domain.Attributes) bool {
	for _, f := range fs.filters {
		if !f.Passes(attrs, fs.mode) {
			return false
		}
	}
	return true
}

// Apply recomputes Visible on every marker and returns the visible count.
func (fs *FilterSet) Apply(store *EntityStore) int {
	visible := 0
	for _, m := range store.Markers() {
		m.Visible = fs.Passes(m.Attributes)
		if m.Visible {
			visible++
		}
	}
	return visible
}
