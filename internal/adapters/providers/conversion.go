package providers

import (
	"fmt"
	"math"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

// pointCodec converts between WGS84 and a provider's coordinate space.
type pointCodec interface {
	toNative(p domain.GeoPoint) (domain.NativePoint, error)
	fromNative(p domain.NativePoint) (domain.GeoPoint, error)
}

// zoomCodec converts between canonical and native zoom numbering.
type zoomCodec interface {
	toNative(zoom int) float64
	fromNative(native float64) int
	zoomRange() (lo, hi int)
}

// conversion pairs a point codec with a zoom codec.
type conversion struct {
	point pointCodec
	zoom  zoomCodec
}

func (c conversion) ToNative(p domain.GeoPoint) (domain.NativePoint, error) {
	return c.point.toNative(p)
}

func (c conversion) FromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	return c.point.fromNative(p)
}

func (c conversion) ZoomToNative(zoom int) float64     { return c.zoom.toNative(zoom) }
func (c conversion) ZoomFromNative(native float64) int { return c.zoom.fromNative(native) }
func (c conversion) ZoomRange() (int, int)             { return c.zoom.zoomRange() }

// degrees: X is longitude, Y is latitude.
type degrees struct{}

func (degrees) toNative(p domain.GeoPoint) (domain.NativePoint, error) {
	if !p.Valid() {
		return domain.NativePoint{}, fmt.Errorf("%w: %s", domain.ErrInvalidCoordinate, p)
	}
	return domain.NativePoint{X: p.Lon, Y: p.Lat}, nil
}

func (degrees) fromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	return domain.NewGeoPoint(p.Y, p.X)
}

// arcMinutes: degrees scaled by 60.
type arcMinutes struct{}

func (arcMinutes) toNative(p domain.GeoPoint) (domain.NativePoint, error) {
	if !p.Valid() {
		return domain.NativePoint{}, fmt.Errorf("%w: %s", domain.ErrInvalidCoordinate, p)
	}
	return domain.NativePoint{X: p.Lon * 60, Y: p.Lat * 60}, nil
}

func (arcMinutes) fromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	return domain.NewGeoPoint(p.Y/60, p.X/60)
}

// sphericalMercator: EPSG:3857 metres.
type sphericalMercator struct{}

func (sphericalMercator) toNative(p domain.GeoPoint) (domain.NativePoint, error) {
	x, y, err := geospatial.Mercator(p.Lat, p.Lon)
	if err != nil {
		return domain.NativePoint{}, err
	}
	return domain.NativePoint{X: x, Y: y}, nil
}

func (sphericalMercator) fromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return domain.GeoPoint{}, fmt.Errorf("%w: NaN metres", domain.ErrInvalidCoordinate)
	}
	lat, lon := geospatial.InverseMercator(p.X, p.Y)
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// linearZoom maps canonical zoom z to sign*z + offset. Results are clamped to
// the canonical range [lo, hi].
type linearZoom struct {
	sign   int
	offset int
	lo, hi int
}

func (l linearZoom) clamp(z int) int {
	return max(l.lo, min(l.hi, z))
}

func (l linearZoom) toNative(zoom int) float64 {
	return float64(l.sign*l.clamp(zoom) + l.offset)
}

func (l linearZoom) fromNative(native float64) int {
	n := int(math.Round(native))
	return l.clamp((n - l.offset) * l.sign)
}

func (l linearZoom) zoomRange() (int, int) { return l.lo, l.hi }

// canvasWidthZoom expresses zoom as the arc-minutes spanned by one tile.
type canvasWidthZoom struct {
	lo, hi int
}

func (c canvasWidthZoom) toNative(zoom int) float64 {
	zoom = max(c.lo, min(c.hi, zoom))
	return geospatial.DegreesFromZoom(geospatial.TileSize, float64(zoom)) * 60
}

func (c canvasWidthZoom) fromNative(native float64) int {
	z := geospatial.ZoomFromDegrees(geospatial.TileSize, native/60)
	if math.IsInf(z, 1) {
		return c.hi
	}
	return max(c.lo, min(c.hi, int(math.Round(z))))
}

func (c canvasWidthZoom) zoomRange() (int, int) { return c.lo, c.hi }
