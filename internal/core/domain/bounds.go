package domain

import (
	"fmt"
	"math"
)

// BoundingBox represents a geographic rectangle defined by its southwest and
// northeast corners. SouthWest.Lon may exceed NorthEast.Lon when the box
// crosses the antimeridian.
type BoundingBox struct {
	SouthWest GeoPoint `json:"southwest"`
	NorthEast GeoPoint `json:"northeast"`
	empty     bool
}

// NewBoundingBox builds a box from its corners.
func NewBoundingBox(sw, ne GeoPoint) (BoundingBox, error) {
	if !sw.Valid() || !ne.Valid() {
		return BoundingBox{}, fmt.Errorf("%w: corner outside [-90, 90]", ErrInvalidCoordinate)
	}
	if sw.Lat > ne.Lat {
		return BoundingBox{}, fmt.Errorf("%w: south %v above north %v", ErrInvalidBoundingBox, sw.Lat, ne.Lat)
	}
	return BoundingBox{SouthWest: sw, NorthEast: ne}, nil
}

// EmptyBoundingBox returns a box holding no points. The first Extend sets both
// corners.
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{empty: true}
}

// BoundingBoxFromPoints returns the minimal box covering pts.
func BoundingBoxFromPoints(pts ...GeoPoint) BoundingBox {
	b := EmptyBoundingBox()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box covers no points.
func (b BoundingBox) IsEmpty() bool { return b.empty }

// CrossesAntimeridian reports whether the box wraps past 180°.
func (b BoundingBox) CrossesAntimeridian() bool {
	return !b.empty && b.SouthWest.Lon > b.NorthEast.Lon
}

// Extend returns a box grown to include p. Points already inside leave the box
// unchanged.
func (b BoundingBox) Extend(p GeoPoint) BoundingBox {
	if b.empty {
		return BoundingBox{SouthWest: p, NorthEast: p}
	}
	out := b
	out.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
	out.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
	if b.containsLon(p.Lon) {
		return out
	}
	if b.CrossesAntimeridian() {
		// grow whichever edge is closer across the gap
		if p.Lon-b.NorthEast.Lon <= b.SouthWest.Lon-p.Lon {
			out.NorthEast.Lon = p.Lon
		} else {
			out.SouthWest.Lon = p.Lon
		}
		return out
	}
	out.SouthWest.Lon = math.Min(b.SouthWest.Lon, p.Lon)
	out.NorthEast.Lon = math.Max(b.NorthEast.Lon, p.Lon)
	return out
}

// Union returns the smallest box covering both b and o. Either box may wrap
// past 180°; the longitude arc of the result starts at one of the two western
// edges, the more westerly one on a tie.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if o.empty {
		return b
	}
	if b.empty {
		return o
	}
	_, bSpan := b.Span()
	_, oSpan := o.Span()

	best, west := math.Inf(1), 0.0
	for _, start := range []float64{b.SouthWest.Lon, o.SouthWest.Lon} {
		need := math.Max(eastOf(start, b.SouthWest.Lon)+bSpan, eastOf(start, o.SouthWest.Lon)+oSpan)
		if need < best || (need == best && start < west) {
			best, west = need, start
		}
	}

	out := BoundingBox{
		SouthWest: GeoPoint{Lat: math.Min(b.SouthWest.Lat, o.SouthWest.Lat)},
		NorthEast: GeoPoint{Lat: math.Max(b.NorthEast.Lat, o.NorthEast.Lat)},
	}
	if best >= 360 {
		out.SouthWest.Lon, out.NorthEast.Lon = -180, 180
		return out
	}
	east := west + best
	if east > 180 {
		east -= 360
	}
	out.SouthWest.Lon, out.NorthEast.Lon = west, east
	return out
}

// eastOf returns how many degrees east of from the meridian to lies.
func eastOf(from, to float64) float64 {
	return math.Mod(to-from+720, 360)
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	if b.empty {
		return false
	}
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	return b.containsLon(p.Lon)
}

func (b BoundingBox) containsLon(lon float64) bool {
	if b.CrossesAntimeridian() {
		return lon >= b.SouthWest.Lon || lon <= b.NorthEast.Lon
	}
	return lon >= b.SouthWest.Lon && lon <= b.NorthEast.Lon
}

// Span returns the latitude and longitude extent in degrees. The longitude span
// accounts for antimeridian wrap.
func (b BoundingBox) Span() (latSpan, lonSpan float64) {
	if b.empty {
		return 0, 0
	}
	latSpan = b.NorthEast.Lat - b.SouthWest.Lat
	lonSpan = b.NorthEast.Lon - b.SouthWest.Lon
	if b.CrossesAntimeridian() {
		lonSpan += 360
	}
	return latSpan, lonSpan
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	_, lonSpan := b.Span()
	c := GeoPoint{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lon: b.SouthWest.Lon + lonSpan/2,
	}
	if b.CrossesAntimeridian() {
		c = c.NormalizedLon()
	}
	return c
}

// Unwrapped returns an equivalent box whose SouthWest.Lon is not greater than
// NorthEast.Lon, shifting the western edge by -360 when the box wraps.
func (b BoundingBox) Unwrapped() BoundingBox {
	if !b.CrossesAntimeridian() {
		return b
	}
	out := b
	out.SouthWest.Lon -= 360
	return out
}

func (b BoundingBox) String() string {
	if b.empty {
		return "(empty)"
	}
	return fmt.Sprintf("(%s) - (%s)", b.SouthWest, b.NorthEast)
}
