package domain

import (
	"fmt"
	"math"

	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

// coordTolerance is the slack used when comparing coordinates.
const coordTolerance = 1e-9

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoPoint validates lat and returns the point. Longitude is left as given.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: lat %v lon %v", ErrInvalidCoordinate, lat, lon)
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// Valid reports whether the latitude is inside [-90, 90].
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) && p.Lat >= -90 && p.Lat <= 90
}

// Distance returns the great-circle distance to q in kilometres.
func (p GeoPoint) Distance(q GeoPoint) float64 {
	return geospatial.Haversine(p.Lat, p.Lon, q.Lat, q.Lon) / 1000
}

// Equals compares two points within a small tolerance.
func (p GeoPoint) Equals(q GeoPoint) bool {
	return math.Abs(p.Lat-q.Lat) < coordTolerance && math.Abs(p.Lon-q.Lon) < coordTolerance
}

// LatConv returns kilometres per degree of latitude at p.
func (p GeoPoint) LatConv() float64 {
	return p.Distance(GeoPoint{Lat: p.Lat + 0.1, Lon: p.Lon}) * 10
}

// LonConv returns kilometres per degree of longitude at p.
func (p GeoPoint) LonConv() float64 {
	return p.Distance(GeoPoint{Lat: p.Lat, Lon: p.Lon + 0.1}) * 10
}

// NormalizedLon wraps the longitude into [-180, 180).
func (p GeoPoint) NormalizedLon() GeoPoint {
	lon := math.Mod(p.Lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return GeoPoint{Lat: p.Lat, Lon: lon - 180}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// NativePoint is a coordinate in a provider's own projection or unit space.
type NativePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
