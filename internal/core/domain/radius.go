package domain

import "math"

// Radius approximates circles of varying size around a fixed centre.
type Radius struct {
	Center GeoPoint
	// per-vertex offsets in degrees for a 1 km radius
	offsets []GeoPoint
}

// NewRadius precomputes a vertex every quality degrees around center.
// A quality outside (0, 360) falls back to 10.
func NewRadius(center GeoPoint, quality int) *Radius {
	if quality <= 0 || quality >= 360 {
		quality = 10
	}
	latConv := center.LatConv()
	lonConv := center.LonConv()
	r := &Radius{Center: center}
	for deg := 0; deg < 360; deg += quality {
		rad := float64(deg) * math.Pi / 180
		r.offsets = append(r.offsets, GeoPoint{
			Lat: math.Cos(rad) / latConv,
			Lon: math.Sin(rad) / lonConv,
		})
	}
	return r
}

// Polyline returns a closed ring of radiusKm around the centre.
func (r *Radius) Polyline(radiusKm float64, color string) *Polyline {
	pts := make([]GeoPoint, 0, len(r.offsets)+1)
	for _, o := range r.offsets {
		pts = append(pts, GeoPoint{
			Lat: r.Center.Lat + radiusKm*o.Lat,
			Lon: r.Center.Lon + radiusKm*o.Lon,
		})
	}
	if len(pts) > 0 {
		pts = append(pts, pts[0])
	}
	return NewPolyline(pts, true, PolylineStyle{Color: color})
}
