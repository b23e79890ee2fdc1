package geospatial

import "math"

const (
	// TileSize is the pixel width of the world at zoom 0.
	TileSize = 256
	// MaxZoom is the finest canonical zoom level.
	MaxZoom = 21
)

// DegreesFromZoom returns the longitude span shown across px pixels at zoom.
func DegreesFromZoom(px int, zoom float64) float64 {
	return 360 * float64(px) / math.Pow(2, zoom+8)
}

// ZoomFromDegrees returns the fractional zoom at which deg degrees of
// longitude fill px pixels. A non-positive span yields +Inf.
func ZoomFromDegrees(px int, deg float64) float64 {
	if deg <= 0 {
		return math.Inf(1)
	}
	return math.Log2(360*float64(px)/deg) - 8
}

// FitZoom returns the deepest integer zoom at which a box fits a viewport of
// width x height pixels. Latitude is measured in Mercator degrees so tall boxes
// away from the equator are not clipped. The result is rounded down and
// clamped to [0, MaxZoom].
func FitZoom(south, north, lonSpan float64, width, height int) int {
	latSpan := MercatorY(north) - MercatorY(south)
	z := math.Min(ZoomFromDegrees(width, lonSpan), ZoomFromDegrees(height, latSpan))
	switch {
	case math.IsInf(z, 1):
		return MaxZoom
	case z < 0:
		return 0
	case z > MaxZoom:
		return MaxZoom
	}
	return int(math.Floor(z))
}
