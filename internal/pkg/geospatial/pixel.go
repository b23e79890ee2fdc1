package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// worldSize is the world pixel width at zoom.
func worldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// PixelXY converts a coordinate to world pixel space at zoom. The latitude is
// clamped to the Mercator band.
func PixelXY(lat, lon float64, zoom int) (x, y float64) {
	size := worldSize(zoom)
	x = (lon + 180) / 360 * size
	y = (0.5 - MercatorY(lat)/360) * size
	return x, y
}

// PointFromPixel is the inverse of PixelXY.
func PointFromPixel(x, y float64, zoom int) (lat, lon float64) {
	size := worldSize(zoom)
	lon = x/size*360 - 180
	lat = InverseMercatorY((0.5 - y/size) * 360)
	return lat, lon
}

// MetersPerPixel returns the ground resolution at lat and zoom.
func MetersPerPixel(lat float64, zoom int) float64 {
	return math.Cos(toRad(ClampLatitude(lat))) * 2 * math.Pi * EarthRadiusMeters / worldSize(zoom)
}

// TileAt returns the slippy-map tile containing the coordinate.
func TileAt(lat, lon float64, zoom int) maptile.Tile {
	return maptile.At(orb.Point{lon, ClampLatitude(lat)}, maptile.Zoom(zoom))
}
