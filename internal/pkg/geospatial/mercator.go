package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxMercatorLat is the latitude at which Web Mercator becomes square.
const MaxMercatorLat = 85.05112878

// ErrOutOfProjectionRange is returned for latitudes beyond MaxMercatorLat.
var ErrOutOfProjectionRange = errors.New("latitude outside mercator range")

// ClampLatitude pins lat to the Mercator-safe band.
func ClampLatitude(lat float64) float64 {
	return math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lat))
}

// Mercator projects a WGS84 coordinate to spherical (EPSG:3857) metres.
func Mercator(lat, lon float64) (x, y float64, err error) {
	if math.IsNaN(lat) || math.Abs(lat) > MaxMercatorLat {
		return 0, 0, fmt.Errorf("%w: %v", ErrOutOfProjectionRange, lat)
	}
	p := project.Point(orb.Point{lon, lat}, project.WGS84.ToMercator)
	return p.X(), p.Y(), nil
}

// InverseMercator converts EPSG:3857 metres back to latitude and longitude.
func InverseMercator(x, y float64) (lat, lon float64) {
	p := project.Point(orb.Point{x, y}, project.Mercator.ToWGS84)
	return p.Lat(), p.Lon()
}

// MercatorY returns ln(tan(π/4 + φ/2)) expressed in degrees, so that a
// latitude span can be compared to a longitude span on the same scale.
func MercatorY(lat float64) float64 {
	lat = ClampLatitude(lat)
	return toDeg(math.Log(math.Tan(math.Pi/4 + toRad(lat)/2)))
}

// InverseMercatorY is the inverse of MercatorY.
func InverseMercatorY(y float64) float64 {
	return toDeg(2*math.Atan(math.Exp(toRad(y))) - math.Pi/2)
}
