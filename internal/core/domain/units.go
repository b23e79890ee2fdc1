package domain

import "math"

const (
	kmPerMile = 1.609344
	// metres per degree of longitude at the equator
	metresPerDegree = 111200.0
)

// MilesToKM converts statute miles to kilometres.
func MilesToKM(miles float64) float64 { return miles * kmPerMile }

// KMToMiles converts kilometres to statute miles.
func KMToMiles(km float64) float64 { return km / kmPerMile }

// LonToMetres converts a longitude span at lat into metres.
func LonToMetres(lon, lat float64) float64 {
	return lon * metresPerDegree * math.Cos(lat*math.Pi/180)
}

// MetresToLon converts metres at lat into a longitude span.
func MetresToLon(m, lat float64) float64 {
	return m / (metresPerDegree * math.Cos(lat*math.Pi/180))
}
