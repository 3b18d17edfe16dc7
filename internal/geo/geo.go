// Package geo holds the great-circle math shared by every distance and
// course calculation in heliroute.
package geo

import (
	"math"

	"heliroute/pkg/models"
)

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.07

// Distance returns the haversine great-circle distance from a to b in
// nautical miles.
func Distance(a, b models.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusNM * c
}

// Bearing returns the initial true bearing from a to b in [0, 360).
func Bearing(a, b models.Coordinates) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLon := toRad(b.Lon - a.Lon)

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeHeading(math.Atan2(x, y) * 180 / math.Pi)
}

// NormalizeHeading folds any angle in degrees into [0, 360).
func NormalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Cardinal returns the 16-point compass name for a bearing.
func Cardinal(bearing float64) string {
	dirs := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	idx := int(math.Round(NormalizeHeading(bearing)/22.5)) % 16
	return dirs[idx]
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
