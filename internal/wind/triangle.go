// Package wind solves the wind triangle for a leg so flight time can account
// for head, tail and cross wind.
package wind

import (
	"math"

	"heliroute/internal/geo"
	"heliroute/pkg/models"
)

// Triangle is the stock wind adjuster. It is stateless.
type Triangle struct{}

func (Triangle) Course(from, to models.Coordinates) float64 {
	return geo.Bearing(from, to)
}

// GroundSpeed returns the ground speed and wind correction angle for flying
// courseDeg at trueAirspeed with the given wind. ok is false when the wind
// cannot be corrected for or leaves no forward ground speed.
func GroundSpeed(trueAirspeed, courseDeg float64, w models.WindVector) (gs, wcaDeg float64, ok bool) {
	if trueAirspeed <= 0 {
		return 0, 0, false
	}
	if w.SpeedKnots <= 0 {
		return trueAirspeed, 0, true
	}

	theta := toRad(w.DirectionDegrees - courseDeg)
	ratio := w.SpeedKnots * math.Sin(theta) / trueAirspeed
	if math.Abs(ratio) > 1 {
		return 0, 0, false
	}
	wca := math.Asin(ratio)
	gs = trueAirspeed*math.Cos(wca) - w.SpeedKnots*math.Cos(theta)
	if gs <= 0 {
		return 0, 0, false
	}
	return gs, wca * 180 / math.Pi, true
}

// AdjustedTime is the flight time in hours for distanceNm along courseDeg.
func (Triangle) AdjustedTime(distanceNm, cruiseSpeedKnots, courseDeg float64, w models.WindVector) (float64, bool) {
	if distanceNm <= 0 {
		return 0, true
	}
	gs, _, ok := GroundSpeed(cruiseSpeedKnots, courseDeg, w)
	if !ok {
		return 0, false
	}
	return distanceNm / gs, true
}

// HeadwindComponent is positive for a headwind and negative for a tailwind.
func HeadwindComponent(courseDeg float64, w models.WindVector) float64 {
	return w.SpeedKnots * math.Cos(toRad(w.DirectionDegrees-courseDeg))
}

func CrosswindComponent(courseDeg float64, w models.WindVector) float64 {
	return w.SpeedKnots * math.Sin(toRad(w.DirectionDegrees-courseDeg))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
