package route

import (
	"heliroute/internal/geo"
	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

// BuildLegs returns one leg per consecutive waypoint pair. Fewer than two
// waypoints yield no legs. Waypoints must already have valid coordinates.
func BuildLegs(wps []models.Waypoint, p performance.Profile, w *models.WindVector, adj WindAdjuster) []Leg {
	if len(wps) < 2 {
		return []Leg{}
	}

	legs := make([]Leg, 0, len(wps)-1)
	for i := 1; i < len(wps); i++ {
		from, to := wps[i-1].Coordinates, wps[i].Coordinates
		leg := Leg{
			FromIndex:      i - 1,
			ToIndex:        i,
			From:           from,
			To:             to,
			DistanceNm:     geo.Distance(from, to),
			BearingDegrees: geo.Bearing(from, to),
		}

		course := leg.BearingDegrees
		if w != nil && adj != nil {
			course = adj.Course(from, to)
		}
		timeLeg(&leg, course, p, w, adj)
		legs = append(legs, leg)
	}
	return legs
}

// retimeLegs recomputes time and fuel for legs whose geometry is already
// known, leaving distance and bearing untouched.
func retimeLegs(in []Leg, p performance.Profile, w *models.WindVector, adj WindAdjuster) []Leg {
	legs := make([]Leg, len(in))
	for i, leg := range in {
		timeLeg(&leg, leg.BearingDegrees, p, w, adj)
		legs[i] = leg
	}
	return legs
}

func timeLeg(leg *Leg, course float64, p performance.Profile, w *models.WindVector, adj WindAdjuster) {
	leg.TimeIsWindAdjusted = false
	leg.TimeHours = leg.DistanceNm / p.CruiseSpeedKnots

	if w != nil && adj != nil {
		if h, ok := adj.AdjustedTime(leg.DistanceNm, p.CruiseSpeedKnots, course, *w); ok {
			leg.TimeHours = h
			leg.TimeIsWindAdjusted = true
		}
	}
	leg.FuelLbs = leg.TimeHours * p.FuelBurnLbsPerHour
}
