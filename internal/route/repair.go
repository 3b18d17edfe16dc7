package route

import (
	"math"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

type State string

const (
	StateValid             State = "VALID"
	StateMissingOrZeroTime State = "MISSING_OR_ZERO_TIME"
	StateImplausibleTime   State = "IMPLAUSIBLE_TIME"
	StateRepaired          State = "REPAIRED"
)

// ImplausibleToleranceHours is how far a still-air time may drift from
// distance/cruise before it is treated as stale.
const ImplausibleToleranceHours = 1.0

// RepairContext is what the engine currently knows about the route. Nil
// fields fall back to the values carried by the candidate. Repair changes
// timing only, so the candidate's payload and reserve survive unless the
// context overrides them.
type RepairContext struct {
	Waypoints        []models.Waypoint    `json:"waypoints,omitempty"`
	Profile          *performance.Profile `json:"profile,omitempty"`
	Wind             *models.WindVector   `json:"wind,omitempty"`
	PayloadWeightLbs *float64             `json:"payload_weight_lbs,omitempty"`
	ReserveFuelLbs   *float64             `json:"reserve_fuel_lbs,omitempty"`
}

// Diagnose classifies the timing of s. Wind-adjusted times are never
// flagged implausible since wind can legitimately move them a long way from
// the still-air estimate. "00:00" only counts as missing when the time
// itself rounds to at least a minute; hops under 30 s legitimately show it.
func Diagnose(s RouteStats, cruiseSpeedKnots float64) State {
	if s.TotalDistanceNm > 0 && missingTime(s) {
		return StateMissingOrZeroTime
	}
	if !s.WindAdjusted && cruiseSpeedKnots > 0 {
		naive := s.TotalDistanceNm / cruiseSpeedKnots
		if math.Abs(s.TimeHours-naive) > ImplausibleToleranceHours {
			return StateImplausibleTime
		}
	}
	return StateValid
}

// Repair regenerates the timing of candidate and everything derived from
// it. Legs are rebuilt from the context waypoints when there are at least
// two, otherwise the candidate's own legs are re-timed, and as a last resort
// the candidate's total distance is flown at cruise speed. Repair always
// succeeds.
func Repair(candidate RouteStats, rc RepairContext, adj WindAdjuster) RouteStats {
	p := repairProfile(candidate, rc)
	w := rc.Wind
	if w == nil {
		w = candidate.Wind
	}
	carried := hasLoading(candidate)
	payload := pick(rc.PayloadWeightLbs, candidate.PayloadWeightLbs, carried, DefaultPayloadWeightLbs)
	reserve := pick(rc.ReserveFuelLbs, candidate.ReserveFuelLbs, carried, DefaultReserveFuelLbs)

	var out RouteStats
	switch {
	case len(rc.Waypoints) >= 2:
		out = Aggregate(BuildLegs(rc.Waypoints, p, w, adj), p, payload, reserve, w)
		out.Warnings = append(out.Warnings, WarnTimingRegenerated)
	case len(candidate.Legs) > 0:
		out = Aggregate(retimeLegs(candidate.Legs, p, w, adj), p, payload, reserve, w)
		out.Warnings = append(out.Warnings, WarnTimingRegenerated)
	default:
		out = Aggregate(nil, p, payload, reserve, w)
		out.TotalDistanceNm = candidate.TotalDistanceNm
		out.TimeHours = candidate.TotalDistanceNm / p.CruiseSpeedKnots
		finish(&out)
		out.Warnings = append(out.Warnings, WarnTimingNaiveEstimated)
	}
	return out
}

// Validate rejects negative loading overrides.
func (rc RepairContext) Validate() error {
	return validateLoading(rc.PayloadWeightLbs, rc.ReserveFuelLbs)
}

func missingTime(s RouteStats) bool {
	if s.TimeHours <= 0 || math.IsNaN(s.TimeHours) || s.EstimatedTime == "" {
		return true
	}
	return s.EstimatedTime == "00:00" && math.Round(s.TimeHours*60) >= 1
}

func repairProfile(candidate RouteStats, rc RepairContext) performance.Profile {
	if rc.Profile != nil {
		return performance.Complete(*rc.Profile)
	}
	return performance.Complete(candidate.Aircraft)
}

// hasLoading reports whether candidate came out of Aggregate, in which case
// its payload and reserve are real inputs even when zero.
func hasLoading(candidate RouteStats) bool {
	return candidate.Aircraft.Type != "" || candidate.PayloadWeightLbs > 0 || candidate.ReserveFuelLbs > 0
}

func pick(explicit *float64, carriedValue float64, carried bool, fallback float64) float64 {
	if explicit != nil {
		return math.Max(*explicit, 0)
	}
	if carried {
		return math.Max(carriedValue, 0)
	}
	return fallback
}
