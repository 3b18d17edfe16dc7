package route

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

const (
	WarnUsableLoadClamped    = "usable load below zero, clamped"
	WarnPassengersClamped    = "passenger capacity below zero, clamped"
	WarnFuelExceedsCapacity  = "fuel required exceeds maximum fuel capacity"
	WarnTimingRegenerated    = "timing regenerated from route geometry"
	WarnTimingNaiveEstimated = "timing estimated from total distance at cruise speed"
)

// Aggregate sums legs into route statistics for profile p.
//
// Payload is subtracted exactly once. With a useful-load profile the
// reported usable load excludes payload and payload is taken out when
// counting passengers; with a takeoff/empty-weight profile payload is taken
// out of the usable load itself.
func Aggregate(legs []Leg, p performance.Profile, payloadLbs, reserveLbs float64, w *models.WindVector) RouteStats {
	s := RouteStats{
		Legs:             make([]Leg, len(legs)),
		Aircraft:         p,
		PayloadWeightLbs: payloadLbs,
		ReserveFuelLbs:   reserveLbs,
	}
	copy(s.Legs, legs)
	if w != nil {
		wc := *w
		s.Wind = &wc
	}

	for _, leg := range legs {
		s.TotalDistanceNm += leg.DistanceNm
		s.TimeHours += leg.TimeHours
		if leg.TimeIsWindAdjusted {
			s.WindAdjusted = true
		}
	}

	finish(&s)
	return s
}

// finish derives every field that depends on TimeHours.
func finish(s *RouteStats) {
	p := s.Aircraft
	s.EstimatedTime = FormatDuration(s.TimeHours)
	s.FuelRequiredLbs = math.Round(s.TimeHours*p.FuelBurnLbsPerHour + s.ReserveFuelLbs)
	s.FuelExceedsCapacity = p.MaxFuelLbs > 0 && s.FuelRequiredLbs > p.MaxFuelLbs
	s.Warnings = nil
	if s.FuelExceedsCapacity {
		s.Warnings = append(s.Warnings, WarnFuelExceedsCapacity)
	}

	var usable, forPassengers float64
	if p.HasUsefulLoad() {
		usable = p.UsefulLoadLbs - s.FuelRequiredLbs
		forPassengers = usable - s.PayloadWeightLbs
	} else {
		usable = p.MaxTakeoffWeightLbs - p.EmptyWeightLbs - s.FuelRequiredLbs - s.PayloadWeightLbs
		forPassengers = usable
	}

	if usable < 0 {
		usable = 0
		s.Warnings = append(s.Warnings, WarnUsableLoadClamped)
	}
	s.UsableLoadLbs = usable

	s.MaxPassengers = 0
	if p.PassengerWeightLbs > 0 {
		n := math.Floor(forPassengers / p.PassengerWeightLbs)
		if n < 0 {
			n = 0
			if usable > 0 {
				s.Warnings = append(s.Warnings, WarnPassengersClamped)
			}
		}
		s.MaxPassengers = int(n)
	}
}

// FormatDuration renders hours as zero-padded HH:MM. A minute count that
// rounds to 60 carries into the hour.
func FormatDuration(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return "00:00"
	}
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", int(h), int(m))
}

// ParseDuration converts an HH:MM string back to whole minutes.
func ParseDuration(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m >= 60 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	return h*60 + m, nil
}
