package route

import (
	"math"
	"testing"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name  string
		stats RouteStats
		want  State
	}{
		{"valid", RouteStats{TotalDistanceNm: 100, TimeHours: 1, EstimatedTime: "01:00"}, StateValid},
		{"empty route", RouteStats{}, StateValid},
		{"zero time", RouteStats{TotalDistanceNm: 100, TimeHours: 0, EstimatedTime: "01:00"}, StateMissingOrZeroTime},
		{"zero string", RouteStats{TotalDistanceNm: 100, TimeHours: 1, EstimatedTime: "00:00"}, StateMissingOrZeroTime},
		{"missing string", RouteStats{TotalDistanceNm: 100, TimeHours: 1}, StateMissingOrZeroTime},
		{"implausible", RouteStats{TotalDistanceNm: 100, TimeHours: 2.5, EstimatedTime: "02:30"}, StateImplausibleTime},
		{"short hop rounds to zero", RouteStats{TotalDistanceNm: 0.3, TimeHours: 0.002, EstimatedTime: "00:00"}, StateValid},
		{"zero string for half a minute", RouteStats{TotalDistanceNm: 1, TimeHours: 0.0084, EstimatedTime: "00:00"}, StateMissingOrZeroTime},
		{"wind exempt", RouteStats{TotalDistanceNm: 100, TimeHours: 2.5, EstimatedTime: "02:30", WindAdjusted: true}, StateValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diagnose(tt.stats, 100); got != tt.want {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
		})
	}
}

func TestRepairConvergesFromZeroTime(t *testing.T) {
	p := testProfile()
	p.CruiseSpeedKnots = 100
	candidate := RouteStats{TotalDistanceNm: 100, TimeHours: 0, Aircraft: p, PayloadWeightLbs: 2000, ReserveFuelLbs: 600}

	if Diagnose(candidate, p.CruiseSpeedKnots) != StateMissingOrZeroTime {
		t.Fatal("expected missing time")
	}
	out := Repair(candidate, RepairContext{}, nil)
	if math.Abs(out.TimeHours-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 h got %v", out.TimeHours)
	}
	if out.EstimatedTime != "01:00" {
		t.Fatalf("expected 01:00 got %s", out.EstimatedTime)
	}
	if out.FuelRequiredLbs != 900+600 {
		t.Fatalf("expected 1500 lbs got %v", out.FuelRequiredLbs)
	}
	if out.TotalDistanceNm != 100 {
		t.Fatalf("distance should be preserved, got %v", out.TotalDistanceNm)
	}
	if Diagnose(out, p.CruiseSpeedKnots) != StateValid {
		t.Fatal("repaired stats should diagnose valid")
	}
}

func TestRepairRebuildsFromWaypoints(t *testing.T) {
	p := testProfile()
	candidate := RouteStats{TotalDistanceNm: 60, TimeHours: 3, EstimatedTime: "03:00", Aircraft: p, PayloadWeightLbs: 2000, ReserveFuelLbs: 600}
	out := Repair(candidate, RepairContext{Waypoints: equatorRoute()}, nil)

	if len(out.Legs) != 1 {
		t.Fatalf("expected 1 rebuilt leg got %d", len(out.Legs))
	}
	if out.EstimatedTime != "00:24" || out.FuelRequiredLbs != 960 {
		t.Fatalf("unexpected repaired stats %+v", out)
	}
	if !hasWarning(out, WarnTimingRegenerated) {
		t.Fatalf("expected regeneration warning, got %v", out.Warnings)
	}
}

func TestRepairRetimesCandidateLegsWithWind(t *testing.T) {
	p := testProfile()
	legs := BuildLegs(equatorRoute(), p, nil, nil)
	candidate := Aggregate(legs, p, 2000, 600, nil)
	candidate.TimeHours = 0

	w := &models.WindVector{SpeedKnots: 20}
	out := Repair(candidate, RepairContext{Wind: w}, headwind{})
	if !out.WindAdjusted || !out.Legs[0].TimeIsWindAdjusted {
		t.Fatal("expected wind adjusted repair")
	}
	if want := legs[0].DistanceNm / 130; math.Abs(out.TimeHours-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, out.TimeHours)
	}
	if out.Legs[0].DistanceNm != legs[0].DistanceNm || out.Legs[0].BearingDegrees != legs[0].BearingDegrees {
		t.Fatal("re-timing must keep leg geometry")
	}
}

func TestRepairUsesCarriedLoading(t *testing.T) {
	p := testProfile()
	p.CruiseSpeedKnots = 100
	candidate := RouteStats{TotalDistanceNm: 100, Aircraft: p, PayloadWeightLbs: 1000, ReserveFuelLbs: 400}
	out := Repair(candidate, RepairContext{}, nil)
	if out.PayloadWeightLbs != 1000 || out.ReserveFuelLbs != 400 {
		t.Fatalf("expected carried loading, got payload=%v reserve=%v", out.PayloadWeightLbs, out.ReserveFuelLbs)
	}
	if out.FuelRequiredLbs != 1300 {
		t.Fatalf("expected 1300 got %v", out.FuelRequiredLbs)
	}

	zero := 0.0
	out = Repair(candidate, RepairContext{ReserveFuelLbs: &zero}, nil)
	if out.FuelRequiredLbs != 900 {
		t.Fatalf("explicit zero reserve should win, got %v", out.FuelRequiredLbs)
	}
}

func TestRepairPartialProfileIsCompleted(t *testing.T) {
	candidate := RouteStats{TotalDistanceNm: 145, Aircraft: performance.Profile{Type: "X"}}
	out := Repair(candidate, RepairContext{}, nil)
	if math.Abs(out.TimeHours-1.0) > 1e-9 {
		t.Fatalf("expected default cruise to give 1.0 h, got %v", out.TimeHours)
	}
	if out.Aircraft.CruiseSpeedKnots != performance.Default.CruiseSpeedKnots {
		t.Fatalf("expected completed profile, got %+v", out.Aircraft)
	}
}

func TestRepairKeepsZeroLoading(t *testing.T) {
	p := testProfile()
	ferry := Aggregate(BuildLegs(equatorRoute(), p, nil, nil), p, 0, 0, nil)
	stale := ferry
	stale.TimeHours = 0
	stale.EstimatedTime = "00:00"

	out := Repair(stale, RepairContext{}, nil)
	if out.PayloadWeightLbs != 0 || out.ReserveFuelLbs != 0 {
		t.Fatalf("repair changed loading: payload=%v reserve=%v", out.PayloadWeightLbs, out.ReserveFuelLbs)
	}
	if out.FuelRequiredLbs != ferry.FuelRequiredLbs || out.MaxPassengers != ferry.MaxPassengers || out.UsableLoadLbs != ferry.UsableLoadLbs {
		t.Fatalf("repair changed derived loading: fuel %v->%v pax %d->%d",
			ferry.FuelRequiredLbs, out.FuelRequiredLbs, ferry.MaxPassengers, out.MaxPassengers)
	}
	if ferry.FuelRequiredLbs != 360 {
		t.Fatalf("expected 360 lbs without reserve got %v", ferry.FuelRequiredLbs)
	}
}

func TestRepairWithoutLoadingUsesDefaults(t *testing.T) {
	out := Repair(RouteStats{TotalDistanceNm: 145, EstimatedTime: "00:00"}, RepairContext{}, nil)
	if out.PayloadWeightLbs != DefaultPayloadWeightLbs || out.ReserveFuelLbs != DefaultReserveFuelLbs {
		t.Fatalf("expected default loading got payload=%v reserve=%v", out.PayloadWeightLbs, out.ReserveFuelLbs)
	}
}

func TestRepairClampsNegativeOverride(t *testing.T) {
	p := testProfile()
	candidate := RouteStats{TotalDistanceNm: 150, Aircraft: p, PayloadWeightLbs: 2000, ReserveFuelLbs: 600}
	neg := -100.0
	out := Repair(candidate, RepairContext{ReserveFuelLbs: &neg}, nil)
	if out.ReserveFuelLbs != 0 || out.FuelRequiredLbs != 900 {
		t.Fatalf("expected negative reserve clamped to 0, got reserve=%v fuel=%v", out.ReserveFuelLbs, out.FuelRequiredLbs)
	}
	if err := (RepairContext{ReserveFuelLbs: &neg}).Validate(); err == nil {
		t.Fatal("expected validation error for negative reserve")
	}
}
