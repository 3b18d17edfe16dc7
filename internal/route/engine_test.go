package route

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

type fixedResolver struct {
	profile performance.Profile
	calls   int
}

func (f *fixedResolver) Resolve(aircraftType, registration string) performance.Profile {
	f.calls++
	p := f.profile
	p.Registration = registration
	return p
}

func newTestEngine(t *testing.T, wind WindAdjuster) (*Engine, *fixedResolver) {
	t.Helper()
	r := &fixedResolver{profile: testProfile()}
	e := NewEngine(EngineOptions{
		Profiles: r,
		Wind:     wind,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return e, r
}

func TestEngineCalculatePublishes(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	stats := e.CalculateRouteStats(equatorRoute(), Options{AircraftType: "TEST"})

	if stats.EstimatedTime != "00:24" || stats.FuelRequiredLbs != 960 || stats.MaxPassengers != 20 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.PayloadWeightLbs != DefaultPayloadWeightLbs || stats.ReserveFuelLbs != DefaultReserveFuelLbs {
		t.Fatalf("defaults not applied: %+v", stats)
	}

	cur, ok := e.Store().Current()
	if !ok || cur.Version != 1 || cur.Stats.FuelRequiredLbs != 960 {
		t.Fatalf("snapshot not published: %+v", cur)
	}
}

func TestEngineCalculateWithWind(t *testing.T) {
	e, _ := newTestEngine(t, headwind{})
	stats := e.CalculateRouteStats(equatorRoute(), Options{
		AircraftType: "TEST",
		Wind:         &models.WindVector{SpeedKnots: 20, DirectionDegrees: 0},
	})
	if !stats.WindAdjusted || stats.Wind == nil {
		t.Fatalf("expected wind adjusted stats %+v", stats)
	}
}

func TestEngineRepairValidIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	stats := e.CalculateRouteStats(equatorRoute(), Options{})

	out, state := e.RepairRouteStats(stats, RepairContext{})
	if state != StateValid {
		t.Fatalf("expected valid got %s", state)
	}
	if out.TimeHours != stats.TimeHours || e.Store().Version() != 1 {
		t.Fatalf("valid candidate should not be rewritten, version %d", e.Store().Version())
	}
}

func TestEngineRepairWritesBackToStore(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	p := testProfile()
	p.CruiseSpeedKnots = 100
	candidate := RouteStats{TotalDistanceNm: 100, EstimatedTime: "00:00", Aircraft: p}

	out, state := e.RepairRouteStats(candidate, RepairContext{})
	if state != StateRepaired {
		t.Fatalf("expected repaired got %s", state)
	}
	if math.Abs(out.TimeHours-1) > 1e-9 || out.EstimatedTime != "01:00" {
		t.Fatalf("unexpected repair %+v", out)
	}

	cur, ok := e.Store().Current()
	if !ok || cur.Stats.EstimatedTime != "01:00" || cur.Reason != "repair" {
		t.Fatalf("repair not written back: %+v", cur)
	}
}

func TestEngineRepairResolvesPartialProfile(t *testing.T) {
	e, r := newTestEngine(t, nil)
	candidate := RouteStats{TotalDistanceNm: 150, Aircraft: performance.Profile{Type: "TEST"}}

	out, state := e.RepairRouteStats(candidate, RepairContext{})
	if state != StateRepaired || r.calls != 1 {
		t.Fatalf("expected resolver to be consulted, state=%s calls=%d", state, r.calls)
	}
	if math.Abs(out.TimeHours-1) > 1e-9 {
		t.Fatalf("expected 150 nm at 150 kt to take 1 h, got %v", out.TimeHours)
	}
}

func TestEngineRepairCurrent(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if _, _, ok := e.RepairCurrent(RepairContext{}); ok {
		t.Fatal("expected nothing to repair before first publish")
	}

	stale := Aggregate(BuildLegs(equatorRoute(), testProfile(), nil, nil), testProfile(), 2000, 600, nil)
	stale.TimeHours = 0
	stale.EstimatedTime = "00:00"
	e.Store().Publish(stale, "stale")

	stats, state, ok := e.RepairCurrent(RepairContext{})
	if !ok || state != StateRepaired || stats.EstimatedTime != "00:24" {
		t.Fatalf("unexpected repair of current: ok=%v state=%s stats=%+v", ok, state, stats)
	}
	if cur, _ := e.Store().Current(); cur.Version != 2 || cur.Stats.EstimatedTime != "00:24" {
		t.Fatalf("current not replaced: %+v", cur)
	}
}

func TestEngineRepairKeepsFerryLoading(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	zero := 0.0
	ferry := e.CalculateRouteStats(equatorRoute(), Options{PayloadWeightLbs: &zero, ReserveFuelLbs: &zero})

	stale := ferry
	stale.TimeHours = 0
	stale.EstimatedTime = "00:00"
	out, state := e.RepairRouteStats(stale, RepairContext{})
	if state != StateRepaired {
		t.Fatalf("expected repaired got %s", state)
	}
	if out.FuelRequiredLbs != ferry.FuelRequiredLbs || out.MaxPassengers != ferry.MaxPassengers {
		t.Fatalf("repair changed loading: fuel %v->%v pax %d->%d",
			ferry.FuelRequiredLbs, out.FuelRequiredLbs, ferry.MaxPassengers, out.MaxPassengers)
	}
}

func TestEngineShortHopIsValid(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	hop := []models.Waypoint{
		{Coordinates: models.Coordinates{Lon: 0, Lat: 0}},
		{Coordinates: models.Coordinates{Lon: 0.005, Lat: 0}},
	}
	stats := e.CalculateRouteStats(hop, Options{})
	if stats.EstimatedTime != "00:00" || stats.TimeHours <= 0 {
		t.Fatalf("expected a sub-minute hop, got %v h %s", stats.TimeHours, stats.EstimatedTime)
	}

	for i := 0; i < 3; i++ {
		if _, state, ok := e.RepairCurrent(RepairContext{}); !ok || state != StateValid {
			t.Fatalf("repair %d: expected valid got %s", i, state)
		}
	}
	if v := e.Store().Version(); v != 1 {
		t.Fatalf("valid hop should not be republished, version %d", v)
	}
}

func TestOptionsClampNegativeLoading(t *testing.T) {
	neg := -50.0
	opts := Options{PayloadWeightLbs: &neg, ReserveFuelLbs: &neg}
	if opts.payload() != 0 || opts.reserve() != 0 {
		t.Fatalf("expected clamp to 0, got payload=%v reserve=%v", opts.payload(), opts.reserve())
	}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	if err := (Options{}).Validate(); err != nil {
		t.Fatalf("nil loading should validate: %v", err)
	}
}
