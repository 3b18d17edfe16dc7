package wind

import (
	"math"
	"testing"

	"heliroute/pkg/models"
)

func TestGroundSpeedHeadAndTailwind(t *testing.T) {
	tests := []struct {
		name string
		wind models.WindVector
		want float64
	}{
		{"calm", models.WindVector{}, 100},
		{"headwind", models.WindVector{SpeedKnots: 20, DirectionDegrees: 0}, 80},
		{"tailwind", models.WindVector{SpeedKnots: 20, DirectionDegrees: 180}, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, _, ok := GroundSpeed(100, 0, tt.wind)
			if !ok {
				t.Fatal("expected a solution")
			}
			if math.Abs(gs-tt.want) > 1e-9 {
				t.Fatalf("expected %v got %v", tt.want, gs)
			}
		})
	}
}

func TestGroundSpeedCrosswind(t *testing.T) {
	gs, wca, ok := GroundSpeed(100, 0, models.WindVector{SpeedKnots: 30, DirectionDegrees: 90})
	if !ok {
		t.Fatal("expected a solution")
	}
	want := 100 * math.Cos(math.Asin(0.3))
	if math.Abs(gs-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, gs)
	}
	if wca <= 0 {
		t.Fatalf("expected a correction into the wind, got %v", wca)
	}
}

func TestGroundSpeedUnsolvable(t *testing.T) {
	if _, _, ok := GroundSpeed(50, 0, models.WindVector{SpeedKnots: 80, DirectionDegrees: 90}); ok {
		t.Fatal("crosswind above airspeed should not be solvable")
	}
	if _, _, ok := GroundSpeed(50, 0, models.WindVector{SpeedKnots: 60, DirectionDegrees: 0}); ok {
		t.Fatal("headwind above airspeed should not be solvable")
	}
	if _, _, ok := GroundSpeed(0, 0, models.WindVector{}); ok {
		t.Fatal("zero airspeed should not be solvable")
	}
}

func TestAdjustedTime(t *testing.T) {
	tri := Triangle{}
	h, ok := tri.AdjustedTime(160, 100, 0, models.WindVector{SpeedKnots: 20, DirectionDegrees: 0})
	if !ok || math.Abs(h-2.0) > 1e-9 {
		t.Fatalf("expected 2h got %v (ok=%v)", h, ok)
	}
	if h, ok := tri.AdjustedTime(0, 100, 0, models.WindVector{SpeedKnots: 20}); !ok || h != 0 {
		t.Fatalf("zero distance should take zero time, got %v", h)
	}
}

func TestComponents(t *testing.T) {
	w := models.WindVector{SpeedKnots: 10, DirectionDegrees: 180}
	if hw := HeadwindComponent(0, w); math.Abs(hw+10) > 1e-9 {
		t.Fatalf("expected -10 tailwind got %v", hw)
	}
	if xw := CrosswindComponent(90, w); math.Abs(xw-10) > 1e-9 {
		t.Fatalf("expected 10 crosswind got %v", xw)
	}
}
