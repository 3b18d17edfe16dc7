package route

import (
	"math"
	"strings"
	"testing"

	"heliroute/pkg/models"
)

func TestFormatLegText(t *testing.T) {
	leg := Leg{
		From:           models.Coordinates{Lon: 0, Lat: 0},
		To:             models.Coordinates{Lon: 1, Lat: 0},
		DistanceNm:     60.04,
		BearingDegrees: 90,
		TimeHours:      0.4,
	}
	got := FormatLeg(leg)
	if got.Text != "60.0 nm • 24m →" {
		t.Fatalf("unexpected text %q", got.Text)
	}

	leg.TimeIsWindAdjusted = true
	leg.From, leg.To = leg.To, leg.From
	leg.BearingDegrees = 270
	got = FormatLeg(leg)
	if got.Text != "← 60.0 nm • 24m*" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestFormatLegRotationStaysUpright(t *testing.T) {
	tests := []struct {
		bearing float64
		want    float64
	}{
		{0, 90},
		{90, 0},
		{45, 315},
		{180, 270},
		{270, 0},
		{300, 30},
	}
	for _, tt := range tests {
		got := FormatLeg(Leg{BearingDegrees: tt.bearing}).TextRotationDegrees
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("bearing %v: expected rotation %v got %v", tt.bearing, tt.want, got)
		}
	}

	for b := 0.0; b < 360; b += 5 {
		r := FormatLeg(Leg{BearingDegrees: b}).TextRotationDegrees
		if r > 90 && r < 270 {
			t.Fatalf("bearing %v renders upside down at %v", b, r)
		}
	}
}

func TestFormatLegs(t *testing.T) {
	legs := BuildLegs(equatorRoute(), testProfile(), nil, nil)
	labels := FormatLegs(legs)
	if len(labels) != 1 || !strings.HasSuffix(labels[0].Text, "→") {
		t.Fatalf("unexpected labels %+v", labels)
	}
}
