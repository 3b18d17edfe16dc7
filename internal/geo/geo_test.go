package geo

import (
	"math"
	"testing"

	"heliroute/pkg/models"
)

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	d := Distance(models.Coordinates{Lon: 0, Lat: 0}, models.Coordinates{Lon: 0, Lat: 1})
	want := EarthRadiusNM * math.Pi / 180
	if math.Abs(d-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, d)
	}
	if math.Abs(d-60.0) > 0.1 {
		t.Fatalf("expected ~60 nm got %v", d)
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	a := models.Coordinates{Lon: -90.07, Lat: 29.95}
	b := models.Coordinates{Lon: -89.2, Lat: 28.4}
	if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-9 {
		t.Fatal("distance should be symmetric")
	}
	if Distance(a, a) != 0 {
		t.Fatalf("expected zero distance for identical points, got %v", Distance(a, a))
	}
}

func TestBearingCardinalDirections(t *testing.T) {
	origin := models.Coordinates{}
	tests := []struct {
		name string
		to   models.Coordinates
		want float64
	}{
		{"north", models.Coordinates{Lon: 0, Lat: 1}, 0},
		{"east", models.Coordinates{Lon: 1, Lat: 0}, 90},
		{"south", models.Coordinates{Lon: 0, Lat: -1}, 180},
		{"west", models.Coordinates{Lon: -1, Lat: 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
			if got < 0 || got >= 360 {
				t.Fatalf("bearing %v out of range", got)
			}
		})
	}
}

func TestNormalizeHeading(t *testing.T) {
	for in, want := range map[float64]float64{-90: 270, 360: 0, 725: 5, 0: 0, 359.5: 359.5} {
		if got := NormalizeHeading(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("NormalizeHeading(%v): expected %v got %v", in, want, got)
		}
	}
}

func TestCardinal(t *testing.T) {
	if c := Cardinal(0); c != "N" {
		t.Fatalf("expected N got %s", c)
	}
	if c := Cardinal(359); c != "N" {
		t.Fatalf("expected N got %s", c)
	}
	if c := Cardinal(225); c != "SW" {
		t.Fatalf("expected SW got %s", c)
	}
}
