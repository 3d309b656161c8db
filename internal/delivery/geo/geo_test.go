package geo

import (
	"math"
	"testing"
)

func TestMilesIdenticalPoints(t *testing.T) {
	points := []Point{
		{0, 0},
		{51.169392, 71.449074},
		{-33.865143, 151.209900},
	}
	for _, p := range points {
		if d := Miles(p, p); math.Abs(d) > 1e-6 {
			t.Fatalf("expected zero distance for identical point %+v, got %f", p, d)
		}
	}
}

func TestMilesSymmetry(t *testing.T) {
	a := Point{51.169392, 71.449074}
	b := Point{51.089963, 71.419266}
	if d1, d2 := Miles(a, b), Miles(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestMilesKnownDistance(t *testing.T) {
	// Astana center to the airport, roughly 8.6 miles.
	a := Point{51.128207, 71.430411}
	b := Point{51.022167, 71.466944}
	d := Miles(a, b)
	if d < 7 || d > 10 {
		t.Fatalf("unexpected distance %f", d)
	}
}

func TestDistanceToMatchesMiles(t *testing.T) {
	a := Point{51.128207, 71.430411}
	b := Point{51.022167, 71.466944}
	if d1, d2 := a.DistanceTo(b), Miles(a, b); d1 != d2 {
		t.Fatalf("DistanceTo diverged from Miles: %f vs %f", d1, d2)
	}
}

func TestMilesNaNPropagates(t *testing.T) {
	a := Point{math.NaN(), 0}
	b := Point{10, 10}
	if d := Miles(a, b); !math.IsNaN(d) {
		t.Fatalf("expected NaN, got %f", d)
	}
}
