package estimate

import "testing"

func TestWindow(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name     string
		prep     float64
		distance float64
		want     Window
	}{
		// (2/20)*60 + 20 = 26 -> min 31, max 36 (no tier buffer under 5 mi)
		{"close store", 20, 2, Window{31, 36}},
		// (10/20)*60 + 15 = 45 -> min 50, max 45+5+10 = 60
		{"mid tier", 15, 10, Window{50, 60}},
		// (20/20)*60 + 30 = 90 -> min 95, max 90+10+10 = 110
		{"far tier", 30, 20, Window{95, 110}},
		{"zero everything", 0, 0, Window{10, 10}},
		{"zero distance", 12, 0, Window{17, 22}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cfg.Window(tc.prep, tc.distance)
			if got != tc.want {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestWindowBounds(t *testing.T) {
	cfg := DefaultConfig()
	for prep := 0.0; prep <= 90; prep += 7.5 {
		for dist := 0.0; dist <= 30; dist += 1.3 {
			w := cfg.Window(prep, dist)
			if w.Min > w.Max {
				t.Fatalf("min %d exceeds max %d for prep=%f dist=%f", w.Min, w.Max, prep, dist)
			}
			if w.Min < cfg.MinWindowMinutes {
				t.Fatalf("min %d below floor for prep=%f dist=%f", w.Min, prep, dist)
			}
		}
	}
}
