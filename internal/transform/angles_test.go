package transform

import (
	"math"
	"testing"
)

func TestHMS(t *testing.T) {
	h := HMS{Hours: 12, Minutes: 59, Seconds: 22.1567587}
	want := (12 + 59/60.0 + 22.1567587/3600) / 24
	if math.Abs(h.DayFraction()-want) > 1e-16 {
		t.Errorf("DayFraction = %.17f, want %.17f", h.DayFraction(), want)
	}

	back := RadiansToHMS(h.Radians())
	if back.Hours != 12 || back.Minutes != 59 || math.Abs(back.Seconds-22.1567587) > 1e-9 {
		t.Errorf("RadiansToHMS = %+v", back)
	}
	if got := (HMS{Hours: 7, Minutes: 4, Seconds: 3.25}).String(); got != "07h04m03.250000s" {
		t.Errorf("String() = %q", got)
	}
}

func TestDMS(t *testing.T) {
	tests := []struct {
		name string
		in   DMS
	}{
		{"positive", DMS{Degrees: 39, Minutes: 0, Seconds: 25.2}},
		{"negative", DMS{Negative: true, Degrees: 104, Minutes: 52, Seconds: 58.8}},
		{"sub-degree", DMS{Negative: true, Minutes: 8, Seconds: 26.62}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RadiansToDMS(tt.in.Radians())
			if got.Negative != tt.in.Negative || got.Degrees != tt.in.Degrees || got.Minutes != tt.in.Minutes ||
				math.Abs(got.Seconds-tt.in.Seconds) > 1e-8 {
				t.Errorf("round trip = %+v, want %+v", got, tt.in)
			}
		})
	}

	if got := (DMS{Negative: true, Degrees: 5, Minutes: 3, Seconds: 1.5}).String(); got != "-005°03′01.500000″" {
		t.Errorf("String() = %q", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-1e-17, 0},
		{-math.SmallestNonzeroFloat64, 0},
		{twoPi, 0},
		{-math.Pi, math.Pi},
		{5 * math.Pi, math.Pi},
		{-1, twoPi - 1},
	}
	for _, tt := range tests {
		got := normalizeAngle(tt.in)
		if got < 0 || got >= twoPi {
			t.Errorf("normalizeAngle(%g) = %.17g, outside [0, 2π)", tt.in, got)
		}
		if math.Abs(got-tt.want) > 1e-14 {
			t.Errorf("normalizeAngle(%g) = %.17g, want %.17g", tt.in, got, tt.want)
		}
	}
}
