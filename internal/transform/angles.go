package transform

import (
	"fmt"
	"math"
)

// HMS is an angle or time of day in hours, minutes and seconds.
type HMS struct {
	Negative bool
	Hours    int
	Minutes  int
	Seconds  float64
}

// DMS is an angle in degrees, arcminutes and arcseconds.
type DMS struct {
	Negative bool
	Degrees  int
	Minutes  int
	Seconds  float64
}

// RadiansToHMS splits an angle into hours, minutes and seconds (24h = 2π).
func RadiansToHMS(a float64) HMS {
	neg, h, m, s := sexagesimal(a * 12 / math.Pi)
	return HMS{Negative: neg, Hours: h, Minutes: m, Seconds: s}
}

// RadiansToDMS splits an angle into degrees, arcminutes and arcseconds.
func RadiansToDMS(a float64) DMS {
	neg, d, m, s := sexagesimal(a * 180 / math.Pi)
	return DMS{Negative: neg, Degrees: d, Minutes: m, Seconds: s}
}

func sexagesimal(v float64) (neg bool, whole, minutes int, seconds float64) {
	if v < 0 {
		neg = true
		v = -v
	}
	whole = int(v)
	rem := (v - float64(whole)) * 60
	minutes = int(rem)
	seconds = (rem - float64(minutes)) * 60
	return neg, whole, minutes, seconds
}

func (h HMS) value() float64 {
	v := float64(h.Hours) + float64(h.Minutes)/60 + h.Seconds/3600
	if h.Negative {
		v = -v
	}
	return v
}

// Radians returns the angle in radians.
func (h HMS) Radians() float64 { return h.value() * math.Pi / 12 }

// DayFraction returns the time of day as a fraction of 24h.
func (h HMS) DayFraction() float64 { return h.value() / 24 }

func (h HMS) String() string {
	sign := ""
	if h.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%02dh%02dm%09.6fs", sign, h.Hours, h.Minutes, h.Seconds)
}

// Radians returns the angle in radians.
func (d DMS) Radians() float64 {
	v := float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
	if d.Negative {
		v = -v
	}
	return v * math.Pi / 180
}

func (d DMS) String() string {
	sign := "+"
	if d.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%03d°%02d′%09.6f″", sign, d.Degrees, d.Minutes, d.Seconds)
}
