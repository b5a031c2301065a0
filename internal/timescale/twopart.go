package timescale

import (
	"fmt"
	"math"
)

// TwoPart is a Julian Date split into two floating-point parts whose sum is the date.
// The scale is tracked by the caller.
//
// The usual split is Whole = JD at 0h of the day (a half-integer) and Fraction = the
// fraction of that day, but any split is accepted. Operations never collapse the parts
// into a single float; offsets are applied to the part with the smaller magnitude so the
// part with the larger magnitude stays first.
type TwoPart struct {
	Whole    float64
	Fraction float64
}

// FromJD splits a single Julian Date at the preceding 0h.
func FromJD(jd float64) TwoPart {
	whole := math.Floor(jd-0.5) + 0.5
	return TwoPart{Whole: whole, Fraction: jd - whole}
}

// FromMJD builds a TwoPart from a Modified Julian Date.
func FromMJD(mjd float64) TwoPart {
	return TwoPart{Whole: MJDZero, Fraction: mjd}
}

// JD returns the single-float Julian Date. Precision is lost at the ~20 µs level.
func (t TwoPart) JD() float64 {
	return t.Whole + t.Fraction
}

// MJD returns the Modified Julian Date.
func (t TwoPart) MJD() float64 {
	return (t.Whole - MJDZero) + t.Fraction
}

// CenturiesSinceJ2000 returns Julian centuries elapsed since J2000.0.
func (t TwoPart) CenturiesSinceJ2000() float64 {
	return ((t.Whole - J2000) + t.Fraction) / DaysPerCentury
}

// AddDays returns t shifted by d days.
func (t TwoPart) AddDays(d float64) TwoPart {
	if math.Abs(t.Whole) >= math.Abs(t.Fraction) {
		return TwoPart{Whole: t.Whole, Fraction: t.Fraction + d}
	}
	return TwoPart{Whole: t.Whole + d, Fraction: t.Fraction}
}

// AddSeconds returns t shifted by s seconds.
func (t TwoPart) AddSeconds(s float64) TwoPart {
	return t.AddDays(s / SecondsPerDay)
}

// Sub returns t - u in days.
func (t TwoPart) Sub(u TwoPart) float64 {
	return (t.Whole - u.Whole) + (t.Fraction - u.Fraction)
}

// SecondsSince returns t - u in seconds.
func (t TwoPart) SecondsSince(u TwoPart) float64 {
	return t.Sub(u) * SecondsPerDay
}

// Before reports whether t is earlier than u.
func (t TwoPart) Before(u TwoPart) bool {
	return t.Sub(u) < 0
}

// Normalize returns the same date with Whole at 0h and Fraction in [0, 1).
func (t TwoPart) Normalize() TwoPart {
	w := math.Floor(t.Whole-0.5) + 0.5
	f := (t.Whole - w) + t.Fraction
	k := math.Floor(f)
	return TwoPart{Whole: w + k, Fraction: f - k}
}

func (t TwoPart) String() string {
	return fmt.Sprintf("%.1f%+.15f", t.Whole, t.Fraction)
}

// ordered returns the parts largest-magnitude first, and whether they were swapped.
func (t TwoPart) ordered() (big, small float64, swapped bool) {
	if math.Abs(t.Whole) >= math.Abs(t.Fraction) {
		return t.Whole, t.Fraction, false
	}
	return t.Fraction, t.Whole, true
}

// fromOrdered undoes ordered.
func fromOrdered(big, small float64, swapped bool) TwoPart {
	if swapped {
		return TwoPart{Whole: small, Fraction: big}
	}
	return TwoPart{Whole: big, Fraction: small}
}
