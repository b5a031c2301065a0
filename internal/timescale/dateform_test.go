package timescale

import (
	"math"
	"testing"
)

func TestDateFormFromTwoPart(t *testing.T) {
	j2000 := TwoPart{Whole: 2451545.0, Fraction: 0}
	tests := []struct {
		form DateForm
		want float64
	}{
		{JulianDate, 2451545.0},
		{ModifiedJulianDay, 51544.5},
		{ReducedJulianDay, 51545.0},
		{TruncatedJulianDay, 11544.5},
		{DublinJulianDay, 36525.0},
		{CNESJulianDay, 18262.5},
		{JulianDayNumber, 2451545},
		{ANSIDate, 145732},
		{UnixTime, 946728000},
	}
	for _, tt := range tests {
		t.Run(tt.form.String(), func(t *testing.T) {
			got, err := tt.form.FromTwoPart(j2000)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%v(J2000) = %.6f, want %.6f", tt.form, got, tt.want)
			}
		})
	}
}

func TestDateFormRoundTrip(t *testing.T) {
	in := TwoPart{Whole: 2453101.5, Fraction: 0.327411875}
	for _, f := range []DateForm{JulianDate, ModifiedJulianDay, ReducedJulianDay, TruncatedJulianDay,
		DublinJulianDay, CNESJulianDay, UnixTime} {
		t.Run(f.String(), func(t *testing.T) {
			v, err := f.FromTwoPart(in)
			if err != nil {
				t.Fatal(err)
			}
			back, err := f.ToTwoPart(v)
			if err != nil {
				t.Fatal(err)
			}
			if d := math.Abs(back.Sub(in)) * SecondsPerDay; d > 1e-4 {
				t.Errorf("round trip off by %.3e s", d)
			}
		})
	}
}

func TestDateFormTruncation(t *testing.T) {
	// The Julian day number changes at noon.
	morning := TwoPart{Whole: 2451544.5, Fraction: 0.4}
	jdn, _ := JulianDayNumber.FromTwoPart(morning)
	if jdn != 2451544 {
		t.Errorf("JDN before noon = %v, want 2451544", jdn)
	}
	start, _ := JulianDayNumber.ToTwoPart(jdn)
	if start.JD() != 2451544 {
		t.Errorf("JDN start = %v", start.JD())
	}
}

func TestDateFormUnknown(t *testing.T) {
	if _, err := DateForm(99).FromTwoPart(TwoPart{}); err == nil {
		t.Error("expected error for unknown form")
	}
	if _, err := DateForm(99).ToTwoPart(0); err == nil {
		t.Error("expected error for unknown form")
	}
	if DateForm(99).String() != "DateForm(99)" {
		t.Errorf("String() = %q", DateForm(99).String())
	}
}
