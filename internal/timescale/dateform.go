package timescale

import (
	"fmt"
	"math"
)

// DateForm is a day count derived from the Julian Date by an offset, and for some
// forms a unit change or truncation.
type DateForm int

const (
	JulianDate DateForm = iota + 1
	ModifiedJulianDay
	ReducedJulianDay
	TruncatedJulianDay // NASA, from 1968-05-24 0h
	DublinJulianDay    // from 1899-12-31 12h
	CNESJulianDay      // from 1950-01-01 0h
	JulianDayNumber    // integer day starting at noon
	ANSIDate           // integer day, 1601-01-01 is day 1
	UnixTime           // seconds since 1970-01-01 0h, no leap seconds
)

type dateFormDef struct {
	name   string
	scale  float64 // units per day
	offset float64 // days added to the JD
	floor  bool
}

var dateForms = map[DateForm]dateFormDef{
	JulianDate:         {"JD", 1, 0, false},
	ModifiedJulianDay:  {"MJD", 1, -2400000.5, false},
	ReducedJulianDay:   {"RJD", 1, -2400000, false},
	TruncatedJulianDay: {"TJD", 1, -2440000.5, false},
	DublinJulianDay:    {"DJD", 1, -2415020, false},
	CNESJulianDay:      {"CJD", 1, -2433282.5, false},
	JulianDayNumber:    {"JDN", 1, 0, true},
	ANSIDate:           {"ANSI", 1, -2305812.5, true},
	UnixTime:           {"Unix", SecondsPerDay, -2440587.5, false},
}

func (f DateForm) String() string {
	if d, ok := dateForms[f]; ok {
		return d.name
	}
	return fmt.Sprintf("DateForm(%d)", int(f))
}

// FromTwoPart returns t in the form. The offset is applied to the larger part before
// the parts are summed, so forms with small values keep the precision of the
// fraction.
func (f DateForm) FromTwoPart(t TwoPart) (float64, error) {
	d, ok := dateForms[f]
	if !ok {
		return 0, fmt.Errorf("unknown date form %v", f)
	}
	big, small, _ := t.ordered()
	v := d.scale * ((big + d.offset) + small)
	if d.floor {
		v = math.Floor(v)
	}
	return v, nil
}

// ToTwoPart converts a value in the form back to a two-part JD whose first part
// carries the form's epoch. Truncating forms return the start of the counted day.
func (f DateForm) ToTwoPart(v float64) (TwoPart, error) {
	d, ok := dateForms[f]
	if !ok {
		return TwoPart{}, fmt.Errorf("unknown date form %v", f)
	}
	return TwoPart{Whole: -d.offset, Fraction: v / d.scale}, nil
}
