// Package timescale converts epochs between the astronomical time scales UTC, TAI,
// TT, TCG, TDB and UT1.
//
// Epochs are carried as two-part Julian Dates (see TwoPart) so that sub-microsecond
// resolution survives over centuries. Conversions form a tree rooted at TT:
//
//	UT1 ── UTC ── TAI ── TT ──┬── TCG
//	                          └── TDB
//
// and every chained conversion is composed from the pairwise steps along the unique
// path between two scales.
//
// Method: IAU SOFA conventions (utctai/taiutc/taitt/tttcg) with the USNO tai-utc
// leap-second table, including the pre-1972 rate terms.
//
// Reference: IERS Conventions (2010), Ch. 10; SOFA "Time Scale and Calendar Tools".
package timescale

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MJDZero is the Julian Date of the Modified Julian Date origin.
	MJDZero = 2400000.5

	// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01 12:00:00 TT).
	J2000 = 2451545.0

	// DaysPerCentury is the length of a Julian century in days.
	DaysPerCentury = 36525.0

	// SecondsPerDay is the length of a day in SI seconds.
	SecondsPerDay = 86400.0

	// TTMinusTAI is the fixed offset TT - TAI in seconds.
	TTMinusTAI = 32.184

	// LG is the TCG/TT rate defining constant (IAU 2000 Resolution B1.9).
	LG = 6.969290134e-10

	// mjd1977 is the MJD of 1977-01-01, the TCG/TT reference epoch.
	mjd1977 = 43144.0
)

var (
	// ErrInvalidDate is returned for calendar fields out of range or dates before
	// the leap-second table starts (1960).
	ErrInvalidDate = errors.New("invalid date")

	// ErrTableLookupMiss reports an epoch outside a table's coverage. Functions that
	// return it also return the documented fallback value.
	ErrTableLookupMiss = errors.New("epoch outside table coverage")

	// ErrUnsupportedConversion is returned when a conversion needs a correction
	// (TDB-TT, UT1-UTC) that was not configured.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrUnknownScale is returned by ParseScale for unrecognized names.
	ErrUnknownScale = errors.New("unknown time scale")
)

// Scale identifies a time scale. The zero value is not a valid scale.
type Scale int

const (
	UTC Scale = iota + 1
	TAI
	TT
	TCG
	TDB
	UT1
)

var scaleNames = map[Scale]string{
	UTC: "UTC",
	TAI: "TAI",
	TT:  "TT",
	TCG: "TCG",
	TDB: "TDB",
	UT1: "UT1",
}

func (s Scale) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// ParseScale returns the scale with the given case-insensitive name.
func ParseScale(name string) (Scale, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for s, sn := range scaleNames {
		if sn == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScale, name)
}

// parent is the next scale on the path towards TT.
var parent = map[Scale]Scale{
	UT1: UTC,
	UTC: TAI,
	TAI: TT,
	TCG: TT,
	TDB: TT,
}
