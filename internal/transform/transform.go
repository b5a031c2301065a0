// Package transform rotates state vectors between the International Terrestrial
// Reference System (ITRS) and the Geocentric Celestial Reference System (GCRS).
//
// The terrestrial-to-celestial matrix is composed in the IERS 2010 CIO-based form
//
//	[GCRS] = Q(t)ᵀ · R3(-ERA) · W(t)ᵀ · [ITRS]
//
// where W is polar motion (with the TIO locator s′), ERA is the Earth rotation angle
// from UT1, and Q is the celestial-to-intermediate matrix built from the CIP
// coordinates X, Y (bias-precession-nutation plus the observed dX, dY corrections) and
// the CIO locator s. The equinox-based form using apparent sidereal time, and the
// Vallado TEME frame used by SGP4 element sets, are also provided.
//
// Precession-nutation follows IAU 2000A or IAU 2006/2000A. The full nutation series
// (luni-solar and planetary) is read from IERS Conventions tables 5.3a and 5.3b with
// WithNutationTable. Without them nutation falls back to the embedded IAU 2000B
// series (77 luni-solar terms and a fixed planetary offset), good to about 1 mas.
//
// Reference: IERS Conventions (2010), Ch. 5; Vallado, "Fundamentals of Astrodynamics
// and Applications", Ch. 3; SOFA "Earth Attitude" cookbook.
package transform

import (
	"errors"
	"fmt"
	"math"
)

const (
	// arcsecToRad converts arcseconds to radians.
	arcsecToRad = 4.848136811095359935899141e-6

	// masToRad converts milliarcseconds to radians.
	masToRad = arcsecToRad / 1e3

	// nutationUnitToRad converts the 0.1 µas units of the nutation table to radians.
	nutationUnitToRad = arcsecToRad / 1e7

	// turnArcsec is one full turn in arcseconds.
	turnArcsec = 1296000.0

	twoPi = 2 * math.Pi

	j2000          = 2451545.0
	daysPerCentury = 36525.0
	secondsPerDay  = 86400.0
)

// OmegaEarth is Earth's nominal rotation rate in rad/s (IERS value).
const OmegaEarth = 7.292115146706979e-5

var (
	// ErrNonOrthogonal reports a composed rotation matrix that failed the
	// orthonormality check.
	ErrNonOrthogonal = errors.New("rotation matrix not orthonormal")

	// ErrSeriesMismatch reports bias, precession and nutation results from different
	// model series being combined.
	ErrSeriesMismatch = errors.New("precession-nutation series mismatch")

	// ErrUnknownSeries is returned for an unrecognized model series.
	ErrUnknownSeries = errors.New("unknown precession-nutation series")
)

// Series selects the precession-nutation model.
type Series int

const (
	IAU2000A Series = iota + 1
	IAU2006A
)

func (s Series) String() string {
	switch s {
	case IAU2000A:
		return "IAU2000A"
	case IAU2006A:
		return "IAU2006A"
	}
	return fmt.Sprintf("Series(%d)", int(s))
}

// ParseSeries accepts "IAU2000A", "2000A", "IAU2006A", "2006A" and the IAU "2006/2000A"
// spelling, case-insensitively.
func ParseSeries(name string) (Series, error) {
	switch normalizeSeriesName(name) {
	case "IAU2000A", "2000A":
		return IAU2000A, nil
	case "IAU2006A", "2006A", "IAU2006/2000A", "2006/2000A":
		return IAU2006A, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
}

func normalizeSeriesName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == ' ' || c == '-' || c == '_':
			continue
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func (s Series) valid() bool {
	return s == IAU2000A || s == IAU2006A
}

// normalizeAngle reduces a to [0, 2π).
func normalizeAngle(a float64) float64 {
	w := math.Mod(a, twoPi)
	if w < 0 {
		w += twoPi
	}
	// A tiny negative remainder rounds up to 2π.
	if w >= twoPi {
		w -= twoPi
	}
	return w
}
