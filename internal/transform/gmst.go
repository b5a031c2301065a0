package transform

import (
	"math"

	"github.com/pleira/celest/internal/timescale"
)

// GMST82 returns Greenwich Mean Sidereal Time in radians, [0, 2π), from the IAU 1982
// model as used with SGP4 and the TEME frame.
//
// Formula (Vallado Eq 3-47):
//
//	θ_GMST = 67310.54841 + (876600h + 8640184.812866)*T + 0.093104*T² - 6.2e-6*T³
//
// where T is Julian centuries of UT1 from J2000.0 and the result is in seconds of
// time. The two parts of the UT1 date are reduced separately so the day fraction
// keeps full precision.
func GMST82(ut1 timescale.TwoPart) float64 {
	const (
		a = 24110.54841 - secondsPerDay/2
		b = 8640184.812866
		c = 0.093104
		d = -6.2e-6

		secToRad = twoPi / secondsPerDay
	)

	d1, d2 := ut1.Whole, ut1.Fraction
	if d1 > d2 {
		d1, d2 = d2, d1
	}
	t := (d1 + (d2 - j2000)) / daysPerCentury

	// Fractional part of the JD(UT1) in seconds.
	f := secondsPerDay * (math.Mod(d1, 1.0) + math.Mod(d2, 1.0))

	return normalizeAngle(secToRad * ((a + (b+(c+d*t)*t)*t) + f))
}
