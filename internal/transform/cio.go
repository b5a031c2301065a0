package transform

import (
	"math"

	"github.com/pleira/celest/internal/timescale"
)

// cioTerm is one periodic term of the CIO locator series. Multipliers apply to
// l, l′, F, D, Ω, L_Ve, L_E, pA; amplitudes are sine and cosine coefficients in
// arcseconds.
type cioTerm struct {
	n    [8]int
	s, c float64
}

// Polynomial part of s + XY/2 (arcseconds), IAU 2006/2000A.
var cioPolynomial = [6]float64{9.4e-05, 0.00380865, -0.00012268, -0.07257411, 2.798e-05, 1.562e-05}

// Largest periodic terms of s + XY/2, order t⁰.
var cioTerms0 = [...]cioTerm{
	{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, -0.00264073, 3.9e-07},
	{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -6.353e-05, 2e-08},
	{[8]int{0, 0, 2, -2, 3, 0, 0, 0}, -1.175e-05, -1e-08},
	{[8]int{0, 0, 2, -2, 1, 0, 0, 0}, -1.121e-05, -1e-08},
	{[8]int{0, 0, 2, -2, 2, 0, 0, 0}, 4.57e-06, 0.0},
	{[8]int{0, 0, 2, 0, 3, 0, 0, 0}, -2.02e-06, 0.0},
	{[8]int{0, 0, 2, 0, 1, 0, 0, 0}, -1.98e-06, 0.0},
	{[8]int{0, 0, 0, 0, 3, 0, 0, 0}, 1.72e-06, 0.0},
	{[8]int{0, 1, 0, 0, 1, 0, 0, 0}, 1.41e-06, 1e-08},
	{[8]int{0, 1, 0, 0, -1, 0, 0, 0}, 1.26e-06, 1e-08},
}

// Order t¹.
var cioTerms1 = [...]cioTerm{
	{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -7e-08, 3.57e-06},
	{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 1.73e-06, -3e-08},
	{[8]int{0, 0, 2, -2, 3, 0, 0, 0}, 0.0, 4.8e-07},
}

// Order t².
var cioTerms2 = [...]cioTerm{
	{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 0.00074352, -1.7e-07},
	{[8]int{0, 0, 2, -2, 2, 0, 0, 0}, 5.691e-05, 6e-08},
	{[8]int{0, 0, 2, 0, 2, 0, 0, 0}, 9.84e-06, -1e-08},
	{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -8.85e-06, 1e-08},
}

// Order t³.
var cioTerms3 = [...]cioTerm{
	{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 3e-07, -2.342e-05},
}

// Order t⁴.
var cioTerms4 = [...]cioTerm{
	{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, -2.6e-07, -1e-08},
}

// CIPCoordinates returns the CIP X, Y from the bottom row of a
// bias-precession-nutation matrix.
func CIPCoordinates(npb Matrix) (x, y float64) {
	return npb[2][0], npb[2][1]
}

// CIOLocator returns s, the position of the CIO on the equator of the CIP, for the
// IAU 2006/2000A model given the CIP coordinates X, Y. The series is truncated to
// its largest terms (about 1 µas).
func CIOLocator(tt timescale.TwoPart, x, y float64) float64 {
	t := tt.CenturiesSinceJ2000()
	fa := [8]float64{
		meanAnomalyMoon(t),
		meanAnomalySun(t),
		meanArgumentOfLatitudeMoon(t),
		meanElongationMoonSun(t),
		meanLongitudeAscendingNode(t),
		meanLongitudeVenus(t),
		meanLongitudeEarth(t),
		generalPrecessionInLongitude(t),
	}

	w := cioPolynomial
	for k, series := range [...][]cioTerm{cioTerms0[:], cioTerms1[:], cioTerms2[:], cioTerms3[:], cioTerms4[:]} {
		for i := len(series) - 1; i >= 0; i-- {
			term := series[i]
			var a float64
			for j := 0; j < 8; j++ {
				a += float64(term.n[j]) * fa[j]
			}
			sa, ca := math.Sincos(a)
			w[k] += term.s*sa + term.c*ca
		}
	}

	return (w[0]+
		(w[1]+
			(w[2]+
				(w[3]+
					(w[4]+
						w[5]*t)*t)*t)*t)*t)*arcsecToRad - x*y/2.0
}

// CelestialToIntermediate returns Q from the CIP X, Y and CIO locator s: the rotation
// from GCRS to the Celestial Intermediate Reference System.
//
//	Q = R3(-(E+s)) · R2(d) · R3(E),  E = atan2(Y, X),  d = atan(√((X²+Y²)/(1-X²-Y²)))
func CelestialToIntermediate(x, y, s float64) Matrix {
	r2 := x*x + y*y
	var e float64
	if r2 > 0 {
		e = math.Atan2(y, x)
	}
	d := math.Atan(math.Sqrt(r2 / (1.0 - r2)))
	return Chain(RotZ(e), RotY(d), RotZ(-(e + s)))
}

// EquationOfOrigins returns ERA - GST, the distance along the intermediate equator
// from the equinox to the CIO, given N·P·B and the CIO locator s.
func EquationOfOrigins(npb Matrix, s float64) float64 {
	x := npb[2][0]
	ax := x / (1.0 + npb[2][2])
	xs := 1.0 - ax*x
	ys := -ax * npb[2][1]
	zs := -x
	p := npb[0][0]*xs + npb[0][1]*ys + npb[0][2]*zs
	q := npb[1][0]*xs + npb[1][1]*ys + npb[1][2]*zs
	if p == 0 && q == 0 {
		return s
	}
	return s - math.Atan2(q, p)
}
