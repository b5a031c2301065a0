package timescale

import "math"

// TDBCorrection supplies TDB-TT in seconds at a TT epoch. The conversion core has no
// planetary theory of its own; the correction comes from the caller.
type TDBCorrection interface {
	TDBMinusTT(tt TwoPart) float64
}

// TDBCorrectionFunc adapts a function to TDBCorrection.
type TDBCorrectionFunc func(tt TwoPart) float64

// TDBMinusTT calls f(tt).
func (f TDBCorrectionFunc) TDBMinusTT(tt TwoPart) float64 {
	return f(tt)
}

// TDBOffset is a constant TDB-TT in seconds, for single-epoch work where the value
// has been computed elsewhere.
type TDBOffset float64

// TDBMinusTT returns o for every epoch.
func (o TDBOffset) TDBMinusTT(TwoPart) float64 {
	return float64(o)
}

// ApproximateTDB is the two-term expression in the Earth's mean anomaly g:
//
//	TDB - TT = 0.001658 sin g + 0.000014 sin 2g  (s)
//	g = 357.53° + 0.98560028° (JD_TT - 2451545.0)
//
// It is good to about 30 µs around the present era and must be chosen explicitly.
var ApproximateTDB TDBCorrection = TDBCorrectionFunc(func(tt TwoPart) float64 {
	d := (tt.Whole - J2000) + tt.Fraction
	g := (357.53 + 0.98560028*d) * math.Pi / 180.0
	return 0.001658*math.Sin(g) + 0.000014*math.Sin(2*g)
})
