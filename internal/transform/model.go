package transform

import (
	"fmt"

	"github.com/pleira/celest/internal/timescale"
)

// FrameBias is the GCRS to mean-J2000 rotation of one series.
type FrameBias struct {
	Series Series
	Matrix Matrix
}

// Precession is the mean-J2000 to mean-of-date rotation, bias excluded.
type Precession struct {
	Series Series
	Matrix Matrix
	Angles PrecessionAngles
}

// Nutation is the mean-of-date to true-of-date rotation.
type Nutation struct {
	Series Series
	Angles NutationAngles
	EpsA   float64 // mean obliquity used to form Matrix
	Matrix Matrix
}

// Combine forms N·P·B. All three parts must come from the same series.
func Combine(b FrameBias, p Precession, n Nutation) (Matrix, error) {
	if b.Series != p.Series || p.Series != n.Series {
		return Matrix{}, fmt.Errorf("%w: bias %v, precession %v, nutation %v",
			ErrSeriesMismatch, b.Series, p.Series, n.Series)
	}
	return Chain(b.Matrix, p.Matrix, n.Matrix), nil
}

// PrecessionNutation evaluates one precession-nutation series. The series is fixed at
// construction and tags every result, so parts of different series cannot be mixed.
type PrecessionNutation struct {
	series Series
	table  *NutationTable
}

// ModelOption configures a PrecessionNutation.
type ModelOption func(*PrecessionNutation)

// WithNutationTable evaluates nutation from the full IERS coefficient tables instead
// of the embedded IAU 2000B truncation.
func WithNutationTable(nt *NutationTable) ModelOption {
	return func(pn *PrecessionNutation) {
		pn.table = nt
	}
}

// NewPrecessionNutation returns a model for series.
func NewPrecessionNutation(series Series, opts ...ModelOption) (*PrecessionNutation, error) {
	if !series.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSeries, series)
	}
	pn := &PrecessionNutation{series: series}
	for _, opt := range opts {
		opt(pn)
	}
	return pn, nil
}

// Series returns the model series.
func (pn *PrecessionNutation) Series() Series {
	return pn.series
}

// FullNutation reports whether nutation comes from the full coefficient tables.
// Otherwise the 77-term IAU 2000B series is used.
func (pn *PrecessionNutation) FullNutation() bool {
	return pn.table != nil
}

// FrameBias returns the frame bias matrix B.
func (pn *PrecessionNutation) FrameBias() FrameBias {
	if pn.series == IAU2006A {
		return FrameBias{Series: pn.series, Matrix: fukushimaWilliams2006(0).matrix(0, 0)}
	}
	return FrameBias{Series: pn.series, Matrix: frameBias2000()}
}

// Precession returns the precession matrix P at TT.
func (pn *PrecessionNutation) Precession(tt timescale.TwoPart) Precession {
	t := tt.CenturiesSinceJ2000()
	var p Matrix
	if pn.series == IAU2006A {
		rb := fukushimaWilliams2006(0).matrix(0, 0)
		rbp := fukushimaWilliams2006(t).matrix(0, 0)
		p = rbp.Mul(rb.Transpose())
	} else {
		p = precession2000(t)
	}

	var angles PrecessionAngles
	if pn.series == IAU2006A {
		angles = precessionAngles2006(t)
	} else {
		angles.Zeta, angles.Z, angles.Theta = DecomposePrecession(p)
		angles.EpsA = MeanObliquity(IAU2000A, tt)
	}
	return Precession{Series: pn.series, Matrix: p, Angles: angles}
}

// NutationAngles returns Δψ and Δε at TT.
func (pn *PrecessionNutation) NutationAngles(tt timescale.TwoPart) NutationAngles {
	var n NutationAngles
	if pn.table != nil {
		n = pn.table.nutation(tt)
	} else {
		n = truncatedNutation(tt)
	}
	if pn.series == IAU2006A {
		return adjust2006(tt, n)
	}
	return n
}

// Nutation returns the nutation matrix N at TT.
func (pn *PrecessionNutation) Nutation(tt timescale.TwoPart) Nutation {
	angles := pn.NutationAngles(tt)
	epsA := MeanObliquity(pn.series, tt)
	return Nutation{
		Series: pn.series,
		Angles: angles,
		EpsA:   epsA,
		Matrix: NutationMatrix(epsA, angles),
	}
}

// MeanObliquity returns the mean obliquity of date for the model series.
func (pn *PrecessionNutation) MeanObliquity(tt timescale.TwoPart) float64 {
	return MeanObliquity(pn.series, tt)
}

// NPB returns the combined bias-precession-nutation matrix N·P·B at TT, GCRS to
// true equator and equinox of date.
func (pn *PrecessionNutation) NPB(tt timescale.TwoPart) Matrix {
	// Parts from one model always share its series.
	m, _ := Combine(pn.FrameBias(), pn.Precession(tt), pn.Nutation(tt))
	return m
}
