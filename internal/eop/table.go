// Package eop holds Earth orientation parameter tables and the process-wide snapshot
// of leap-second and EOP data.
//
// Tables are immutable once built. A Store publishes a Snapshot through an atomic
// pointer and replaces it whole on reload, so a reader always sees one consistent
// pair of tables for the duration of a computation.
package eop

import (
	"fmt"
	"math"
	"sort"

	"github.com/pleira/celest/internal/timescale"
)

// Table is an immutable series of EOP rows sorted by MJD.
type Table struct {
	rows []Parameters
}

// NewTable copies and sorts rows. Duplicate epochs are rejected.
func NewTable(rows []Parameters) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("eop table: no rows")
	}
	cp := make([]Parameters, len(rows))
	copy(cp, rows)
	sort.Slice(cp, func(i, j int) bool { return cp[i].MJD < cp[j].MJD })
	for i := 1; i < len(cp); i++ {
		if cp[i].MJD == cp[i-1].MJD {
			return nil, fmt.Errorf("eop table: duplicate MJD %.2f", cp[i].MJD)
		}
	}
	return &Table{rows: cp}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Span returns the first and last MJD of the table.
func (t *Table) Span() (first, last float64) {
	return t.rows[0].MJD, t.rows[len(t.rows)-1].MJD
}

// Rows returns a copy of the table rows.
func (t *Table) Rows() []Parameters {
	cp := make([]Parameters, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// At returns parameters at a UTC MJD, linearly interpolated between the bracketing
// rows. A UT1-UTC step larger than half a second between rows is taken as a leap
// second and removed before interpolating.
//
// Outside the table the nearest row is returned, with MJD set to the query, together
// with timescale.ErrTableLookupMiss.
func (t *Table) At(mjd float64) (Parameters, error) {
	first, last := t.Span()
	switch {
	case mjd < first:
		p := t.rows[0]
		p.MJD = mjd
		return p, fmt.Errorf("%w: MJD %.5f before EOP table start %.2f", timescale.ErrTableLookupMiss, mjd, first)
	case mjd > last:
		p := t.rows[len(t.rows)-1]
		p.MJD = mjd
		return p, fmt.Errorf("%w: MJD %.5f after EOP table end %.2f", timescale.ErrTableLookupMiss, mjd, last)
	}

	i := sort.Search(len(t.rows), func(i int) bool { return t.rows[i].MJD >= mjd })
	if t.rows[i].MJD == mjd {
		return t.rows[i], nil
	}
	a, b := t.rows[i-1], t.rows[i]
	f := (mjd - a.MJD) / (b.MJD - a.MJD)

	bDUT1 := b.DUT1
	if step := bDUT1 - a.DUT1; math.Abs(step) > 0.5 {
		bDUT1 -= math.Round(step)
	}

	lerp := func(x, y float64) float64 { return x + f*(y-x) }
	return Parameters{
		MJD:       mjd,
		DUT1:      lerp(a.DUT1, bDUT1),
		LOD:       lerp(a.LOD, b.LOD),
		XP:        lerp(a.XP, b.XP),
		YP:        lerp(a.YP, b.YP),
		DX:        lerp(a.DX, b.DX),
		DY:        lerp(a.DY, b.DY),
		Predicted: a.Predicted || b.Predicted,
	}, nil
}

// Nearest returns the row closest to mjd without interpolation.
func (t *Table) Nearest(mjd float64) Parameters {
	i := sort.Search(len(t.rows), func(i int) bool { return t.rows[i].MJD >= mjd })
	switch {
	case i == 0:
		return t.rows[0]
	case i == len(t.rows):
		return t.rows[len(t.rows)-1]
	case mjd-t.rows[i-1].MJD <= t.rows[i].MJD-mjd:
		return t.rows[i-1]
	}
	return t.rows[i]
}

// DUT1 returns UT1-UTC at a UTC epoch. It makes a Table usable as a
// timescale.DUT1Source.
func (t *Table) DUT1(utc timescale.TwoPart) (float64, error) {
	p, err := t.At(utc.MJD())
	return p.DUT1, err
}
