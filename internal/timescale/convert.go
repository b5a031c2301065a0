package timescale

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pleira/celest/internal/metrics"
)

// DUT1Source supplies UT1-UTC in seconds at a UTC epoch. Implementations backed by a
// finite table return the fallback value together with ErrTableLookupMiss outside
// their coverage.
type DUT1Source interface {
	DUT1(utc TwoPart) (float64, error)
}

// DUT1 is a constant UT1-UTC, in seconds, for single-epoch work.
type DUT1 float64

// DUT1 returns d for every epoch.
func (d DUT1) DUT1(TwoPart) (float64, error) {
	return float64(d), nil
}

// Converter performs time-scale conversions against one leap-second source and,
// optionally, UT1 and TDB corrections. A Converter is safe for concurrent use.
type Converter struct {
	leap   LeapSecondSource
	dut1   DUT1Source
	tdb    TDBCorrection
	strict bool
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithDUT1 enables UT1 conversions.
func WithDUT1(src DUT1Source) Option {
	return func(c *Converter) {
		c.dut1 = src
	}
}

// WithTDB enables TT<->TDB conversions.
func WithTDB(corr TDBCorrection) Option {
	return func(c *Converter) {
		c.tdb = corr
	}
}

// WithStrictTables makes table lookups outside coverage fail with
// ErrTableLookupMiss instead of logging and using the nearest entry.
func WithStrictTables() Option {
	return func(c *Converter) {
		c.strict = true
	}
}

// NewConverter creates a Converter. A nil leap source selects DefaultLeapSeconds.
func NewConverter(leap LeapSecondSource, logger *slog.Logger, opts ...Option) *Converter {
	if leap == nil {
		leap = DefaultLeapSeconds()
	}
	c := &Converter{leap: leap, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts t from one scale to another along the conversion tree. Converting
// a scale to itself returns t unchanged.
func (c *Converter) Convert(t TwoPart, from, to Scale) (TwoPart, error) {
	for _, s := range [2]Scale{from, to} {
		if _, ok := scaleNames[s]; !ok {
			return TwoPart{}, fmt.Errorf("%w: %v", ErrUnknownScale, s)
		}
	}
	path := conversionPath(from, to)
	out := t
	for i := 1; i < len(path); i++ {
		var err error
		out, err = c.step(out, path[i-1], path[i])
		if err != nil {
			return TwoPart{}, fmt.Errorf("convert %v to %v: %w", from, to, err)
		}
	}
	return out, nil
}

// conversionPath lists the scales visited going from one scale to another,
// endpoints included.
func conversionPath(from, to Scale) []Scale {
	up := func(s Scale) []Scale {
		chain := []Scale{s}
		for s != TT {
			s = parent[s]
			chain = append(chain, s)
		}
		return chain
	}
	a, b := up(from), up(to)
	// Trim the shared tail above the lowest common ancestor.
	for len(a) > 1 && len(b) > 1 && a[len(a)-2] == b[len(b)-2] {
		a, b = a[:len(a)-1], b[:len(b)-1]
	}
	path := append([]Scale{}, a...)
	for i := len(b) - 2; i >= 0; i-- {
		path = append(path, b[i])
	}
	return path
}

func (c *Converter) step(t TwoPart, from, to Scale) (TwoPart, error) {
	switch {
	case from == UTC && to == TAI:
		return c.UTCToTAI(t)
	case from == TAI && to == UTC:
		return c.TAIToUTC(t)
	case from == TAI && to == TT:
		return TAIToTT(t), nil
	case from == TT && to == TAI:
		return TTToTAI(t), nil
	case from == TT && to == TCG:
		return TTToTCG(t), nil
	case from == TCG && to == TT:
		return TCGToTT(t), nil
	case from == TT && to == TDB:
		return c.TTToTDB(t)
	case from == TDB && to == TT:
		return c.TDBToTT(t)
	case from == UTC && to == UT1:
		return c.UTCToUT1(t)
	case from == UT1 && to == UTC:
		return c.UT1ToUTC(t)
	}
	return TwoPart{}, fmt.Errorf("%w: no direct step %v to %v", ErrUnsupportedConversion, from, to)
}

// UTCToTAI converts UTC to TAI. Within a day containing a leap second or a pre-1972
// rate step, the day fraction is stretched to the actual length of that UTC day.
func (c *Converter) UTCToTAI(utc TwoPart) (TwoPart, error) {
	table := c.leap.LeapSeconds()
	var miss error
	tai, err := utcToTAI(table, utc, &miss)
	if err != nil {
		return TwoPart{}, err
	}
	if miss != nil {
		if err := c.tableMiss("leap_seconds", miss); err != nil {
			return TwoPart{}, err
		}
	}
	return tai, nil
}

// utcToTAI stores the first table miss it sees in *miss.
func utcToTAI(table *LeapSecondTable, utc TwoPart, miss *error) (TwoPart, error) {
	u1, u2, swapped := utc.ordered()

	iy, im, id, fd, err := JDToCalendar(u1, u2)
	if err != nil {
		return TwoPart{}, err
	}
	djm0, djm, err := CalendarToMJD(iy, im, id)
	if err != nil {
		return TwoPart{}, err
	}

	lookup := func(mjd float64) float64 {
		off, err := table.TAIMinusUTC(mjd)
		if err != nil && *miss == nil {
			*miss = err
		}
		return off
	}
	dat0 := lookup(djm)
	dat12 := lookup(djm + 0.5)
	dat24 := lookup(djm + 1.0)

	// Separate the rate term from any step at the end of the day.
	dlod := 2.0 * (dat12 - dat0)
	dleap := dat24 - (dat0 + dlod)

	// Scale the fraction to the length of this UTC day.
	fd *= (SecondsPerDay + dleap) / SecondsPerDay
	fd *= (SecondsPerDay + dlod) / SecondsPerDay

	a2 := djm0 - u1
	a2 += djm
	a2 += fd + dat0/SecondsPerDay

	return fromOrdered(u1, a2, swapped), nil
}

// TAIToUTC converts TAI to UTC by inverting UTCToTAI. During an inserted leap second
// two TAI instants map to the same UTC day fraction range; the iteration returns the
// representation on the leap-second day.
func (c *Converter) TAIToUTC(tai TwoPart) (TwoPart, error) {
	table := c.leap.LeapSeconds()
	a1, a2, swapped := tai.ordered()

	u1, u2 := a1, a2
	var miss error
	for i := 0; i < 3; i++ {
		g, err := utcToTAI(table, fromOrdered(u1, u2, swapped), &miss)
		if err != nil {
			return TwoPart{}, err
		}
		g1, g2, _ := g.ordered()
		u2 += a1 - g1
		u2 += a2 - g2
	}
	if miss != nil {
		if err := c.tableMiss("leap_seconds", miss); err != nil {
			return TwoPart{}, err
		}
	}
	return fromOrdered(u1, u2, swapped), nil
}

// TAIToTT adds the fixed 32.184 s.
func TAIToTT(tai TwoPart) TwoPart {
	return tai.AddSeconds(TTMinusTAI)
}

// TTToTAI subtracts the fixed 32.184 s.
func TTToTAI(tt TwoPart) TwoPart {
	return tt.AddSeconds(-TTMinusTAI)
}

// TTToTCG applies the TCG rate about 1977-01-01T00:00:32.184 TT.
func TTToTCG(tt TwoPart) TwoPart {
	t77t := mjd1977 + TTMinusTAI/SecondsPerDay
	elgg := LG / (1.0 - LG)
	if math.Abs(tt.Whole) > math.Abs(tt.Fraction) {
		return TwoPart{
			Whole:    tt.Whole,
			Fraction: tt.Fraction + ((tt.Whole-MJDZero)+(tt.Fraction-t77t))*elgg,
		}
	}
	return TwoPart{
		Whole:    tt.Whole + ((tt.Fraction-MJDZero)+(tt.Whole-t77t))*elgg,
		Fraction: tt.Fraction,
	}
}

// TCGToTT is the inverse of TTToTCG.
func TCGToTT(tcg TwoPart) TwoPart {
	t77t := mjd1977 + TTMinusTAI/SecondsPerDay
	if math.Abs(tcg.Whole) > math.Abs(tcg.Fraction) {
		return TwoPart{
			Whole:    tcg.Whole,
			Fraction: tcg.Fraction - ((tcg.Whole-MJDZero)+(tcg.Fraction-t77t))*LG,
		}
	}
	return TwoPart{
		Whole:    tcg.Whole - ((tcg.Fraction-MJDZero)+(tcg.Whole-t77t))*LG,
		Fraction: tcg.Fraction,
	}
}

// TTToTDB adds the configured TDB-TT correction.
func (c *Converter) TTToTDB(tt TwoPart) (TwoPart, error) {
	if c.tdb == nil {
		return TwoPart{}, fmt.Errorf("%w: no TDB-TT correction configured", ErrUnsupportedConversion)
	}
	return tt.AddSeconds(c.tdb.TDBMinusTT(tt)), nil
}

// TDBToTT subtracts the configured TDB-TT correction, evaluated at the TT estimate.
func (c *Converter) TDBToTT(tdb TwoPart) (TwoPart, error) {
	if c.tdb == nil {
		return TwoPart{}, fmt.Errorf("%w: no TDB-TT correction configured", ErrUnsupportedConversion)
	}
	guess := tdb.AddSeconds(-c.tdb.TDBMinusTT(tdb))
	return tdb.AddSeconds(-c.tdb.TDBMinusTT(guess)), nil
}

// UTCToUT1 adds UT1-UTC. The offset is applied to the day fraction directly; on a
// leap-second day this differs from a TAI-based route by dut1/86400 of the extra second.
func (c *Converter) UTCToUT1(utc TwoPart) (TwoPart, error) {
	dut1, err := c.lookupDUT1(utc)
	if err != nil {
		return TwoPart{}, err
	}
	return utc.AddSeconds(dut1), nil
}

// UT1ToUTC subtracts UT1-UTC, looked up at the UT1 epoch.
func (c *Converter) UT1ToUTC(ut1 TwoPart) (TwoPart, error) {
	dut1, err := c.lookupDUT1(ut1)
	if err != nil {
		return TwoPart{}, err
	}
	return ut1.AddSeconds(-dut1), nil
}

func (c *Converter) lookupDUT1(t TwoPart) (float64, error) {
	if c.dut1 == nil {
		return 0, fmt.Errorf("%w: no UT1-UTC source configured", ErrUnsupportedConversion)
	}
	dut1, err := c.dut1.DUT1(t)
	if err != nil {
		if !errors.Is(err, ErrTableLookupMiss) {
			return 0, err
		}
		if err := c.tableMiss("eop", err); err != nil {
			return 0, err
		}
	}
	return dut1, nil
}

// tableMiss records a lookup outside table coverage. In strict mode the miss is
// returned as an error; otherwise it is logged and the fallback value stands.
func (c *Converter) tableMiss(table string, miss error) error {
	metrics.RecordLookupMiss(table)
	if c.strict {
		return miss
	}
	c.logger.Warn("table lookup outside coverage, using nearest entry", "table", table, "error", miss)
	return nil
}
