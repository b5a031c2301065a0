package timescale

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// LeapSecondEntry is one row of the TAI-UTC history. From EffectiveMJD (0h UTC) until
// the next entry takes effect:
//
//	TAI-UTC = Offset + (MJD - DriftEpochMJD) * DriftRate
//
// DriftRate is zero for every entry since 1972.
type LeapSecondEntry struct {
	EffectiveMJD  float64
	Offset        float64 // seconds
	DriftEpochMJD float64
	DriftRate     float64 // seconds per day
}

// OffsetAt evaluates the entry at a UTC MJD.
func (e LeapSecondEntry) OffsetAt(mjd float64) float64 {
	return e.Offset + (mjd-e.DriftEpochMJD)*e.DriftRate
}

// LeapSecondTable is an immutable TAI-UTC history sorted by effective date.
type LeapSecondTable struct {
	entries    []LeapSecondEntry
	expiresMJD float64 // 0 when unknown
}

// LeapSecondSource yields the leap-second table to use for one conversion.
// A conversion asks once and uses the returned table throughout.
type LeapSecondSource interface {
	LeapSeconds() *LeapSecondTable
}

// LeapTableOption configures a LeapSecondTable.
type LeapTableOption func(*LeapSecondTable)

// WithExpiry marks the UTC MJD after which the table is no longer authoritative.
// Lookups beyond it still return the last offset, together with ErrTableLookupMiss.
func WithExpiry(mjd float64) LeapTableOption {
	return func(t *LeapSecondTable) {
		t.expiresMJD = mjd
	}
}

// NewLeapSecondTable validates and copies entries into a table.
func NewLeapSecondTable(entries []LeapSecondEntry, opts ...LeapTableOption) (*LeapSecondTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("leap-second table: no entries")
	}
	cp := make([]LeapSecondEntry, len(entries))
	copy(cp, entries)
	for i := 1; i < len(cp); i++ {
		prev, cur := cp[i-1], cp[i]
		if cur.EffectiveMJD <= prev.EffectiveMJD {
			return nil, fmt.Errorf("leap-second table: entry %d (MJD %.1f) not after MJD %.1f",
				i, cur.EffectiveMJD, prev.EffectiveMJD)
		}
		if prev.DriftRate == 0 && cur.DriftRate == 0 && cur.Offset <= prev.Offset {
			return nil, fmt.Errorf("leap-second table: offset %.1f s at MJD %.1f does not increase",
				cur.Offset, cur.EffectiveMJD)
		}
	}
	t := &LeapSecondTable{entries: cp}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// LeapSeconds lets a bare table act as its own source.
func (t *LeapSecondTable) LeapSeconds() *LeapSecondTable {
	return t
}

// Entries returns a copy of the table rows.
func (t *LeapSecondTable) Entries() []LeapSecondEntry {
	cp := make([]LeapSecondEntry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Len returns the number of entries.
func (t *LeapSecondTable) Len() int {
	return len(t.entries)
}

// StartMJD is the effective date of the first entry.
func (t *LeapSecondTable) StartMJD() float64 {
	return t.entries[0].EffectiveMJD
}

// LastChangeMJD is the effective date of the most recent entry.
func (t *LeapSecondTable) LastChangeMJD() float64 {
	return t.entries[len(t.entries)-1].EffectiveMJD
}

// TAIMinusUTC returns TAI-UTC in seconds at a UTC MJD.
//
// Before the first entry the first entry's offset is returned with ErrTableLookupMiss.
// After the last entry the last offset is returned, with ErrTableLookupMiss only if
// the table has an expiry date and mjd is past it.
func (t *LeapSecondTable) TAIMinusUTC(mjd float64) (float64, error) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].EffectiveMJD > mjd
	})
	if i == 0 {
		first := t.entries[0]
		return first.OffsetAt(first.EffectiveMJD),
			fmt.Errorf("%w: MJD %.5f before leap-second table start %.1f", ErrTableLookupMiss, mjd, first.EffectiveMJD)
	}
	e := t.entries[i-1]
	off := e.OffsetAt(mjd)
	if t.expiresMJD > 0 && mjd > t.expiresMJD {
		return off, fmt.Errorf("%w: MJD %.5f after leap-second table expiry %.1f", ErrTableLookupMiss, mjd, t.expiresMJD)
	}
	return off, nil
}

//go:embed data/tai-utc.dat
var defaultTAIUTC string

var defaultTable = sync.OnceValue(func() *LeapSecondTable {
	entries, err := ParseLeapSeconds(strings.NewReader(defaultTAIUTC), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		panic(fmt.Sprintf("embedded tai-utc.dat: %v", err))
	}
	t, err := NewLeapSecondTable(entries)
	if err != nil {
		panic(fmt.Sprintf("embedded tai-utc.dat: %v", err))
	}
	return t
})

// DefaultLeapSeconds returns the built-in table (1960-01-01 through the 2017-01-01
// leap second). It is shared and must not be modified.
func DefaultLeapSeconds() *LeapSecondTable {
	return defaultTable()
}
