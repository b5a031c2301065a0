package eop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pleira/celest/internal/metrics"
	"github.com/pleira/celest/internal/timescale"
)

// Store provides thread-safe access to the current leap-second and EOP tables.
// Readers take a Snapshot and use it for the whole computation; reloads publish a
// new Snapshot and never modify a published one.
type Store struct {
	snapshot atomic.Pointer[Snapshot]
	mu       sync.Mutex // serializes reloads
	logger   *slog.Logger
}

// NewStore creates a Store holding the embedded leap-second table and no EOP data.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{logger: logger}
	s.snapshot.Store(&Snapshot{
		Version:  1,
		Leap:     timescale.DefaultLeapSeconds(),
		Source:   "embedded",
		LoadedAt: time.Now(),
	})
	return s
}

// Current returns the published snapshot.
func (s *Store) Current() *Snapshot {
	return s.snapshot.Load()
}

// Swap publishes new tables. A nil argument keeps the current table of that kind.
func (s *Store) Swap(leap *timescale.LeapSecondTable, table *Table, source string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swapLocked(leap, table, source)
}

func (s *Store) swapLocked(leap *timescale.LeapSecondTable, table *Table, source string) *Snapshot {
	cur := s.snapshot.Load()
	next := &Snapshot{
		Version:  cur.Version + 1,
		Leap:     cur.Leap,
		EOP:      cur.EOP,
		Source:   source,
		LoadedAt: time.Now(),
	}
	if leap != nil {
		next.Leap = leap
	}
	if table != nil {
		next.EOP = table
	}
	s.snapshot.Store(next)
	metrics.RecordReload(next.Version, nil)
	s.logger.Info("published table snapshot", "version", next.Version, "source", source)
	return next
}

// Load parses a tai-utc.dat stream and a finals2000A stream and publishes them. Either
// reader may be nil to keep the current table. On error the published snapshot is
// unchanged.
func (s *Store) Load(leap, finals io.Reader, source string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var leapTable *timescale.LeapSecondTable
	if leap != nil {
		entries, err := timescale.ParseLeapSeconds(leap, s.logger)
		if err == nil {
			leapTable, err = timescale.NewLeapSecondTable(entries)
		}
		if err != nil {
			return nil, s.reloadFailed(fmt.Errorf("loading leap seconds from %s: %w", source, err))
		}
	}

	var eopTable *Table
	if finals != nil {
		rows, err := ParseFinals(finals, s.logger)
		if err == nil {
			eopTable, err = NewTable(rows)
		}
		if err != nil {
			return nil, s.reloadFailed(fmt.Errorf("loading EOP from %s: %w", source, err))
		}
	}

	return s.swapLocked(leapTable, eopTable, source), nil
}

// LoadFiles loads tables from disk. An empty path keeps the current table.
func (s *Store) LoadFiles(leapPath, eopPath string) (*Snapshot, error) {
	var leap, finals io.Reader
	if leapPath != "" {
		f, err := os.Open(leapPath)
		if err != nil {
			return nil, s.reloadFailed(fmt.Errorf("opening leap seconds file: %w", err))
		}
		defer f.Close()
		leap = f
	}
	if eopPath != "" {
		f, err := os.Open(eopPath)
		if err != nil {
			return nil, s.reloadFailed(fmt.Errorf("opening EOP file: %w", err))
		}
		defer f.Close()
		finals = f
	}
	return s.Load(leap, finals, fmt.Sprintf("files(%s,%s)", leapPath, eopPath))
}

// Refresh downloads tables with f and publishes them. An empty URL keeps the current
// table.
func (s *Store) Refresh(ctx context.Context, f *Fetcher, leapURL, eopURL string) (*Snapshot, error) {
	var leap, finals io.Reader
	if leapURL != "" {
		data, err := f.Fetch(ctx, leapURL)
		if err != nil {
			return nil, s.reloadFailed(err)
		}
		leap = bytes.NewReader(data)
	}
	if eopURL != "" {
		data, err := f.Fetch(ctx, eopURL)
		if err != nil {
			return nil, s.reloadFailed(err)
		}
		finals = bytes.NewReader(data)
	}
	return s.Load(leap, finals, "remote")
}

func (s *Store) reloadFailed(err error) error {
	metrics.RecordReload(s.snapshot.Load().Version, err)
	s.logger.Error("table reload failed, keeping current snapshot", "error", err)
	return err
}

// AgeSeconds returns the age of the published snapshot in seconds.
func (s *Store) AgeSeconds() float64 {
	return time.Since(s.snapshot.Load().LoadedAt).Seconds()
}

// LeapSeconds returns the leap-second table of the current snapshot.
func (s *Store) LeapSeconds() *timescale.LeapSecondTable {
	return s.snapshot.Load().Leap
}

// DUT1 returns UT1-UTC from the current snapshot. Without EOP data it fails with
// timescale.ErrUnsupportedConversion.
func (s *Store) DUT1(utc timescale.TwoPart) (float64, error) {
	return s.snapshot.Load().DUT1(utc)
}

// Parameters returns the EOP at a UTC epoch from the current snapshot.
func (s *Store) Parameters(utc timescale.TwoPart) (Parameters, error) {
	return s.snapshot.Load().Parameters(utc)
}

// LeapSeconds returns the snapshot leap-second table.
func (sn *Snapshot) LeapSeconds() *timescale.LeapSecondTable {
	return sn.Leap
}

// DUT1 returns UT1-UTC from the snapshot EOP table.
func (sn *Snapshot) DUT1(utc timescale.TwoPart) (float64, error) {
	p, err := sn.Parameters(utc)
	return p.DUT1, err
}

// Parameters returns the interpolated EOP at a UTC epoch. Without an EOP table there
// is no UT1 at all, so the error is timescale.ErrUnsupportedConversion rather than a
// recoverable table miss.
func (sn *Snapshot) Parameters(utc timescale.TwoPart) (Parameters, error) {
	if sn.EOP == nil {
		return Parameters{}, fmt.Errorf("%w: no EOP table loaded", timescale.ErrUnsupportedConversion)
	}
	return sn.EOP.At(utc.MJD())
}
