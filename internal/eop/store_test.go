package eop

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pleira/celest/internal/timescale"
)

const leapSample = ` 1972 JAN  1 =JD 2441317.5  TAI-UTC=  10.0       S + (MJD - 41317.) X 0.0      S
 1972 JUL  1 =JD 2441499.5  TAI-UTC=  11.0       S + (MJD - 41317.) X 0.0      S
`

func TestNewStore(t *testing.T) {
	s := NewStore(testLogger)
	snap := s.Current()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Same(t, timescale.DefaultLeapSeconds(), snap.Leap)
	assert.Nil(t, snap.EOP)
	assert.Same(t, snap.Leap, s.LeapSeconds())
	assert.GreaterOrEqual(t, s.AgeSeconds(), 0.0)
}

func TestStoreDUT1WithoutEOP(t *testing.T) {
	s := NewStore(testLogger)
	dut1, err := s.DUT1(timescale.FromMJD(53101))
	assert.True(t, errors.Is(err, timescale.ErrUnsupportedConversion))
	assert.False(t, errors.Is(err, timescale.ErrTableLookupMiss))
	assert.Zero(t, dut1)
}

func TestConverterWithStoreWithoutEOP(t *testing.T) {
	s := NewStore(testLogger)
	conv := timescale.NewConverter(s, testLogger, timescale.WithDUT1(s))

	utc, err := timescale.FromCalendar(timescale.UTC, timescale.Calendar{Year: 2004, Month: 4, Day: 6}, s)
	require.NoError(t, err)
	_, err = conv.Convert(utc, timescale.UTC, timescale.UT1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, timescale.ErrUnsupportedConversion))

	// Once EOP data is published the same converter resolves UT1.
	s.Swap(nil, sampleTable(t), "test")
	ut1, err := conv.Convert(utc, timescale.UTC, timescale.UT1)
	require.NoError(t, err)
	assert.NotEqual(t, utc, ut1)
}

func TestStoreSwap(t *testing.T) {
	s := NewStore(testLogger)
	old := s.Current()
	table := sampleTable(t)

	next := s.Swap(nil, table, "test")
	assert.Equal(t, old.Version+1, next.Version)
	assert.Same(t, old.Leap, next.Leap)
	assert.Same(t, table, next.EOP)
	assert.Same(t, next, s.Current())

	// A published snapshot is never modified.
	assert.Nil(t, old.EOP)

	p, err := s.Parameters(timescale.FromMJD(53101))
	require.NoError(t, err)
	assert.InDelta(t, -0.140682, p.XP, 1e-12)
}

func TestStoreLoad(t *testing.T) {
	s := NewStore(testLogger)
	snap, err := s.Load(strings.NewReader(leapSample), strings.NewReader(sampleFinals()), "test")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Leap.Len())
	assert.Equal(t, 3, snap.EOP.Len())
	assert.Equal(t, "test", snap.Source)
}

func TestStoreLoadFailureKeepsSnapshot(t *testing.T) {
	s := NewStore(testLogger)
	before := s.Current()

	_, err := s.Load(strings.NewReader("not a table\n"), nil, "bad")
	assert.Error(t, err)
	assert.Same(t, before, s.Current())

	_, err = s.Load(nil, strings.NewReader("# nothing\n"), "bad")
	assert.Error(t, err)
	assert.Same(t, before, s.Current())
}

func TestStoreLoadFiles(t *testing.T) {
	dir := t.TempDir()
	leapPath := filepath.Join(dir, "tai-utc.dat")
	eopPath := filepath.Join(dir, "finals2000A.all")
	require.NoError(t, os.WriteFile(leapPath, []byte(leapSample), 0644))
	require.NoError(t, os.WriteFile(eopPath, []byte(sampleFinals()), 0644))

	s := NewStore(testLogger)
	snap, err := s.LoadFiles("", eopPath)
	require.NoError(t, err)
	assert.Same(t, timescale.DefaultLeapSeconds(), snap.Leap)
	assert.Equal(t, 3, snap.EOP.Len())

	snap, err = s.LoadFiles(leapPath, "")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Leap.Len())
	assert.Equal(t, 3, snap.EOP.Len())

	_, err = s.LoadFiles(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
	assert.Same(t, snap, s.Current())
}

func TestStoreRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tai-utc.dat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(leapSample))
	})
	mux.HandleFunc("/finals2000A.all", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFinals()))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewStore(testLogger)
	f := NewFetcher(testLogger)
	snap, err := s.Refresh(context.Background(), f, server.URL+"/tai-utc.dat", server.URL+"/finals2000A.all")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Leap.Len())
	assert.Equal(t, 3, snap.EOP.Len())
	assert.Equal(t, "remote", snap.Source)

	_, err = s.Refresh(context.Background(), f, "", server.URL+"/missing")
	assert.Error(t, err)
	assert.Same(t, snap, s.Current())
}

// TestStoreConcurrentReaders checks that readers always see a whole snapshot while
// reloads run.
func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(testLogger)
	table := sampleTable(t)
	conv := timescale.NewConverter(s, testLogger, timescale.WithDUT1(s))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Current()
				if snap.Leap == nil {
					t.Error("snapshot without leap table")
					return
				}
				if _, err := conv.Convert(timescale.FromMJD(53101.5), timescale.UTC, timescale.TT); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		s.Swap(nil, table, "loop")
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(101), s.Current().Version)
}

func TestFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewFetcher(testLogger).Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

// TestFetcherBodyLimit verifies that oversized responses are rejected instead of
// being read without bound.
func TestFetcherBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chunk := []byte(strings.Repeat("A", 1<<20))
		for i := 0; i < 52; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	_, err := NewFetcher(testLogger).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte limit")
}
