package timescale

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestDefaultLeapSeconds(t *testing.T) {
	table := DefaultLeapSeconds()
	if table.Len() != 42 {
		t.Fatalf("Len() = %d, want 42", table.Len())
	}
	if table.StartMJD() != earliestMJD {
		t.Errorf("StartMJD() = %v, want %v", table.StartMJD(), earliestMJD)
	}
	if table.LastChangeMJD() != 57754 {
		t.Errorf("LastChangeMJD() = %v, want 57754", table.LastChangeMJD())
	}
}

func TestTAIMinusUTC(t *testing.T) {
	table := DefaultLeapSeconds()
	tests := []struct {
		name string
		mjd  float64
		want float64
		tol  float64
	}{
		{"2003-06-01", 52791, 32, 0},
		{"2008-01-17", 54482, 33, 0},
		{"2017-09-01", 57997, 37, 0},
		{"day before 2017 leap", 57753.99, 36, 0},
		{"last microsecond before 2017 leap", 57754 - 1e-6/86400, 36, 0},
		{"2017-01-01 00:00", 57754, 37, 0},
		{"1972-01-01", 41317, 10, 0},
		{"1965-03-01 noon drift", 38820.5, 3.7172420, 1e-9},
		{"1960-01-01", 36934, 1.4178180 + (36934-37300)*0.0012960, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.TAIMinusUTC(tt.mjd)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("TAIMinusUTC(%v) = %.10f, want %.10f", tt.mjd, got, tt.want)
			}
		})
	}
}

func TestTAIMinusUTCOutsideCoverage(t *testing.T) {
	table := DefaultLeapSeconds()

	got, err := table.TAIMinusUTC(30000)
	if !errors.Is(err, ErrTableLookupMiss) {
		t.Errorf("before start err = %v, want ErrTableLookupMiss", err)
	}
	first := table.Entries()[0]
	if got != first.OffsetAt(first.EffectiveMJD) || got == 0 {
		t.Errorf("before start offset = %v, want first entry value", got)
	}

	// No expiry on the built-in table: far future is the last offset, no error.
	got, err = table.TAIMinusUTC(90000)
	if err != nil || got != 37 {
		t.Errorf("far future = (%v, %v), want (37, nil)", got, err)
	}

	expiring, err := NewLeapSecondTable(table.Entries(), WithExpiry(60000))
	if err != nil {
		t.Fatal(err)
	}
	got, err = expiring.TAIMinusUTC(60001)
	if !errors.Is(err, ErrTableLookupMiss) || got != 37 {
		t.Errorf("past expiry = (%v, %v), want (37, ErrTableLookupMiss)", got, err)
	}
}

func TestNewLeapSecondTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []LeapSecondEntry
	}{
		{"empty", nil},
		{"unsorted", []LeapSecondEntry{
			{EffectiveMJD: 41499, Offset: 11, DriftEpochMJD: 41499},
			{EffectiveMJD: 41317, Offset: 10, DriftEpochMJD: 41317},
		}},
		{"offset decreases", []LeapSecondEntry{
			{EffectiveMJD: 41317, Offset: 11, DriftEpochMJD: 41317},
			{EffectiveMJD: 41499, Offset: 10, DriftEpochMJD: 41499},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLeapSecondTable(tt.entries); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLeapSecondTableIsImmutable(t *testing.T) {
	entries := []LeapSecondEntry{{EffectiveMJD: 41317, Offset: 10, DriftEpochMJD: 41317}}
	table, err := NewLeapSecondTable(entries)
	if err != nil {
		t.Fatal(err)
	}
	entries[0].Offset = 99
	table.Entries()[0].Offset = 98
	if got, _ := table.TAIMinusUTC(41317); got != 10 {
		t.Errorf("TAIMinusUTC = %v after caller mutation, want 10", got)
	}
}

func TestParseLeapSeconds(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	data := `# comment
 1961 JAN  1 =JD 2437300.5  TAI-UTC=   1.4228180 S + (MJD - 37300.) X 0.001296 S

 1972 JAN  1 =JD 2441317.5  TAI-UTC=  10.0       S + (MJD - 41317.) X 0.0      S
 this line is garbage
 2017 JAN  1 =JD 2457754.5  TAI-UTC=  37.0       S + (MJD - 41317.) X 0.0      S
`
	entries, err := ParseLeapSeconds(strings.NewReader(data), logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	want := LeapSecondEntry{EffectiveMJD: 37300, Offset: 1.4228180, DriftEpochMJD: 37300, DriftRate: 0.001296}
	if entries[0] != want {
		t.Errorf("entries[0] = %+v, want %+v", entries[0], want)
	}
	if entries[2].EffectiveMJD != 57754 || entries[2].Offset != 37 {
		t.Errorf("entries[2] = %+v", entries[2])
	}
}
