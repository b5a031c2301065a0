package eop

import (
	"time"

	"github.com/pleira/celest/internal/timescale"
)

// Parameters are the Earth orientation parameters at one epoch.
type Parameters struct {
	MJD  float64 // UTC
	DUT1 float64 // UT1-UTC, seconds
	LOD  float64 // excess length of day, seconds
	XP   float64 // polar motion x, arcseconds
	YP   float64 // polar motion y, arcseconds
	DX   float64 // celestial pole offset dX wrt IAU 2000A, arcseconds
	DY   float64 // celestial pole offset dY wrt IAU 2000A, arcseconds

	// Predicted marks Bulletin A predictions rather than observed values.
	Predicted bool
}

// Snapshot is an immutable set of tables published by a Store.
type Snapshot struct {
	Version  uint64
	Leap     *timescale.LeapSecondTable
	EOP      *Table // nil when no EOP data is loaded
	Source   string
	LoadedAt time.Time
}
