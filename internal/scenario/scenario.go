// Package scenario holds reference cases for the ITRF to GCRF rotation and runs them
// through the full time-scale and Earth-orientation chain.
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/pleira/celest/internal/eop"
	"github.com/pleira/celest/internal/timescale"
	"github.com/pleira/celest/internal/transform"
)

//go:embed scenarios.yaml
var scenarioFS embed.FS

// ErrMismatch is returned by Check when a result falls outside the scenario
// tolerance.
var ErrMismatch = errors.New("scenario result outside tolerance")

// roundTripTol bounds the ITRF → GCRF → ITRF position error, km.
const roundTripTol = 1e-9

type Vector [3]float64

func (v Vector) vec() transform.Vec3 { return transform.Vec3{X: v[0], Y: v[1], Z: v[2]} }

// StateValues is a state vector as written in the fixture file.
type StateValues struct {
	Position Vector `yaml:"position"`
	Velocity Vector `yaml:"velocity"`
}

// State converts the fixture vectors.
func (s StateValues) State() transform.State {
	return transform.State{Position: s.Position.vec(), Velocity: s.Velocity.vec()}
}

type EOPValues struct {
	DUT1 float64 `yaml:"dut1"`
	LOD  float64 `yaml:"lod"`
	XP   float64 `yaml:"xp"`
	YP   float64 `yaml:"yp"`
	DX   float64 `yaml:"dx"`
	DY   float64 `yaml:"dy"`
}

type CalendarValues struct {
	Year   int     `yaml:"year"`
	Month  int     `yaml:"month"`
	Day    int     `yaml:"day"`
	Hour   int     `yaml:"hour"`
	Minute int     `yaml:"minute"`
	Second float64 `yaml:"second"`
}

type Tolerance struct {
	Position float64 `yaml:"position"` // km
	Velocity float64 `yaml:"velocity"` // km/s
}

// Scenario is one reference case.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Series      string         `yaml:"series"`
	UTC         CalendarValues `yaml:"utc"`
	EOP         EOPValues      `yaml:"eop"`
	ITRF        StateValues    `yaml:"itrf"`

	// ExpectedGCRF is optional; without it only the round trip and radius are
	// checked.
	ExpectedGCRF *StateValues `yaml:"expected_gcrf"`
	Tolerance    Tolerance    `yaml:"tolerance"`
}

type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load returns the embedded scenarios.
func Load() ([]Scenario, error) {
	f, err := scenarioFS.Open("scenarios.yaml")
	if err != nil {
		return nil, fmt.Errorf("open embedded scenarios: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a scenario file.
func Parse(r io.Reader) ([]Scenario, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if len(doc.Scenarios) == 0 {
		return nil, errors.New("no scenarios defined")
	}
	seen := make(map[string]bool, len(doc.Scenarios))
	for i, s := range doc.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d: missing name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("scenario %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if _, err := transform.ParseSeries(s.Series); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if s.ExpectedGCRF != nil && (s.Tolerance.Position <= 0 || s.Tolerance.Velocity <= 0) {
			return nil, fmt.Errorf("scenario %q: expected_gcrf needs positive tolerances", s.Name)
		}
	}
	return doc.Scenarios, nil
}

// Calendar returns the scenario epoch.
func (s Scenario) Calendar() timescale.Calendar {
	c := s.UTC
	return timescale.Calendar{Year: c.Year, Month: c.Month, Day: c.Day, Hour: c.Hour, Minute: c.Minute, Second: c.Second}
}

// Parameters returns the scenario EOP stamped with the epoch's UTC MJD.
func (s Scenario) Parameters(utc timescale.TwoPart) eop.Parameters {
	e := s.EOP
	return eop.Parameters{MJD: utc.MJD(), DUT1: e.DUT1, LOD: e.LOD, XP: e.XP, YP: e.YP, DX: e.DX, DY: e.DY}
}

// Result is the output of one scenario run.
type Result struct {
	Scenario Scenario
	Epoch    transform.Epoch
	Rotation transform.Rotation

	// FullNutation is false when the IAU 2000B series stood in for the full one.
	FullNutation bool

	// GAST is the Greenwich apparent sidereal time from the equinox route, radians.
	GAST float64

	GCRF transform.State
	// ITRF is the GCRF state rotated back.
	ITRF transform.State
}

// Run evaluates the scenario with the given leap-second source (nil for the
// embedded table).
func (s Scenario) Run(leap timescale.LeapSecondSource, logger *slog.Logger, opts ...transform.ModelOption) (Result, error) {
	series, err := transform.ParseSeries(s.Series)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if leap == nil {
		leap = timescale.DefaultLeapSeconds()
	}
	utc, err := timescale.FromCalendar(timescale.UTC, s.Calendar(), leap)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	conv := timescale.NewConverter(leap, logger, timescale.WithDUT1(timescale.DUT1(s.EOP.DUT1)))
	ep, err := transform.EpochFromUTC(conv, utc)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	eo, err := transform.NewEarthOrientation(series, logger, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	p := s.Parameters(utc)
	rot := eo.Rotation(ep, p)
	gcrf, err := eo.ITRFToGCRF(s.ITRF.State(), ep, p)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	back, err := eo.GCRFToITRF(gcrf, ep, p)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	logger.Debug("scenario evaluated",
		"scenario", s.Name,
		"series", series.String(),
		"era_rad", rot.ERA,
	)
	return Result{
		Scenario:     s,
		Epoch:        ep,
		Rotation:     rot,
		FullNutation: eo.Model().FullNutation(),
		GAST:         eo.ApparentSiderealTime(ep),
		GCRF:         gcrf,
		ITRF:         back,
	}, nil
}

// Check compares the result against the scenario expectations.
func (r Result) Check() error {
	s := r.Scenario
	in := s.ITRF.State()
	if d := dist(r.ITRF.Position, in.Position); d > roundTripTol {
		return fmt.Errorf("%w: scenario %q round trip off by %.3e km", ErrMismatch, s.Name, d)
	}
	if d := math.Abs(r.GCRF.Position.Norm() - in.Position.Norm()); d > roundTripTol {
		return fmt.Errorf("%w: scenario %q radius changed by %.3e km", ErrMismatch, s.Name, d)
	}
	if s.ExpectedGCRF == nil {
		return nil
	}
	want := s.ExpectedGCRF.State()
	if d := dist(r.GCRF.Position, want.Position); d > s.Tolerance.Position {
		return fmt.Errorf("%w: scenario %q GCRF position off by %.3e km", ErrMismatch, s.Name, d)
	}
	if d := dist(r.GCRF.Velocity, want.Velocity); d > s.Tolerance.Velocity {
		return fmt.Errorf("%w: scenario %q GCRF velocity off by %.3e km/s", ErrMismatch, s.Name, d)
	}
	return nil
}

func dist(a, b transform.Vec3) float64 {
	return a.Sub(b).Norm()
}
