package transform

import (
	"math"
	"testing"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/pleira/celest/internal/timescale"
)

// TestGMST82AgainstGoSatellite validates GMST82 against the go-satellite library's
// GSTimeFromDate function, which uses the same IAU-82 model.
func TestGMST82AgainstGoSatellite(t *testing.T) {
	tests := []struct {
		name string
		cal  timescale.Calendar
	}{
		{"J2000.0 epoch", timescale.Calendar{Year: 2000, Month: 1, Day: 1, Hour: 12}},
		{"Vallado example date", timescale.Calendar{Year: 2004, Month: 4, Day: 6, Hour: 7, Minute: 51, Second: 28}},
		{"recent date 2026", timescale.Calendar{Year: 2026, Month: 2, Day: 6, Hour: 4, Minute: 1}},
		{"before J2000", timescale.Calendar{Year: 1987, Month: 4, Day: 10, Hour: 19, Minute: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ut1, err := timescale.FromCalendar(timescale.UT1, tt.cal, nil)
			if err != nil {
				t.Fatal(err)
			}
			ours := GMST82(ut1)
			ref := satellite.GSTimeFromDate(tt.cal.Year, tt.cal.Month, tt.cal.Day,
				tt.cal.Hour, tt.cal.Minute, int(tt.cal.Second))

			// 1e-8 radians ≈ 2 mas; the library works from a single-float JD.
			if diff := math.Abs(ours - ref); diff > 1e-8 {
				t.Errorf("GMST82 = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", ours, ref, diff)
			}
		})
	}
}

// TestTEMEToPEFAgainstGoSatellite compares the TEME rotation with go-satellite's
// ECIToECEF, which applies the same GMST-only rotation without polar motion.
func TestTEMEToPEFAgainstGoSatellite(t *testing.T) {
	tests := []struct {
		name string
		teme State
		gmst float64
	}{
		{"Vallado example 3-15", valladoTEME, 5.459562586617345},
		{"LEO equatorial", State{Position: Vec3{6778, 0, 0}, Velocity: Vec3{0, 7.5, 0}}, 1.3},
		{"LEO polar", State{Position: Vec3{0, 0, 6978}, Velocity: Vec3{7.4, 0, 0}}, 4.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours := TEMEToITRF(tt.teme, tt.gmst, OmegaEarth, Identity())
			ref := satellite.ECIToECEF(
				satellite.Vector3{X: tt.teme.Position.X, Y: tt.teme.Position.Y, Z: tt.teme.Position.Z},
				tt.gmst,
			)
			refPos := Vec3{ref.X, ref.Y, ref.Z}

			// Tolerance: 1 mm.
			if d := vecDiff(ours.Position, refPos); d > 1e-6 {
				t.Errorf("position ours %+v, go-satellite %+v (diff %.3e km)", ours.Position, refPos, d)
			}
			if !ValidOrbitState(ours) {
				t.Errorf("state failed validation: %+v", ours)
			}
		})
	}
}

// TestTEMEToITRFVelocity verifies the velocity transform includes the Earth rotation
// correction.
func TestTEMEToITRFVelocity(t *testing.T) {
	teme := State{Position: Vec3{6778, 0, 0}, Velocity: Vec3{0, 7.5, 0}}
	itrf := TEMEToITRF(teme, 0, OmegaEarth, Identity())

	if math.Abs(itrf.Position.X-6778) > 1e-12 {
		t.Errorf("X position: got %.6f, want 6778", itrf.Position.X)
	}
	// ω·R = 7.292115e-5 · 6778 ≈ 0.4943 km/s.
	wantVY := 7.5 - OmegaEarth*6778.0
	if math.Abs(itrf.Velocity.Y-wantVY) > 1e-12 {
		t.Errorf("VY: got %.9f km/s, want %.9f km/s", itrf.Velocity.Y, wantVY)
	}
}

func TestValidOrbitState(t *testing.T) {
	tests := []struct {
		name  string
		s     State
		valid bool
	}{
		{"LEO", State{Position: Vec3{X: 6778}}, true},
		{"GEO", State{Position: Vec3{X: 42164}}, true},
		{"too low", State{Position: Vec3{X: 5000}}, false},
		{"too high", State{Position: Vec3{X: 600000}}, false},
		{"NaN", State{Position: Vec3{X: math.NaN()}}, false},
		{"Inf velocity", State{Position: Vec3{X: 7000}, Velocity: Vec3{Y: math.Inf(1)}}, false},
		{"zero", State{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidOrbitState(tt.s); got != tt.valid {
				t.Errorf("ValidOrbitState(%+v) = %v, want %v", tt.s, got, tt.valid)
			}
		})
	}
}

func TestGeodeticRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		g    Geodetic
	}{
		{"equator", Geodetic{Lat: 0, Lon: 0, Height: 0}},
		{"mid latitude", Geodetic{Lat: 39.007 * math.Pi / 180, Lon: -104.883 * math.Pi / 180, Height: 2.19456}},
		{"southern LEO", Geodetic{Lat: -51.6 * math.Pi / 180, Lon: 2.1, Height: 420}},
		{"near pole", Geodetic{Lat: 89.9 * math.Pi / 180, Lon: -0.5, Height: 35786}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := GeodeticToITRF(tt.g)
			got := ITRFToGeodetic(r)
			if math.Abs(got.Lat-tt.g.Lat) > 1e-11 || math.Abs(got.Lon-tt.g.Lon) > 1e-12 || math.Abs(got.Height-tt.g.Height) > 1e-6 {
				t.Errorf("round trip = %+v, want %+v", got, tt.g)
			}
		})
	}

	// The equator point sits at the semi-major axis.
	if r := GeodeticToITRF(Geodetic{}); math.Abs(r.Norm()-wgs84A) > 1e-12 {
		t.Errorf("equator radius = %.9f km", r.Norm())
	}
}
