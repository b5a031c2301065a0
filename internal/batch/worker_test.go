package batch

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/pleira/celest/internal/eop"
	"github.com/pleira/celest/internal/timescale"
	"github.com/pleira/celest/internal/transform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testRotation(t *testing.T) transform.Rotation {
	t.Helper()
	e, err := transform.NewEarthOrientation(transform.IAU2006A, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	ep := transform.Epoch{
		TT:  timescale.TwoPart{Whole: 2453101.5, Fraction: 0.32815474547453705},
		UT1: timescale.TwoPart{Whole: 2453101.5, Fraction: 0.3274067829525463},
	}
	return e.Rotation(ep, eop.Parameters{XP: -0.140682, YP: 0.333309, LOD: 0.0015563})
}

// ring returns n states spread around a circular orbit.
func ring(n int) []transform.State {
	states := make([]transform.State, n)
	for i := range states {
		a := 2 * math.Pi * float64(i) / float64(n)
		s, c := math.Sincos(a)
		states[i] = transform.State{
			Position: transform.Vec3{X: 7000 * c, Y: 7000 * s, Z: float64(i % 100)},
			Velocity: transform.Vec3{X: -7.5 * s, Y: 7.5 * c, Z: 0.1},
		}
	}
	return states
}

// TestRotatePreservesOrder verifies that parallel results match sequential
// application index by index.
func TestRotatePreservesOrder(t *testing.T) {
	rot := testRotation(t)
	states := ring(1000)
	wp := NewWorkerPool(4, testLogger())

	for _, dir := range []Direction{ToCelestial, ToTerrestrial} {
		t.Run(dir.String(), func(t *testing.T) {
			got, err := wp.Rotate(context.Background(), states, rot, dir)
			if err != nil {
				t.Fatalf("Rotate: %v", err)
			}
			if len(got) != len(states) {
				t.Fatalf("got %d states, want %d", len(got), len(states))
			}
			for i, s := range states {
				var want transform.State
				if dir == ToCelestial {
					want = rot.ToCelestial(s)
				} else {
					want = rot.ToTerrestrial(s)
				}
				if got[i] != want {
					t.Fatalf("state %d = %+v, want %+v", i, got[i], want)
				}
			}
		})
	}
}

func TestRotateRoundTrip(t *testing.T) {
	rot := testRotation(t)
	states := ring(300)
	wp := NewWorkerPool(3, testLogger())

	gcrf, err := wp.Rotate(context.Background(), states, rot, ToCelestial)
	if err != nil {
		t.Fatal(err)
	}
	back, err := wp.Rotate(context.Background(), gcrf, rot, ToTerrestrial)
	if err != nil {
		t.Fatal(err)
	}
	for i := range states {
		if d := back[i].Position.Sub(states[i].Position).Norm(); d > 1e-9 {
			t.Fatalf("state %d position off by %.3e km", i, d)
		}
		if d := back[i].Velocity.Sub(states[i].Velocity).Norm(); d > 1e-12 {
			t.Fatalf("state %d velocity off by %.3e km/s", i, d)
		}
	}
}

func TestApply(t *testing.T) {
	m := transform.RotZ(0.5)
	states := ring(10)
	got, err := NewWorkerPool(2, testLogger()).Apply(context.Background(), states, m)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range states {
		if got[i].Position != m.MulVec(s.Position) || got[i].Velocity != m.MulVec(s.Velocity) {
			t.Fatalf("state %d not rotated by m", i)
		}
	}
}

func TestRotateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewWorkerPool(2, testLogger()).Rotate(ctx, ring(5000), testRotation(t), ToCelestial)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if got != nil {
		t.Errorf("got %d results from a cancelled batch", len(got))
	}
}

func TestRotateEmptyAndInvalid(t *testing.T) {
	wp := NewWorkerPool(0, testLogger())
	if wp.Workers() <= 0 {
		t.Errorf("Workers() = %d, want runtime.NumCPU()", wp.Workers())
	}

	got, err := wp.Rotate(context.Background(), nil, testRotation(t), ToCelestial)
	if err != nil || got != nil {
		t.Errorf("empty batch = (%v, %v), want (nil, nil)", got, err)
	}
	if _, err := wp.Rotate(context.Background(), ring(3), testRotation(t), Direction(9)); err == nil {
		t.Error("expected error for unknown direction")
	}
}
