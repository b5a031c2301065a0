// Package batch applies one precomputed Earth orientation rotation to many state
// vectors in parallel.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/pleira/celest/internal/metrics"
	"github.com/pleira/celest/internal/transform"
)

// Direction selects which way states are rotated.
type Direction int

const (
	// ToCelestial rotates ITRF states to GCRF.
	ToCelestial Direction = iota
	// ToTerrestrial rotates GCRF states to ITRF.
	ToTerrestrial
)

func (d Direction) String() string {
	switch d {
	case ToCelestial:
		return "itrf_to_gcrf"
	case ToTerrestrial:
		return "gcrf_to_itrf"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// chunkSize is the number of states handed to a worker at once.
const chunkSize = 256

// rotateJob is a half-open index range of the input.
type rotateJob struct {
	start, end int
}

// WorkerPool manages a fixed number of goroutines for parallel state rotation.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers. A
// non-positive count uses runtime.NumCPU().
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Rotate applies rot to every state and returns the results in input order. Velocities
// pick up the Earth rotation term of rot. If ctx is cancelled before all states are
// rotated, Rotate returns the context error and no results.
func (wp *WorkerPool) Rotate(ctx context.Context, states []transform.State, rot transform.Rotation, dir Direction) ([]transform.State, error) {
	var apply func(transform.State) transform.State
	switch dir {
	case ToCelestial:
		apply = rot.ToCelestial
	case ToTerrestrial:
		apply = rot.ToTerrestrial
	default:
		return nil, fmt.Errorf("batch rotate: unknown direction %v", dir)
	}
	return wp.run(ctx, states, apply, dir.String())
}

// Apply multiplies every position and velocity by m, with no rotating-frame term.
func (wp *WorkerPool) Apply(ctx context.Context, states []transform.State, m transform.Matrix) ([]transform.State, error) {
	return wp.run(ctx, states, func(s transform.State) transform.State {
		return transform.State{Position: m.MulVec(s.Position), Velocity: m.MulVec(s.Velocity)}
	}, "matrix")
}

func (wp *WorkerPool) run(ctx context.Context, states []transform.State, apply func(transform.State) transform.State, name string) ([]transform.State, error) {
	if len(states) == 0 {
		return nil, ctx.Err()
	}
	start := time.Now()

	out := make([]transform.State, len(states))
	jobs := make(chan rotateJob, wp.workers*2)

	// Each worker writes only the indices of its own jobs, so out needs no lock.
	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				for k := job.start; k < job.end; k++ {
					out[k] = apply(states[k])
				}
			}
		}()
	}

	// Feed jobs.
feed:
	for lo := 0; lo < len(states); lo += chunkSize {
		hi := min(lo+chunkSize, len(states))
		select {
		case jobs <- rotateJob{start: lo, end: hi}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		wp.logger.Warn("batch rotation cancelled", "transform", name, "states", len(states), "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.ObserveBatch(len(states), elapsed)
	wp.logger.Debug("batch rotation complete",
		"transform", name,
		"states", len(states),
		"workers", wp.workers,
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}
