package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pleira/celest/internal/batch"
	"github.com/pleira/celest/internal/config"
	"github.com/pleira/celest/internal/eop"
	"github.com/pleira/celest/internal/health"
	"github.com/pleira/celest/internal/metrics"
	"github.com/pleira/celest/internal/scenario"
	"github.com/pleira/celest/internal/timescale"
	"github.com/pleira/celest/internal/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR loading configuration:", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := loadTables(ctx, cfg, logger)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", health.Healthz)
		mux.Handle("/readyz", health.Readyz(store, cfg.MaxTableAge))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listen error", "error", err)
			}
		}()
	}

	snap := store.Current()
	metrics.SetSnapshotAge(store.AgeSeconds())
	fmt.Printf("Tables: version %d from %s, %d leap-second entries", snap.Version, snap.Source, snap.Leap.Len())
	if snap.EOP != nil {
		first, last := snap.EOP.Span()
		fmt.Printf(", EOP MJD %.0f..%.0f (%d rows)", first, last, snap.EOP.Len())
	}
	fmt.Println()

	modelOpts, err := cfg.ModelOptions()
	if err != nil {
		fmt.Println("ERROR loading nutation tables:", err)
		os.Exit(1)
	}
	if len(modelOpts) == 0 {
		logger.Warn("no nutation tables configured, using the IAU 2000B series")
	}

	scenarios, err := scenario.Load()
	if err != nil {
		fmt.Println("ERROR loading scenarios:", err)
		os.Exit(1)
	}

	failed := 0
	for _, s := range scenarios {
		if err := printScenario(s, store, logger, modelOpts); err != nil {
			fmt.Printf("  FAIL: %v\n", err)
			failed++
		}
	}
	fmt.Printf("\n%d of %d scenarios passed\n", len(scenarios)-failed, len(scenarios))

	if err := printTimeScales(scenarios[0], store, cfg, logger); err != nil {
		fmt.Println("ERROR converting time scales:", err)
		failed++
	}

	if err := printBatch(ctx, scenarios[0], store, cfg, logger, modelOpts); err != nil {
		fmt.Println("ERROR in batch rotation:", err)
		failed++
	}

	if metricsSrv != nil {
		logger.Info("diagnostics done, metrics still served until interrupted")
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// loadTables builds the table store from files and, when enabled, the network.
// Failures keep the embedded tables.
func loadTables(ctx context.Context, cfg config.Config, logger *slog.Logger) *eop.Store {
	store := eop.NewStore(logger)
	if cfg.LeapSecondsFile != "" || cfg.EOPFile != "" {
		if _, err := store.LoadFiles(cfg.LeapSecondsFile, cfg.EOPFile); err != nil {
			logger.Warn("using embedded tables", "error", err)
		}
	}
	if cfg.FetchTables {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
		if _, err := store.Refresh(fetchCtx, eop.NewFetcher(logger), cfg.LeapSecondsURL, cfg.EOPURL); err != nil {
			logger.Warn("table download failed", "error", err)
		}
	}
	return store
}

func printScenario(s scenario.Scenario, store *eop.Store, logger *slog.Logger, opts []transform.ModelOption) error {
	fmt.Printf("\nScenario %s: %s\n", s.Name, s.Description)
	res, err := s.Run(store, logger, opts...)
	if err != nil {
		return err
	}
	rot := res.Rotation
	fmt.Printf("  series %v (full nutation %v)  TT %v  UT1 %v\n", rot.Series, res.FullNutation, res.Epoch.TT, res.Epoch.UT1)
	fmt.Printf("  ERA  %v  GAST %v\n", transform.RadiansToHMS(rot.ERA), transform.RadiansToHMS(res.GAST))
	fmt.Printf("  CIP  X %v  Y %v  s %.6f mas\n",
		transform.RadiansToDMS(rot.X), transform.RadiansToDMS(rot.Y), rot.S/math.Pi*180*3600e3)
	g := res.GCRF
	fmt.Printf("  GCRF r (%.6f, %.6f, %.6f) km\n", g.Position.X, g.Position.Y, g.Position.Z)
	fmt.Printf("  GCRF v (%.9f, %.9f, %.9f) km/s\n", g.Velocity.X, g.Velocity.Y, g.Velocity.Z)
	if err := res.Check(); err != nil {
		return err
	}
	fmt.Println("  ok")
	return nil
}

func printTimeScales(s scenario.Scenario, store *eop.Store, cfg config.Config, logger *slog.Logger) error {
	opts := []timescale.Option{
		timescale.WithDUT1(timescale.DUT1(s.EOP.DUT1)),
		timescale.WithTDB(timescale.ApproximateTDB),
	}
	if cfg.StrictTables {
		opts = append(opts, timescale.WithStrictTables())
	}
	conv := timescale.NewConverter(store, logger, opts...)

	utc, err := timescale.FromCalendar(timescale.UTC, s.Calendar(), store)
	if err != nil {
		return err
	}
	fmt.Printf("\nTime scales at %s epoch\n", s.Name)
	for _, to := range []timescale.Scale{timescale.UTC, timescale.TAI, timescale.TT, timescale.TCG, timescale.TDB, timescale.UT1} {
		t, err := conv.Convert(utc, timescale.UTC, to)
		if err != nil {
			return err
		}
		fmt.Printf("  %-4v %v  (%+.6f s from UTC)\n", to, t, t.SecondsSince(utc))
	}
	for _, f := range []timescale.DateForm{timescale.ModifiedJulianDay, timescale.CNESJulianDay, timescale.UnixTime} {
		v, err := f.FromTwoPart(utc)
		if err != nil {
			return err
		}
		fmt.Printf("  UTC as %-4v %.6f\n", f, v)
	}
	return nil
}

// printBatch rotates a ring of equatorial ground points at the scenario epoch and
// reports the worst round-trip error.
func printBatch(ctx context.Context, s scenario.Scenario, store *eop.Store, cfg config.Config, logger *slog.Logger, opts []transform.ModelOption) error {
	series, err := cfg.ModelSeries()
	if err != nil {
		return err
	}
	eo, err := transform.NewEarthOrientation(series, logger, opts...)
	if err != nil {
		return err
	}
	utc, err := timescale.FromCalendar(timescale.UTC, s.Calendar(), store)
	if err != nil {
		return err
	}
	conv := timescale.NewConverter(store, logger, timescale.WithDUT1(timescale.DUT1(s.EOP.DUT1)))
	ep, err := transform.EpochFromUTC(conv, utc)
	if err != nil {
		return err
	}
	rot := eo.Rotation(ep, s.Parameters(utc))

	ring := make([]transform.State, 3600)
	for i := range ring {
		lon := float64(i) / float64(len(ring)) * 2 * math.Pi
		ring[i] = transform.State{Position: transform.GeodeticToITRF(transform.Geodetic{Lon: lon})}
	}

	pool := batch.NewWorkerPool(cfg.Workers, logger)
	start := time.Now()
	gcrf, err := pool.Rotate(ctx, ring, rot, batch.ToCelestial)
	if err != nil {
		return err
	}
	back, err := pool.Rotate(ctx, gcrf, rot, batch.ToTerrestrial)
	if err != nil {
		return err
	}
	worst := 0.0
	for i := range ring {
		worst = math.Max(worst, back[i].Position.Sub(ring[i].Position).Norm())
	}
	fmt.Printf("\nBatch: %d ground points on %d workers in %v, worst round trip %.3e km\n",
		len(ring), pool.Workers(), time.Since(start).Round(time.Microsecond), worst)
	return nil
}
