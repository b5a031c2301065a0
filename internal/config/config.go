// Package config loads process configuration from CELEST_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pleira/celest/internal/transform"
)

// Config holds the settings of a celest process.
type Config struct {
	// Table sources. Empty file paths keep the embedded leap-second table and load
	// no EOP data.
	LeapSecondsFile string `env:"CELEST_LEAP_SECONDS_FILE"`
	EOPFile         string `env:"CELEST_EOP_FILE"`

	// FetchTables downloads the tables from LeapSecondsURL and EOPURL at startup,
	// after any files have loaded.
	FetchTables    bool          `env:"CELEST_FETCH_TABLES" envDefault:"false"`
	LeapSecondsURL string        `env:"CELEST_LEAP_SECONDS_URL" envDefault:"https://maia.usno.navy.mil/ser7/tai-utc.dat"`
	EOPURL         string        `env:"CELEST_EOP_URL" envDefault:"https://datacenter.iers.org/data/9/finals2000A.all"`
	FetchTimeout   time.Duration `env:"CELEST_FETCH_TIMEOUT" envDefault:"30s"`

	// Series is the precession-nutation model, e.g. IAU2006A or IAU2000A.
	Series string `env:"CELEST_SERIES" envDefault:"IAU2006A"`

	// IERS Conventions tables 5.3a and 5.3b with the full nutation series. Without
	// them the embedded IAU 2000B series is used.
	NutationPsiFile string `env:"CELEST_NUTATION_PSI_FILE"`
	NutationEpsFile string `env:"CELEST_NUTATION_EPS_FILE"`

	// StrictTables turns table lookups outside coverage into errors.
	StrictTables bool `env:"CELEST_STRICT_TABLES" envDefault:"false"`

	// Workers sizes the batch pool; 0 uses runtime.NumCPU().
	Workers int `env:"CELEST_WORKERS" envDefault:"0"`

	LogLevel    string `env:"CELEST_LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"CELEST_METRICS_ADDR"`

	// MaxTableAge marks the process unready once the table snapshot is older; 0
	// disables the check.
	MaxTableAge time.Duration `env:"CELEST_MAX_TABLE_AGE" envDefault:"0s"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks fields that env parsing cannot.
func (c Config) Validate() error {
	if _, err := c.ModelSeries(); err != nil {
		return fmt.Errorf("CELEST_SERIES: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("CELEST_LOG_LEVEL: %w", err)
	}
	if (c.NutationPsiFile == "") != (c.NutationEpsFile == "") {
		return fmt.Errorf("CELEST_NUTATION_PSI_FILE and CELEST_NUTATION_EPS_FILE must be set together")
	}
	if c.Workers < 0 {
		return fmt.Errorf("CELEST_WORKERS: must be >= 0, got %d", c.Workers)
	}
	if c.MaxTableAge < 0 {
		return fmt.Errorf("CELEST_MAX_TABLE_AGE: must be >= 0, got %v", c.MaxTableAge)
	}
	if c.FetchTables && c.FetchTimeout <= 0 {
		return fmt.Errorf("CELEST_FETCH_TIMEOUT: must be positive, got %v", c.FetchTimeout)
	}
	return nil
}

// ModelSeries returns the configured precession-nutation series.
func (c Config) ModelSeries() (transform.Series, error) {
	return transform.ParseSeries(c.Series)
}

// ModelOptions loads the configured nutation tables, if any.
func (c Config) ModelOptions() ([]transform.ModelOption, error) {
	if c.NutationPsiFile == "" {
		return nil, nil
	}
	nt, err := transform.LoadNutationTables(c.NutationPsiFile, c.NutationEpsFile)
	if err != nil {
		return nil, err
	}
	return []transform.ModelOption{transform.WithNutationTable(nt)}, nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}
