package eop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Default IERS and USNO publication points.
const (
	DefaultFinalsURL = "https://datacenter.iers.org/data/9/finals2000A.all"
	DefaultLeapURL   = "https://maia.usno.navy.mil/ser7/tai-utc.dat"
)

// maxBodyBytes bounds a downloaded table. finals2000A.all is a few MB.
const maxBodyBytes = 50 << 20

// Fetcher downloads raw table files.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with a 30 second request timeout.
func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Fetch performs an HTTP GET of url and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", url, maxBodyBytes)
	}

	f.logger.Debug("fetched table", "url", url, "bytes", len(body))
	return body, nil
}
