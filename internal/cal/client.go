// Package cal provides the client for the Capital Alliance unit-trust rates
// API. The upstream serves one full cross-fund price snapshot per calendar
// date and is implicitly rate limited, so every successful fetch is followed
// by a mandatory cooldown before the result is returned.
package cal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
)

// Client is the interface the orchestration layer depends on. Implemented by
// HTTPClient in production and by the testutil mock in tests.
type Client interface {
	// FetchDay retrieves the full fund snapshot for one calendar date.
	FetchDay(ctx context.Context, date time.Time) (Snapshot, error)

	// DiscoverFunds enumerates the fund names present in a recent probe
	// snapshot, in listing order.
	DiscoverFunds(ctx context.Context) ([]string, error)
}

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 1 * time.Second
	defaultCooldown      = 500 * time.Millisecond
	defaultTimeout       = 10 * time.Second

	// probeDate is a recent date known to carry a full fund listing, used
	// for fund discovery.
	defaultProbeDate = "2024-10-01"
)

// HTTPClient fetches daily fund snapshots over HTTP with bounded retry and
// linearly increasing backoff between attempts.
type HTTPClient struct {
	baseURL       string
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
	cooldown      time.Duration
	probeDate     time.Time
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithRetryDelay sets the base backoff delay between failed attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *HTTPClient) { c.retryDelay = d }
}

// WithCooldown sets the post-success delay imposed on every successful fetch.
func WithCooldown(d time.Duration) Option {
	return func(c *HTTPClient) { c.cooldown = d }
}

// WithProbeDate sets the date used for fund discovery.
func WithProbeDate(t time.Time) Option {
	return func(c *HTTPClient) { c.probeDate = dateutil.Normalize(t) }
}

// NewHTTPClient creates a client for the given base URL. Requests carry a
// per-call timeout; a timed-out request counts as a failed attempt like any
// other.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	probe, _ := dateutil.ParseDate(defaultProbeDate)
	c := &HTTPClient{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		cooldown:      defaultCooldown,
		probeDate:     probe,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDay retrieves the snapshot for one date, retrying up to the attempt
// bound on any failure: transport error, non-2xx status, or an
// application-level error field in the payload. Backoff grows linearly with
// the attempt index. After exhausting retries it fails with
// *apperrors.FetchExhaustedError wrapping the last cause.
//
// On success the configured cooldown elapses before the snapshot is
// returned; this is part of the upstream rate-limit contract and applies to
// every successful call. Context cancellation is honoured between attempts
// and during delays, never by interrupting an in-flight request's retry
// accounting.
func (c *HTTPClient) FetchDay(ctx context.Context, date time.Time) (Snapshot, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		snapshot, err := c.fetchOnce(ctx, date)
		if err == nil {
			if sleepErr := sleepContext(ctx, c.cooldown); sleepErr != nil {
				return Snapshot{}, sleepErr
			}
			return snapshot, nil
		}
		lastErr = err

		if attempt < c.retryAttempts {
			if sleepErr := sleepContext(ctx, time.Duration(attempt)*c.retryDelay); sleepErr != nil {
				return Snapshot{}, sleepErr
			}
		}
	}

	return Snapshot{}, &apperrors.FetchExhaustedError{
		Date:     dateutil.Normalize(date),
		Attempts: c.retryAttempts,
		Err:      lastErr,
	}
}

// DiscoverFunds performs a single probe fetch and extracts the distinct fund
// names present, preserving listing order. Fails with apperrors.ErrDiscovery
// when the probe snapshot is absent or lacks the fund collection.
func (c *HTTPClient) DiscoverFunds(ctx context.Context) ([]string, error) {
	snapshot, err := c.FetchDay(ctx, c.probeDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDiscovery, err)
	}

	if snapshot.Funds == nil {
		return nil, fmt.Errorf("%w: probe snapshot missing fund collection", apperrors.ErrDiscovery)
	}

	seen := make(map[string]bool, len(snapshot.Funds))
	names := make([]string, 0, len(snapshot.Funds))
	for _, entry := range snapshot.Funds {
		if entry.FundName == "" || seen[entry.FundName] {
			continue
		}
		seen[entry.FundName] = true
		names = append(names, entry.FundName)
	}

	return names, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context, date time.Time) (Snapshot, error) {
	endpoint := fmt.Sprintf("%s?date=%s", c.baseURL, url.QueryEscape(dateutil.FormatDate(date)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if snapshot.Err != "" {
		return Snapshot{}, fmt.Errorf("api error: %s", snapshot.Err)
	}

	return snapshot, nil
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
