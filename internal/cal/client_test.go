package cal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
)

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d.UTC()
}

// fastClient returns an HTTPClient pointed at the test server with delays
// shrunk so retry tests run quickly.
func fastClient(serverURL string) *HTTPClient {
	return NewHTTPClient(serverURL,
		WithRetryDelay(time.Millisecond),
		WithCooldown(0),
	)
}

func TestFetchDay_Success(t *testing.T) {
	var gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"UTMS_FUND": []map[string]any{
				{"FUND_NAME": "CAL Quantitative Equity Fund", "OLD_PRICE": 35.42},
				{"FUND_NAME": "CAL Income Fund", "OLD_PRICE": "18.9012"},
			},
		})
	}))
	defer server.Close()

	client := fastClient(server.URL)
	snapshot, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotDate != "2024-06-01" {
		t.Errorf("expected date query 2024-06-01, got %q", gotDate)
	}
	if len(snapshot.Funds) != 2 {
		t.Fatalf("expected 2 fund entries, got %d", len(snapshot.Funds))
	}

	price, ok := snapshot.PriceFor("CAL Quantitative Equity Fund")
	if !ok || price != 35.42 {
		t.Errorf("expected price 35.42, got %v (ok=%v)", price, ok)
	}

	// String-encoded price must decode defensively.
	price, ok = snapshot.PriceFor("CAL Income Fund")
	if !ok || price != 18.9012 {
		t.Errorf("expected string price 18.9012, got %v (ok=%v)", price, ok)
	}
}

func TestFetchDay_FundAbsentFromSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"UTMS_FUND": []map[string]any{
				{"FUND_NAME": "CAL Income Fund", "OLD_PRICE": 18.9},
			},
		})
	}))
	defer server.Close()

	client := fastClient(server.URL)
	snapshot, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Absence is not an error - it just contributes no data point.
	if _, ok := snapshot.PriceFor("CAL Gilt Edged Fund"); ok {
		t.Error("expected no price for unlisted fund")
	}
}

func TestFetchDay_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"UTMS_FUND": []map[string]any{
				{"FUND_NAME": "CAL Income Fund", "OLD_PRICE": 19.0},
			},
		})
	}))
	defer server.Close()

	client := fastClient(server.URL)
	snapshot, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01"))
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}
	if _, ok := snapshot.PriceFor("CAL Income Fund"); !ok {
		t.Error("expected fund price in final snapshot")
	}
}

func TestFetchDay_ExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := fastClient(server.URL)
	_, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01"))

	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}

	var exhausted *apperrors.FetchExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected FetchExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected Attempts=3, got %d", exhausted.Attempts)
	}
	if got := exhausted.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("expected failing date in error, got %s", got)
	}
	if exhausted.Err == nil {
		t.Error("expected last cause to be preserved")
	}
}

func TestFetchDay_PayloadErrorFieldTriggersRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no data for date"})
	}))
	defer server.Close()

	client := fastClient(server.URL)
	_, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01"))

	if attempts != 3 {
		t.Errorf("application-level errors should be retried; got %d attempts", attempts)
	}
	var exhausted *apperrors.FetchExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected FetchExhaustedError, got %v", err)
	}
}

func TestFetchDay_CooldownAfterSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"UTMS_FUND": []map[string]any{}})
	}))
	defer server.Close()

	cooldown := 50 * time.Millisecond
	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond), WithCooldown(cooldown))

	start := time.Now()
	if _, err := client.FetchDay(context.Background(), testDate(t, "2024-06-01")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < cooldown {
		t.Errorf("post-success cooldown not honoured: returned after %v", elapsed)
	}
}

func TestFetchDay_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Hour), WithCooldown(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchDay(ctx, testDate(t, "2024-06-01"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error during backoff, got %v", err)
	}
}

func TestDiscoverFunds(t *testing.T) {
	t.Run("extracts ordered distinct names", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("date") != "2024-10-01" {
				t.Errorf("expected probe date 2024-10-01, got %q", r.URL.Query().Get("date"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"UTMS_FUND": []map[string]any{
					{"FUND_NAME": "CAL Quantitative Equity Fund", "OLD_PRICE": 35.4},
					{"FUND_NAME": "CAL Income Fund", "OLD_PRICE": 18.9},
					{"FUND_NAME": "CAL Income Fund", "OLD_PRICE": 18.9}, // duplicate
					{"FUND_NAME": "", "OLD_PRICE": 1.0},                 // unnamed
				},
			})
		}))
		defer server.Close()

		client := fastClient(server.URL)
		funds, err := client.DiscoverFunds(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"CAL Quantitative Equity Fund", "CAL Income Fund"}
		if len(funds) != len(want) {
			t.Fatalf("expected %d funds, got %d: %v", len(want), len(funds), funds)
		}
		for i := range want {
			if funds[i] != want[i] {
				t.Errorf("fund[%d] = %q, want %q", i, funds[i], want[i])
			}
		}
	})

	t.Run("missing collection fails with DiscoveryError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"something_else": true})
		}))
		defer server.Close()

		client := fastClient(server.URL)
		_, err := client.DiscoverFunds(context.Background())
		if !errors.Is(err, apperrors.ErrDiscovery) {
			t.Errorf("expected ErrDiscovery, got %v", err)
		}
	})

	t.Run("probe failure propagates as DiscoveryError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := fastClient(server.URL)
		_, err := client.DiscoverFunds(context.Background())
		if !errors.Is(err, apperrors.ErrDiscovery) {
			t.Errorf("expected ErrDiscovery, got %v", err)
		}
	})
}

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"number", `{"FUND_NAME":"F","OLD_PRICE":12.34}`, 12.34, true},
		{"string", `{"FUND_NAME":"F","OLD_PRICE":"12.34"}`, 12.34, true},
		{"null", `{"FUND_NAME":"F","OLD_PRICE":null}`, 0, true},
		{"garbage string", `{"FUND_NAME":"F","OLD_PRICE":"abc"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry FundEntry
			err := json.Unmarshal([]byte(tt.input), &entry)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if float64(entry.OldPrice) != tt.want {
				t.Errorf("price = %v, want %v", float64(entry.OldPrice), tt.want)
			}
		})
	}
}
