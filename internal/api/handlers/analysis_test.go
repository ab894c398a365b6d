package handlers_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/analysis"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/handlers"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/testutil"
)

func setupAnalysisHandler(t *testing.T) (*handlers.AnalysisHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	as := service.NewAnalysisService(repository.NewFundRepository(db), analysis.DefaultEvents)
	return handlers.NewAnalysisHandler(as), db
}

//nolint:gocyclo // Comprehensive integration test with multiple subtests
func TestAnalysisHandler_Analyze(t *testing.T) {
	params := map[string]string{"name": "CAL Income Fund"}

	t.Run("returns full analysis for cached window", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)
		testutil.NewFund().
			WithName("CAL Income Fund").
			WithDailyPoints("2024-01-01", 30, 100, 0.5).
			Build(t, db)

		req := testutil.NewRequestWithQueryAndURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/analysis", params,
			map[string]string{"start": "2024-01-01", "end": "2024-01-30"})
		w := httptest.NewRecorder()

		handler.Analyze(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.AnalysisResult
		err := json.NewDecoder(w.Body).Decode(&result)
		if err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if result.Summary.Count != 30 {
			t.Errorf("Expected 30 points summarized, got %d", result.Summary.Count)
		}
		if result.Trend.Direction != model.TrendUp {
			t.Errorf("Expected upward trend, got %s", result.Trend.Direction)
		}
		if len(result.Insights) == 0 {
			t.Error("Expected insights to be generated")
		}
	})

	t.Run("returns 422 for too little data", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)
		testutil.NewFund().
			WithName("CAL Income Fund").
			WithPoint("2024-01-01", 100).
			Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/analysis", params)
		w := httptest.NewRecorder()

		handler.Analyze(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := testutil.NewRequestWithQueryAndURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/analysis", params,
			map[string]string{"threshold": "-1"})
		w := httptest.NewRecorder()

		handler.Analyze(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAnalysisHandler_Compare(t *testing.T) {
	params := map[string]string{"name": "CAL Income Fund"}

	t.Run("compares two cached windows", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)
		testutil.NewFund().
			WithName("CAL Income Fund").
			WithDailyPoints("2024-01-01", 10, 100, 1).
			WithDailyPoints("2024-02-01", 10, 120, 2).
			Build(t, db)

		req := testutil.NewRequestWithQueryAndURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/compare", params,
			map[string]string{
				"aStart": "2024-01-01", "aEnd": "2024-01-10",
				"bStart": "2024-02-01", "bEnd": "2024-02-10",
			})
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var comparison model.PeriodComparison
		err := json.NewDecoder(w.Body).Decode(&comparison)
		if err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if comparison.PeriodA.Count != 10 || comparison.PeriodB.Count != 10 {
			t.Errorf("Expected 10 points per period, got %d and %d",
				comparison.PeriodA.Count, comparison.PeriodB.Count)
		}
		if comparison.MeanDiff <= 0 {
			t.Errorf("Expected period B mean above period A, got diff %f", comparison.MeanDiff)
		}
	})

	t.Run("rejects missing bounds", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := testutil.NewRequestWithQueryAndURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/compare", params,
			map[string]string{"aStart": "2024-01-01"})
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects inverted period", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := testutil.NewRequestWithQueryAndURLParams(http.MethodGet,
			"/api/fund/CAL%20Income%20Fund/compare", params,
			map[string]string{
				"aStart": "2024-01-10", "aEnd": "2024-01-01",
				"bStart": "2024-02-01", "bEnd": "2024-02-10",
			})
		w := httptest.NewRecorder()

		handler.Compare(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
