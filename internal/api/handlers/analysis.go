package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/response"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/validation"
)

// AnalysisHandler handles HTTP requests for series analysis endpoints.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler with the provided service dependency.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Analyze handles GET requests for the full analysis of a fund's cached
// series over a date window: summary statistics, annualized volatility,
// trend, significant movements, contextual market events and insights.
//
// Endpoint: GET /api/fund/{name}/analysis?start&end&threshold
// Response: 200 OK with AnalysisResult
// Error: 400 Bad Request if a parameter is malformed
// Error: 422 Unprocessable Entity if the window holds too little data to analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.ValidateFundName(name); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 {
			response.RespondError(w, http.StatusBadRequest, "validation failed", "threshold must be a non-negative number")
			return
		}
	}

	result, err := h.analysisService.Analyze(name, start, end, threshold)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientData):
			response.RespondError(w, http.StatusUnprocessableEntity, "not enough data to analyze", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "analysis failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Compare handles GET requests to compare summary statistics of two date
// windows of the same fund.
//
// Endpoint: GET /api/fund/{name}/compare?aStart&aEnd&bStart&bEnd
// Response: 200 OK with PeriodComparison
// Error: 400 Bad Request if a parameter is missing, malformed or inverted
// Error: 422 Unprocessable Entity if either window is too short to summarize
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.ValidateFundName(name); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	bounds := make(map[string]string, 4)
	for _, field := range []string{"aStart", "aEnd", "bStart", "bEnd"} {
		raw := r.URL.Query().Get(field)
		if raw == "" {
			response.RespondError(w, http.StatusBadRequest, "validation failed", field+" is required")
			return
		}
		if err := validation.ValidateDateParam(field, raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		bounds[field] = raw
	}

	aStart, _ := dateutil.ParseDate(bounds["aStart"])
	aEnd, _ := dateutil.ParseDate(bounds["aEnd"])
	bStart, _ := dateutil.ParseDate(bounds["bStart"])
	bEnd, _ := dateutil.ParseDate(bounds["bEnd"])

	comparison, err := h.analysisService.ComparePeriods(name, aStart, aEnd, bStart, bEnd)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidRange):
			response.RespondError(w, http.StatusBadRequest, "invalid date window", err.Error())
		case errors.Is(err, apperrors.ErrInsufficientData):
			response.RespondError(w, http.StatusUnprocessableEntity, "not enough data to compare", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "comparison failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, comparison)
}
