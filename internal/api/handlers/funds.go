package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/request"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/response"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/validation"
)

// FundHandler handles HTTP requests for fund endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the fund and catalog services.
type FundHandler struct {
	fundService    *service.FundService
	catalogService *service.CatalogService
}

// NewFundHandler creates a new FundHandler with the provided service dependencies.
func NewFundHandler(fundService *service.FundService, catalogService *service.CatalogService) *FundHandler {
	return &FundHandler{
		fundService:    fundService,
		catalogService: catalogService,
	}
}

// Funds handles GET requests to retrieve the fund catalog. An empty stored
// catalog triggers discovery against the upstream source.
//
// Endpoint: GET /api/fund
// Response: 200 OK with array of fund names
// Error: 502 Bad Gateway if discovery fails
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Funds(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalogService.ListFunds(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrDiscovery) || errors.Is(err, apperrors.ErrCatalogEmpty) {
			response.RespondError(w, http.StatusBadGateway, "fund discovery failed", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve funds", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, names)
}

// Discover handles POST requests to force a catalog re-discovery, replacing
// the stored catalog with whatever the upstream source currently lists.
//
// Endpoint: POST /api/fund/discover
// Response: 200 OK with array of fund names
// Error: 502 Bad Gateway if discovery fails
func (h *FundHandler) Discover(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalogService.Refresh(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "fund discovery failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, names)
}

// PricesResponse wraps a cached price series slice.
type PricesResponse struct {
	Fund        string             `json:"fund"`
	LastUpdated time.Time          `json:"lastUpdated"`
	Points      []model.PricePoint `json:"points"`
}

// Prices handles GET requests for a fund's cached price series, optionally
// restricted to an inclusive date window. Only cached data is returned; no
// upstream calls are made.
//
// Endpoint: GET /api/fund/{name}/prices?start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with PricesResponse
// Error: 400 Bad Request if a date parameter is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Prices(w http.ResponseWriter, r *http.Request) {
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

	points, lastUpdated, err := h.fundService.GetSeries(name, start, end)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve prices", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, PricesResponse{
		Fund:        name,
		LastUpdated: lastUpdated,
		Points:      points,
	})
}

// ConfirmationResponse asks the caller to resubmit with confirmed=true.
type ConfirmationResponse struct {
	ConfirmationRequired bool   `json:"confirmationRequired"`
	MissingDates         int    `json:"missingDates"`
	Message              string `json:"message"`
}

// Fetch handles POST requests to top up a fund's cached series over a date
// window. Only missing sampled dates are requested upstream. An unconfirmed
// request never fetches: it is answered with the number of upstream calls
// that confirming would trigger.
//
// Endpoint: POST /api/fund/{name}/fetch
// Request Body: FetchPricesRequest (start, end, intervalDays, confirmed)
// Response: 200 OK with FetchReport
// Response: 409 Conflict with ConfirmationResponse if not confirmed
// Error: 400 Bad Request if validation fails or the window is inverted
// Error: 507 Insufficient Storage if the cache cannot hold the merged series
func (h *FundHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.ValidateFundName(name); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	req, err := parseJSON[request.FetchPricesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateFetchPrices(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	start, _ := dateutil.ParseDate(req.Start)
	end, _ := dateutil.ParseDate(req.End)
	intervalDays := req.IntervalDays
	if intervalDays == 0 {
		intervalDays = 1
	}

	var missingDates int
	opts := service.FetchOptions{
		Confirm: func(missing int) bool {
			missingDates = missing
			return req.Confirmed
		},
	}

	report, err := h.fundService.EnsureRange(r.Context(), name, start, end, intervalDays, opts)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrFetchDeclined):
			response.RespondJSON(w, http.StatusConflict, ConfirmationResponse{
				ConfirmationRequired: true,
				MissingDates:         missingDates,
				Message:              fmt.Sprintf("fetching will make %d upstream requests, resubmit with confirmed=true", missingDates),
			})
		case errors.Is(err, apperrors.ErrInvalidRange), errors.Is(err, apperrors.ErrInvalidDate):
			response.RespondError(w, http.StatusBadRequest, "invalid date window", err.Error())
		case errors.Is(err, apperrors.ErrStorageQuota):
			response.RespondError(w, http.StatusInsufficientStorage, "price cache is full", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "fetch failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Export handles GET requests to download a fund's full cached series as a
// CSV attachment with a Date,Price header.
//
// Endpoint: GET /api/fund/{name}/export
// Response: 200 OK with text/csv body
// Error: 404 Not Found if the fund has no cached data
func (h *FundHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.ValidateFundName(name); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	filename := strings.ReplaceAll(name, " ", "_") + "_prices.csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.fundService.WriteCSV(w, name); err != nil {
		w.Header().Del("Content-Disposition")
		if errors.Is(err, apperrors.ErrFundNotFound) {
			response.RespondError(w, http.StatusNotFound, "fund has no cached data", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "export failed", err.Error())
	}
}

// parseWindow reads optional start and end query parameters as an inclusive
// date window. Absent parameters leave the corresponding bound open.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	var start, end time.Time

	if raw := r.URL.Query().Get("start"); raw != "" {
		if err := validation.ValidateDateParam("start", raw); err != nil {
			return start, end, err
		}
		start, _ = dateutil.ParseDate(raw)
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if err := validation.ValidateDateParam("end", raw); err != nil {
			return start, end, err
		}
		end, _ = dateutil.ParseDate(raw)
	}

	return start, end, nil
}
