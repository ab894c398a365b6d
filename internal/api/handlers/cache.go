package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/response"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/validation"
)

// CacheHandler handles HTTP requests for price-cache maintenance endpoints.
type CacheHandler struct {
	fundService *service.FundService
}

// NewCacheHandler creates a new CacheHandler with the provided service dependency.
func NewCacheHandler(fundService *service.FundService) *CacheHandler {
	return &CacheHandler{
		fundService: fundService,
	}
}

// CachedFunds handles GET requests to list every fund with cached data,
// including point counts and last-updated timestamps.
//
// Endpoint: GET /api/cache
// Response: 200 OK with array of Fund
func (h *CacheHandler) CachedFunds(w http.ResponseWriter, _ *http.Request) {
	funds, err := h.fundService.ListCachedFunds()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to list cached funds", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, funds)
}

// Usage handles GET requests for the approximate storage footprint of the cache.
//
// Endpoint: GET /api/cache/usage
// Response: 200 OK with CacheUsage
func (h *CacheHandler) Usage(w http.ResponseWriter, _ *http.Request) {
	usage, err := h.fundService.UsageSummary()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute cache usage", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, usage)
}

// ClearFund handles DELETE requests to drop one fund's cached series.
//
// Endpoint: DELETE /api/cache/{name}
// Response: 204 No Content
// Error: 404 Not Found if the fund has no cached data
func (h *CacheHandler) ClearFund(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := validation.ValidateFundName(name); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.fundService.Clear(r.Context(), name); err != nil {
		if errors.Is(err, apperrors.ErrFundNotFound) {
			response.RespondError(w, http.StatusNotFound, "fund has no cached data", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to clear fund", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ClearAll handles DELETE requests to drop the entire price cache.
//
// Endpoint: DELETE /api/cache
// Response: 204 No Content
func (h *CacheHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.fundService.ClearAll(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to clear cache", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
