package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/handlers"
	custommiddleware "github.com/DilshanPGN/cal-fund-analyzer/internal/api/middleware"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/config"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	fundService *service.FundService,
	catalogService *service.CatalogService,
	analysisService *service.AnalysisService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(fundService, catalogService)
			analysisHandler := handlers.NewAnalysisHandler(analysisService)
			r.Get("/", fundHandler.Funds)
			r.Post("/discover", fundHandler.Discover)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/prices", fundHandler.Prices)
				r.Post("/fetch", fundHandler.Fetch)
				r.Get("/export", fundHandler.Export)
				r.Get("/analysis", analysisHandler.Analyze)
				r.Get("/compare", analysisHandler.Compare)
			})
		})

		r.Route("/cache", func(r chi.Router) {
			cacheHandler := handlers.NewCacheHandler(fundService)
			r.Get("/", cacheHandler.CachedFunds)
			r.Get("/usage", cacheHandler.Usage)
			r.Delete("/", cacheHandler.ClearAll)
			r.Delete("/{name}", cacheHandler.ClearFund)
		})
	})

	return r
}
