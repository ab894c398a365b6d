package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/analysis"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/api"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/cal"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/config"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/database"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	fundRepo := repository.NewFundRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Upstream price source
	probeDate, err := dateutil.ParseDate(cfg.CAL.ProbeDate)
	if err != nil {
		log.Fatalf("Invalid CAL_PROBE_DATE %q: %v", cfg.CAL.ProbeDate, err)
	}
	calClient := cal.NewHTTPClient(
		cfg.CAL.BaseURL,
		cal.WithRetryDelay(cfg.CAL.RetryDelay),
		cal.WithCooldown(cfg.CAL.Cooldown),
		cal.WithProbeDate(probeDate),
	)

	// Create services
	systemService := service.NewSystemService(db)
	fundService := service.NewFundService(fundRepo, calClient)
	catalogService := service.NewCatalogService(catalogRepo, calClient)
	analysisService := service.NewAnalysisService(fundRepo, analysis.DefaultEvents)

	// Daily top-up of cached funds
	if cfg.Scheduler.Enabled {
		scheduler := service.NewScheduler(fundService, cfg.Scheduler.StrideDays)
		if err := scheduler.Register(cfg.Scheduler.CronExpr); err != nil {
			log.Fatalf("Failed to register refresh schedule %q: %v", cfg.Scheduler.CronExpr, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(systemService, fundService, catalogService, analysisService, cfg)

	// Create HTTP server. Fetch batches pace their upstream calls and can
	// run for minutes, so the write timeout is generous.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
