package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FACorreiaa/go-place-lookup/app/geocache"
	appLogger "github.com/FACorreiaa/go-place-lookup/app/logger"
	"github.com/FACorreiaa/go-place-lookup/app/observability/metrics"
	"github.com/FACorreiaa/go-place-lookup/app/tracer"
	"github.com/FACorreiaa/go-place-lookup/internal/api/azure"
	"github.com/FACorreiaa/go-place-lookup/internal/api/foursquare"
	"github.com/FACorreiaa/go-place-lookup/internal/api/name"
	"github.com/FACorreiaa/go-place-lookup/internal/api/opencage"
	"github.com/FACorreiaa/go-place-lookup/internal/api/overpass"
	api "github.com/FACorreiaa/go-place-lookup/internal/router"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger) // Set globally after initialization

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Cache Store Setup ---
	rdb, err := geocache.NewRedisClient(&cfg)
	if err != nil {
		logger.Error("Failed to initialize redis client", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()

	if !geocache.WaitForStore(ctx, rdb, logger) {
		logger.Error("Cache store not ready after waiting, exiting.")
		os.Exit(1)
	}
	store := geocache.NewRedisStore(rdb, logger)

	// --- Dependency Injection ---
	resolvers := []*name.Resolver{
		name.NewResolver(overpass.NewAdapter(cfg.Providers.Overpass, logger), store, logger),
		name.NewResolver(azure.NewAdapter(cfg.Providers.Azure, logger), store, logger),
		name.NewResolver(foursquare.NewAdapter(cfg.Providers.Foursquare, logger), store, logger),
		name.NewResolver(opencage.NewAdapter(cfg.Providers.OpenCage, logger), store, logger),
	}
	orchestrator := name.NewOrchestrator(resolvers, store, logger)
	placenames := name.NewPlacenameCache(store, logger)
	nameService := name.NewServiceImpl(orchestrator, placenames, cfg.Resolution.RequestTimeout, logger)
	nameHandler := name.NewHandler(nameService, cfg.Resolution.DefaultDistanceMeters, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		NameHandler: nameHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux() // Use NewMux for Chi v5
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger)) // Use your slog middleware
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json")) // Compress JSON responses
	router.Mount("/", mainRouter)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "Root endpoint hit")
		w.Write([]byte("go-place-lookup API"))
	})

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router, // Use your Chi router
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError), // Pipe server errors to slog
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel() // Trigger shutdown if server fails unexpectedly
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done() // Block until context is cancelled (Ctrl+C, SIGTERM)

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)") // Use standard log before slog default is set
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false, // Don't add source in prod unless needed for specific errors
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
