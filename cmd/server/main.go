package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homescan/live-gateway/internal/api"
	"github.com/homescan/live-gateway/internal/config"
	"github.com/homescan/live-gateway/internal/gateway"
	"github.com/homescan/live-gateway/internal/inventory"
	"github.com/homescan/live-gateway/internal/live"
	"github.com/homescan/live-gateway/internal/observability"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	wsEndpoint := "ws://localhost:" + cfg.Port + "/ws"
	if cfg.GatewayURL != "" {
		wsEndpoint = strings.Replace(cfg.GatewayURL, "http", "ws", 1) + "/ws"
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("model", cfg.GeminiModel).
		Str("voice", cfg.GeminiVoice).
		Int("input_sample_rate", cfg.InputSampleRate).
		Int("output_sample_rate", cfg.OutputSampleRate).
		Str("ws_endpoint", wsEndpoint).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Live Gateway Service starting")

	// The dialer validates credentials up front; sessions share it.
	dialer, err := live.NewGeminiDialer(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	// One appliance catalog per process, shared by all sessions and the
	// inventory endpoint.
	store := inventory.NewStore()

	// Setup router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	// Client WebSocket endpoint
	r.Get("/ws", gateway.Handler(cfg, store, dialer))

	// Health check endpoint
	r.Get("/health", observability.HealthCheckHandler())

	// Readiness endpoint - check functions are created here to avoid
	// import cycles
	geminiCheck := func(ctx context.Context) (bool, error) {
		// The client was created at startup; a nil dialer means the
		// credentials never validated. No API call, to avoid costs.
		if dialer == nil {
			return false, fmt.Errorf("gemini client not initialized")
		}
		return true, nil
	}
	r.Get("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"gemini": geminiCheck,
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// REST surface: service index and inventory snapshot
	api.NewHandler(store).RegisterRoutes(r)

	// Create HTTP server with timeouts. WebSocket connections are hijacked
	// on upgrade, so these only bound the plain HTTP endpoints.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("ws://localhost:%s/ws", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
