package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/crosscheck-ai/dissent/internal/analytics"
	mw "github.com/crosscheck-ai/dissent/internal/api/middleware"
	"github.com/crosscheck-ai/dissent/internal/buildconfig"
	"github.com/crosscheck-ai/dissent/internal/config"
	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/crosscheck-ai/dissent/internal/llm"
	"github.com/crosscheck-ai/dissent/internal/mcpserver"
	"github.com/crosscheck-ai/dissent/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the analytics sink for lifecycle management.
type App struct {
	Router    *chi.Mux
	Analytics *analytics.Client

	metrics   *mw.MetricsCollector
	startTime time.Time
}

func NewApp(logger *zap.Logger) (*App, error) {
	llmClient, err := llm.NewClient(llm.Config{
		Provider: config.LLMProvider(),
		APIKey:   config.OpenAIAPIKey(),
		Model:    config.OpenAIModel(),
		BaseURL:  config.OpenAIBaseURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("init generative client: %w", err)
	}
	logger.Info("generative client initialized",
		zap.String("provider", config.LLMProvider()),
		zap.String("model", config.OpenAIModel()),
	)

	discoverySvc := service.NewDiscoveryService(llmClient, logger)

	sink := analytics.NewClient(config.AnalyticsEndpoint(), config.AnalyticsAPIKey(), logger)
	if sink.Enabled() {
		logger.Info("analytics sink enabled", zap.String("endpoint", config.AnalyticsEndpoint()))
	} else {
		logger.Info("analytics sink disabled")
	}

	mcpSrv := mcpserver.New(discoverySvc, sink, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Analytics: sink,
		metrics:   mw.NewMetricsCollector(),
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(app.metrics.Middleware)                                       // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health
	r.Get("/health", healthHandler())

	// Metrics
	r.Get("/metrics", app.metricsHandler())

	// MCP transport: tools and the widget resource are served here
	r.Handle("/mcp", mcpSrv.Handler())

	return app, nil
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		build := buildconfig.Get()
		requests, errs, inFlight := app.metrics.Snapshot()

		response := map[string]any{
			"version":        build.Version,
			"commit":         build.Commit,
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  requests,
			"error_count":    errs,
			"in_flight":      inFlight,
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure clients satisfy interfaces at compile time.
var (
	_ domain.GenerativeClient = (*llm.OpenAIClient)(nil)
	_ domain.GenerativeClient = (*llm.MockClient)(nil)
)
