package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adsight/adsight/internal/analytics"
	"github.com/adsight/adsight/internal/assistant"
	"github.com/adsight/adsight/internal/charts"
	"github.com/adsight/adsight/internal/config"
	"github.com/adsight/adsight/internal/history"
	"github.com/adsight/adsight/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

type Asker interface {
	Ask(ctx context.Context, question string) (assistant.Answer, error)
}

type AnalyticsService interface {
	BusinessSummary(ctx context.Context) (analytics.BusinessSummary, error)
	ProductPerformance(ctx context.Context, limit int) ([]analytics.ProductPerformance, error)
	TimeAnalysis(ctx context.Context, days int) (analytics.TimeAnalysis, error)
	DatabaseStats(ctx context.Context) (analytics.DatabaseStats, error)
}

type ChartBuilder interface {
	Build(ctx context.Context, kind charts.Kind, limit int) (*charts.Figure, error)
}

type HistoryReader interface {
	List(ctx context.Context, limit int) ([]history.Record, error)
	Get(ctx context.Context, id int64) (history.Record, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DatabasePing      ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Assistant         Asker
	AIConfigured      bool
	Analytics         AnalyticsService
	Charts            ChartBuilder
	History           HistoryReader
	UI                http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	h := &handlers{cfg: cfg, deps: deps, logger: deps.Logger}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /ready", h.ready)
	mux.Handle("GET /metrics", promhttp.Handler())
	if deps.UI != nil {
		mux.Handle("GET /{$}", deps.UI)
		mux.Handle("GET /assets/{path...}", deps.UI)
	}

	protected := http.NewServeMux()
	protected.HandleFunc("POST /ask", h.ask)
	protected.HandleFunc("GET /sample-questions", h.sampleQuestions)
	protected.HandleFunc("GET /dashboard", h.dashboard)
	protected.HandleFunc("GET /analytics/products", h.productAnalytics)
	protected.HandleFunc("GET /stats", h.databaseStats)
	protected.HandleFunc("GET /visualizations/{chart_type}", h.visualization)
	protected.HandleFunc("GET /history", h.listHistory)
	protected.HandleFunc("GET /history/{id}", h.getHistory)

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			h.logger.Error("auth required but auth middleware missing")
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "auth middleware is required by configuration")
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /ask", protectedHandler)
	mux.Handle("GET /sample-questions", protectedHandler)
	mux.Handle("GET /dashboard", protectedHandler)
	mux.Handle("GET /analytics/products", protectedHandler)
	mux.Handle("GET /stats", protectedHandler)
	mux.Handle("GET /visualizations/{chart_type}", protectedHandler)
	mux.Handle("GET /history", protectedHandler)
	mux.Handle("GET /history/{id}", protectedHandler)

	return chain(mux,
		observability.RecoverMiddleware(h.logger),
		observability.TraceMiddleware,
		observability.LoggingMiddleware(h.logger),
		observability.MetricsMiddleware,
	)
}

type handlers struct {
	cfg    config.Config
	deps   Dependencies
	logger *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	aiAgent := "ready"
	if !h.deps.AIConfigured || h.deps.Assistant == nil {
		aiAgent = "not_configured"
	}

	database := "connected"
	status := http.StatusOK
	if h.deps.DatabasePing == nil {
		database = "not_configured"
		status = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), h.dependencyTimeout())
		defer cancel()
		if err := h.deps.DatabasePing(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "database_ping_failed", slog.Any("error", err))
			database = "disconnected"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]any{
		"status":   overall,
		"service":  h.cfg.Service.Name,
		"database": database,
		"ai_agent": aiAgent,
	})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.deps.Readiness == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.dependencyTimeout())
	defer cancel()
	if err := h.deps.Readiness(ctx); err != nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (h *handlers) dependencyTimeout() time.Duration {
	if h.deps.DependencyTimeout > 0 {
		return h.deps.DependencyTimeout
	}
	return 2 * time.Second
}

func CheckDatabase(ping func(ctx context.Context) error) ReadinessCheck {
	return func(ctx context.Context) error {
		if ping == nil {
			return errors.New("database is not configured")
		}
		if err := ping(ctx); err != nil {
			return errors.New("database is not reachable")
		}
		return nil
	}
}

func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.APIKey == "" {
			return errors.New("ai api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// parseLimit reads ?limit=N, applying fallback when absent and clamping to
// 1..max.
func parseLimit(r *http.Request, fallback, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if limit < 1 {
		return 1, nil
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":    message,
		"status":   "error",
		"trace_id": observability.TraceIDFromContext(ctx),
	})
}
