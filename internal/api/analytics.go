package api

import (
	"log/slog"
	"net/http"

	"github.com/adsight/adsight/internal/analytics"
	"github.com/adsight/adsight/internal/charts"
)

const maxLimit = 100

var dashboardCharts = []charts.Kind{
	charts.KindSalesTrend,
	charts.KindTopProducts,
	charts.KindROAS,
	charts.KindEligibility,
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	if h.deps.Analytics == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "analytics are not configured")
		return
	}
	ctx := r.Context()

	summary, err := h.deps.Analytics.BusinessSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard_summary_failed", slog.Any("error", err))
		writeError(ctx, w, http.StatusInternalServerError, "Error generating dashboard: "+err.Error())
		return
	}
	products, err := h.deps.Analytics.ProductPerformance(ctx, h.dashboardLimit())
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard_products_failed", slog.Any("error", err))
		writeError(ctx, w, http.StatusInternalServerError, "Error generating dashboard: "+err.Error())
		return
	}
	trends, err := h.deps.Analytics.TimeAnalysis(ctx, h.cfg.Analytics.TrendDays)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard_trends_failed", slog.Any("error", err))
		writeError(ctx, w, http.StatusInternalServerError, "Error generating dashboard: "+err.Error())
		return
	}

	visualizations := map[charts.Kind]*charts.Figure{}
	if h.deps.Charts != nil {
		for _, kind := range dashboardCharts {
			figure, err := h.deps.Charts.Build(ctx, kind, 0)
			if err != nil {
				h.logger.WarnContext(ctx, "dashboard_chart_failed", slog.String("chart_type", string(kind)), slog.Any("error", err))
				continue
			}
			if figure != nil {
				visualizations[kind] = figure
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":          summary,
		"product_analysis": products,
		"time_analysis":    trends,
		"visualizations":   visualizations,
		"status":           "success",
	})
}

func (h *handlers) dashboardLimit() int {
	if h.cfg.Analytics.DashboardLimit > 0 {
		return h.cfg.Analytics.DashboardLimit
	}
	return 10
}

func (h *handlers) productAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.deps.Analytics == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "analytics are not configured")
		return
	}
	fallback := h.cfg.Analytics.ProductLimit
	if fallback <= 0 {
		fallback = analytics.DefaultProductLimit
	}
	limit, err := parseLimit(r, fallback, maxLimit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.deps.Analytics.ProductPerformance(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "product_analytics_failed", slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error analyzing products: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
		"status":   "success",
	})
}

func (h *handlers) databaseStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.Analytics == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "analytics are not configured")
		return
	}
	stats, err := h.deps.Analytics.DatabaseStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "database_stats_failed", slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error reading database stats: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":  stats,
		"status": "success",
	})
}

func (h *handlers) visualization(w http.ResponseWriter, r *http.Request) {
	if h.deps.Charts == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "charts are not configured")
		return
	}
	kind, err := charts.ParseKind(r.PathValue("chart_type"))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r, 0, maxLimit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	figure, err := h.deps.Charts.Build(r.Context(), kind, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "chart_build_failed", slog.String("chart_type", string(kind)), slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error creating visualization: "+err.Error())
		return
	}
	if figure == nil {
		writeError(r.Context(), w, http.StatusNotFound, "No data available for chart type "+string(kind))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chart_type":    kind,
		"visualization": figure,
		"status":        "success",
	})
}
