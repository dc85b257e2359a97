package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adsight/adsight/internal/history"
)

func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "history is not configured")
		return
	}
	limit, err := parseLimit(r, history.DefaultListLimit, history.MaxListLimit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.deps.History.List(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history_list_failed", slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error retrieving query history: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": records,
		"count":   len(records),
		"status":  "success",
	})
}

func (h *handlers) getHistory(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "history is not configured")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "history id must be an integer")
		return
	}

	record, err := h.deps.History.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "Query not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history_get_failed", slog.Int64("id", id), slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error retrieving query: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":  record,
		"status": "success",
	})
}
