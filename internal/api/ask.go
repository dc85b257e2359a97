package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/adsight/adsight/internal/assistant"
	"github.com/adsight/adsight/internal/query"
)

var sampleQuestions = []string{
	"What is my total sales?",
	"Calculate the RoAS (Return on Ad Spend)",
	"Which product had the highest CPC (Cost Per Click)?",
	"How many products are eligible for advertising?",
	"What are the top 5 products by total sales?",
	"Which products have the best conversion rate?",
	"What is the average ad spend per product?",
	"Show me products with negative sales",
	"Which products are not eligible and why?",
}

type askRequest struct {
	Question *string `json:"question"`
}

type askResponse struct {
	assistant.Answer
	Status string `json:"status"`
}

func (h *handlers) ask(w http.ResponseWriter, r *http.Request) {
	if h.deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "AI assistant is not configured")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == nil {
		writeError(r.Context(), w, http.StatusBadRequest, "Question is required")
		return
	}

	answer, err := h.deps.Assistant.Ask(r.Context(), *req.Question)
	if err != nil {
		h.writeAskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Status: "success"})
}

func (h *handlers) writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	var genErr *assistant.GenerationError
	var execErr *assistant.ExecutionError
	switch {
	case errors.Is(err, assistant.ErrQuestionRequired):
		writeError(r.Context(), w, http.StatusBadRequest, "Question cannot be empty")
	case errors.As(err, &genErr):
		writeError(r.Context(), w, http.StatusBadRequest, "Could not generate SQL query from the question")
	case errors.Is(err, query.ErrStatementNotAllowed):
		writeError(r.Context(), w, http.StatusBadRequest, "An error occurred while processing your question: "+err.Error())
	case errors.As(err, &execErr):
		writeError(r.Context(), w, http.StatusInternalServerError, "An error occurred while processing your question: "+err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "ask_failed", slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "An error occurred while processing your question: "+err.Error())
	}
}

func (h *handlers) sampleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sample_questions": sampleQuestions,
		"status":           "success",
	})
}
