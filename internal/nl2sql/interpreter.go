package nl2sql

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/adsight/adsight/internal/observability"
	"github.com/adsight/adsight/internal/query"
)

const unableToRespond = "Unable to generate response"

// Interpreter asks the model to explain a query result. It never fails: a
// model error is returned as a readable message in place of the answer.
type Interpreter struct {
	client ChatClient
	logger *slog.Logger
}

func NewInterpreter(client ChatClient, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{client: client, logger: logger}
}

func (i *Interpreter) Interpret(ctx context.Context, question, sqlText string, result query.Result) string {
	if i.client == nil {
		return unableToRespond
	}
	start := time.Now()
	reply, err := i.client.Complete(ctx, BuildInterpretationPrompt(question, sqlText, result))
	observability.ObserveLLMCall("interpret", time.Since(start), err)
	if err != nil {
		i.logger.ErrorContext(ctx, "interpretation_failed", slog.Any("error", err))
		return "Error interpreting results: " + err.Error()
	}
	if strings.TrimSpace(reply) == "" {
		return unableToRespond
	}
	return reply
}
