package nl2sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adsight/adsight/internal/observability"
)

// Generator produces SQL for a question with one model call.
type Generator struct {
	client  ChatClient
	dialect string
	logger  *slog.Logger
}

func NewGenerator(client ChatClient, dialect string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, dialect: dialect, logger: logger}
}

func (g *Generator) Translate(ctx context.Context, question string) (Result, error) {
	if g.client == nil {
		return Result{}, fmt.Errorf("chat client is required")
	}
	start := time.Now()
	reply, err := g.client.Complete(ctx, BuildGenerationPrompt(g.dialect, question))
	observability.ObserveLLMCall("generate_sql", time.Since(start), err)
	if err != nil {
		g.logger.ErrorContext(ctx, "sql_generation_failed", slog.Any("error", err))
		return Result{}, fmt.Errorf("generate sql: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		g.logger.ErrorContext(ctx, "sql_generation_empty_reply")
		return Result{}, ErrEmptySQL
	}

	sqlText := ExtractSQL(reply)
	if strings.TrimSpace(strings.TrimSuffix(sqlText, ";")) == "" {
		return Result{}, ErrEmptySQL
	}
	g.logger.InfoContext(ctx, "sql_generated", slog.String("sql", sqlText))
	return Result{
		SQL:      sqlText,
		Provider: "openai-compatible",
		Model:    g.client.Model(),
	}, nil
}
