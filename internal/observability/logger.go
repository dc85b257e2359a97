package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/adsight/adsight/internal/config"
)

type ctxKey string

const (
	traceIDKey       ctxKey = "trace_id"
	principalKey     ctxKey = "principal"
	principalSlotKey ctxKey = "principal_slot"
)

func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

// ContextWithPrincipal records the authenticated caller. It also fills the
// slot installed by LoggingMiddleware so the request log sees the caller.
func ContextWithPrincipal(ctx context.Context, principal string) context.Context {
	if slot, ok := ctx.Value(principalSlotKey).(*string); ok {
		*slot = principal
	}
	return context.WithValue(ctx, principalKey, principal)
}

func PrincipalFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(principalKey).(string); ok {
		return value
	}
	if slot, ok := ctx.Value(principalSlotKey).(*string); ok {
		return *slot
	}
	return ""
}

func withPrincipalSlot(ctx context.Context) context.Context {
	var principal string
	return context.WithValue(ctx, principalSlotKey, &principal)
}
