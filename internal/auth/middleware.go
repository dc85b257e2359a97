package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adsight/adsight/internal/observability"
)

type contextKey string

const identityKey contextKey = "auth_identity"

const apiKeyHeader = "X-API-Key"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	ctx = observability.ContextWithPrincipal(ctx, identity.Principal)
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// credential is the key a request presented and where it came from.
type credential struct {
	key    string
	source string
}

// Middleware admits requests carrying a key the validator accepts, either in
// X-API-Key or as a bearer token.
func Middleware(logger *slog.Logger, validator APIKeyValidator) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, reason := readCredential(r)
			if reason != "" {
				reject(w, r, logger, reason, cred.source)
				return
			}

			identity, ok := validator.Validate(r.Context(), cred.key)
			if !ok {
				reject(w, r, logger, "invalid", cred.source)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// readCredential returns a non-empty reason when the request carries no
// usable key.
func readCredential(r *http.Request) (credential, string) {
	if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
		return credential{key: key, source: "header"}, ""
	}
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if authorization == "" {
		return credential{}, "missing"
	}
	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return credential{source: "authorization"}, "unsupported_scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return credential{source: "bearer"}, "missing"
	}
	return credential{key: token, source: "bearer"}, ""
}

var rejectMessages = map[string]string{
	"missing":            "missing API key",
	"invalid":            "invalid API key",
	"unsupported_scheme": "unsupported authorization scheme",
}

func reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason, source string) {
	observability.ObserveAuthFailure(reason)
	traceID := observability.TraceIDFromContext(r.Context())
	if reason != "missing" {
		logger.WarnContext(r.Context(), "authentication failed",
			slog.String("trace_id", traceID),
			slog.String("reason", reason),
			slog.String("source", source),
			slog.String("path", r.URL.Path),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="adsight"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":    rejectMessages[reason],
		"status":   "error",
		"trace_id": traceID,
	})
}
