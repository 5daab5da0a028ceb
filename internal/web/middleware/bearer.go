package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/plans"
	"github.com/pysugar/seas-portal/internal/secrets"
	"github.com/pysugar/seas-portal/internal/usage"
)

type contextKey string

const clientIDKey contextKey = "clientId"

// ClientIDFromContext returns the account identifier resolved by
// BearerAuth, or "".
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey).(string); ok {
		return id
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error": {"message": "` + message + `", "type": "authentication_error"}}`))
}

// BearerAuth validates machine callers using only the presented secret.
// No session or cookie context is consulted: every call resolves the
// owning account from the secret store. Missing header, malformed
// header and unknown secret all fail with 401.
func BearerAuth(store *secrets.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "Malformed Authorization header")
				return
			}

			secret := strings.TrimPrefix(authHeader, "Bearer ")
			clientID, err := store.FindOwner(r.Context(), secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid API secret")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit enforces the caller's per-minute plan ceiling. It runs after
// BearerAuth and reads the resolved account from the context.
func RateLimit(gdb *gorm.DB, catalog *plans.Catalog, limiter *usage.Limiter, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientIDFromContext(r.Context())
			if clientID == "" {
				writeJSONError(w, http.StatusUnauthorized, "Invalid API secret")
				return
			}

			planID := ""
			if client, err := db.GetClient(gdb, clientID); err == nil {
				planID = client.PlanID
			}

			ok, err := limiter.Allow(r.Context(), clientID, catalog.Get(planID).RateLimit)
			if err != nil {
				logging.FromContext(r.Context(), logger).Error("rate limiter failed", "client_id", clientID, "error", err)
				// Fail open: a broken counter should not take the API down.
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
