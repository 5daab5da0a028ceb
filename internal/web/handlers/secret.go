package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/secrets"
)

// RotateSecretHandler replaces the account's API secret and sends the
// browser back to the usage page, which displays the new value. The old
// secret stops validating immediately.
// POST /secret/rotate (session-gated)
func RotateSecretHandler(store *secrets.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		if _, err := store.Rotate(r.Context(), sess.ClientID); err != nil {
			log.Error("secret rotation failed", "client_id", sess.ClientID, "error", err)
			writePage(w, http.StatusInternalServerError, "Settings", `<p class="error">Could not regenerate secret</p>`)
			return
		}

		log.Info("secret rotated", "client_id", sess.ClientID)
		http.Redirect(w, r, "/usage", http.StatusFound)
	}
}

// RegenerateSecretAPIHandler is the API-style rotation: it returns the
// new secret in the response body instead of redirecting.
// POST /api/secret/regenerate (session-gated)
func RegenerateSecretAPIHandler(store *secrets.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		secret, err := store.Rotate(r.Context(), sess.ClientID)
		if err != nil {
			log.Error("secret rotation failed", "client_id", sess.ClientID, "error", err)
			http.Error(w, "could not regenerate secret", http.StatusInternalServerError)
			return
		}

		log.Info("secret rotated", "client_id", sess.ClientID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"api_secret": secret})
	}
}
