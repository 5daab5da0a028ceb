package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/db"
	apperrors "github.com/pysugar/seas-portal/internal/errors"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/secrets"
	"github.com/pysugar/seas-portal/internal/web/middleware"
)

type validateRequest struct {
	ClientID  string `json:"client_id"`
	APISecret string `json:"api_secret"`
}

// ValidateHandler checks explicit credentials carried in the request
// body: 400 when either field is missing, 404 when no secret exists for
// the client, 401 on mismatch, 200 on match.
// POST /api/validate
func ValidateHandler(store *secrets.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		w.Header().Set("Content-Type", "application/json")

		var req validateRequest
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "malformed request body")
				return
			}
		} else {
			req.ClientID = r.FormValue("client_id")
			req.APISecret = r.FormValue("api_secret")
		}

		if req.ClientID == "" || req.APISecret == "" {
			writeError(w, http.StatusBadRequest, "client_id and api_secret are required")
			return
		}

		err := store.Validate(r.Context(), req.ClientID, req.APISecret)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			writeError(w, http.StatusNotFound, "no API secret for this client")
		case errors.Is(err, apperrors.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "invalid API secret")
		case err != nil:
			log.Error("secret validation failed", "client_id", req.ClientID, "error", err)
			writeError(w, http.StatusInternalServerError, "validation failed")
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"valid":     true,
				"client_id": req.ClientID,
			})
		}
	}
}

// BearerValidateHandler is the ownerless variant: the caller is already
// resolved by the bearer middleware and each call is recorded as usage.
// POST /api/whoami (bearer-protected)
func BearerValidateHandler(gdb *gorm.DB, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		clientID := middleware.ClientIDFromContext(r.Context())

		if err := db.RecordUsage(gdb, clientID, r.URL.Path, 1); err != nil {
			// Accounting is best effort; the call itself already validated.
			log.Error("usage recording failed", "client_id", clientID, "error", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"valid":     true,
			"client_id": clientID,
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}
