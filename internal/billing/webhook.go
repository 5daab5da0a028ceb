package billing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/logging"
)

// maxWebhookBody caps the webhook payload read.
const maxWebhookBody = 1 << 20

// WebhookHandler verifies the processor's signature and applies payment
// events. A completed checkout activates the purchased plan for the
// client referenced by the session.
func WebhookHandler(gdb *gorm.DB, endpointSecret string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), endpointSecret)
		if err != nil {
			log.Warn("webhook signature rejected", "error", err)
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		switch event.Type {
		case "checkout.session.completed":
			var sess stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
				http.Error(w, "malformed event payload", http.StatusBadRequest)
				return
			}
			applyCompletedCheckout(gdb, &sess, log)
		default:
			log.Debug("ignoring webhook event", "type", event.Type)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

// applyCompletedCheckout activates the purchased plan. Attribution
// failures are logged, not surfaced: a non-2xx response would make the
// processor retry an event we can never apply.
func applyCompletedCheckout(gdb *gorm.DB, sess *stripe.CheckoutSession, log *slog.Logger) {
	clientID := sess.ClientReferenceID
	planID := sess.Metadata["plan_id"]

	if clientID == "" || planID == "" {
		log.Warn("completed checkout without attribution", "session_id", sess.ID)
		return
	}

	if err := db.ActivatePlan(gdb, clientID, planID); err != nil {
		log.Error("plan activation failed", "client_id", clientID, "plan_id", planID, "error", err)
		return
	}

	log.Info("plan activated", "client_id", clientID, "plan_id", planID)
}
