package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/billing"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/plans"
)

type checkoutRequest struct {
	Plan string `json:"plan"`
}

// CheckoutHandler creates a payment session for the selected plan and
// returns its ID for the browser-side redirect to the processor.
// POST /checkout (session-gated)
func CheckoutHandler(checkout billing.CheckoutCreator, catalog *plans.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		var req checkoutRequest
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "malformed request body")
				return
			}
		} else {
			req.Plan = r.FormValue("plan")
		}

		plan, ok := catalog.Lookup(req.Plan)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown plan")
			return
		}

		sessionID, err := checkout.CreateCheckoutSession(r.Context(), sess.ClientID, plan)
		if err != nil {
			log.Error("checkout session creation failed", "client_id", sess.ClientID, "plan", plan.ID, "error", err)
			writeError(w, http.StatusBadGateway, "error creating checkout session")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"sessionId": sessionID})
	}
}
