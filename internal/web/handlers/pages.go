// Package handlers implements the portal's browser pages and machine
// endpoints. Pages are small inline HTML documents; anything stateful is
// delegated to the injected stores.
package handlers

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/plans"
	"github.com/pysugar/seas-portal/internal/secrets"
	"github.com/pysugar/seas-portal/internal/usage"
)

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s · SEAS</title>
<style>
body { max-width: 760px; margin: auto; padding: 2em; font-family: sans-serif; line-height: 1.6; }
nav a { margin-right: 1em; }
code { background: #f4f4f4; padding: 0.2em 0.4em; }
.error { color: #b91c1c; }
button { padding: 0.4em 1em; }
</style>
</head>
<body>
<nav><a href="/">Home</a><a href="/usage">Usage</a><a href="/profile">Profile</a><a href="/settings">Settings</a><a href="/store">Store</a><a href="/logout">Logout</a></nav>
%s
</body>
</html>`

func writePage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, pageShell, html.EscapeString(title), body)
}

// LandingHandler renders the public landing page.
// GET /
func LandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := `<h1>Welcome to SEAS</h1>
<p>Your gateway to seamless API and cloud management.</p>
<p><a href="/login"><button>Login</button></a></p>`
		writePage(w, http.StatusOK, "Welcome", body)
	}
}

// UsagePageHandler renders the subscription/usage page. Visiting it
// lazily issues the account's API secret when none exists yet.
// GET /usage (session-gated)
func UsagePageHandler(gdb *gorm.DB, catalog *plans.Catalog, store *secrets.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		secret, err := store.GetOrCreate(r.Context(), sess.ClientID)
		if err != nil {
			log.Error("secret issuance failed", "client_id", sess.ClientID, "error", err)
			writePage(w, http.StatusInternalServerError, "Usage", `<p class="error">Error fetching plan details</p>`)
			return
		}

		summary, err := buildSummary(gdb, catalog, sess.ClientID)
		if err != nil {
			log.Error("usage summary failed", "client_id", sess.ClientID, "error", err)
			writePage(w, http.StatusInternalServerError, "Usage", `<p class="error">Error fetching plan details</p>`)
			return
		}

		body := fmt.Sprintf(`<h1>Usage</h1>
<p>Plan: <strong>%s</strong></p>
<p>API calls this month: %d of %d</p>
<p>Your API secret: <code>%s</code></p>
<form method="POST" action="/secret/rotate"><button type="submit">Regenerate secret</button></form>`,
			html.EscapeString(summary.PlanName), summary.CurrentCalls, summary.CallLimit, html.EscapeString(secret))
		writePage(w, http.StatusOK, "Usage", body)
	}
}

// ProfileHandler renders the account profile page.
// GET /profile (session-gated)
func ProfileHandler(gdb *gorm.DB, catalog *plans.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		summary, err := buildSummary(gdb, catalog, sess.ClientID)
		if err != nil {
			log.Error("usage summary failed", "client_id", sess.ClientID, "error", err)
			writePage(w, http.StatusInternalServerError, "Profile", `<p class="error">Error fetching plan details</p>`)
			return
		}

		body := fmt.Sprintf(`<h1>Profile</h1>
<p>Email: %s</p>
<p>Plan: <strong>%s</strong></p>
<p>API calls this month: %d of %d</p>`,
			html.EscapeString(sess.Email), html.EscapeString(summary.PlanName), summary.CurrentCalls, summary.CallLimit)
		writePage(w, http.StatusOK, "Profile", body)
	}
}

// SettingsHandler renders the settings page with the secret controls.
// GET /settings (session-gated)
func SettingsHandler(gdb *gorm.DB, catalog *plans.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)
		sess := session.FromContext(r.Context())

		summary, err := buildSummary(gdb, catalog, sess.ClientID)
		if err != nil {
			log.Error("usage summary failed", "client_id", sess.ClientID, "error", err)
			writePage(w, http.StatusInternalServerError, "Settings", `<p class="error">Error fetching plan details</p>`)
			return
		}

		body := fmt.Sprintf(`<h1>Settings</h1>
<p>Email: %s</p>
<p>Plan: <strong>%s</strong></p>
<form method="POST" action="/secret/rotate"><button type="submit">Regenerate API secret</button></form>`,
			html.EscapeString(sess.Email), html.EscapeString(summary.PlanName))
		writePage(w, http.StatusOK, "Settings", body)
	}
}

// StoreHandler renders the plan store page.
// GET /store
func StoreHandler(catalog *plans.Catalog, publishableKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := `<h1>Store</h1><ul>`
		for _, p := range catalog.List() {
			body += fmt.Sprintf(`<li>%s — $%d.%02d <form method="POST" action="/checkout" style="display:inline"><input type="hidden" name="plan" value="%s"><button type="submit">Buy</button></form></li>`,
				html.EscapeString(p.Name), p.AmountCents/100, p.AmountCents%100, html.EscapeString(p.ID))
		}
		body += `</ul>`
		if publishableKey != "" {
			body += fmt.Sprintf(`<script>window.STRIPE_PUBLISHABLE_KEY = %q;</script>`, publishableKey)
		}
		writePage(w, http.StatusOK, "Store", body)
	}
}

// CheckoutSuccessHandler renders the post-payment confirmation page.
// GET /checkout-success
func CheckoutSuccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusOK, "Thank you",
			`<h1>Payment received</h1><p>Your plan will be active shortly. <a href="/usage">Back to usage</a></p>`)
	}
}

// NotFoundHandler renders the generic 404 page for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusNotFound, "Not Found",
			`<h1>Page not found</h1><p><a href="/">Back home</a></p>`)
	}
}

// buildSummary loads the client row and resolves its usage summary.
func buildSummary(gdb *gorm.DB, catalog *plans.Catalog, clientID string) (usage.Summary, error) {
	client, err := db.GetClient(gdb, clientID)
	if err != nil {
		return usage.Summary{}, err
	}
	return usage.BuildSummary(gdb, catalog, client)
}
