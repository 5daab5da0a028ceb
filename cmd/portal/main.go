package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pysugar/seas-portal/internal/auth/auth0"
	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/billing"
	"github.com/pysugar/seas-portal/internal/config"
	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/kv"
	"github.com/pysugar/seas-portal/internal/logging"
	"github.com/pysugar/seas-portal/internal/plans"
	"github.com/pysugar/seas-portal/internal/secrets"
	"github.com/pysugar/seas-portal/internal/usage"
	"github.com/pysugar/seas-portal/internal/version"
	"github.com/pysugar/seas-portal/internal/web/handlers"
	"github.com/pysugar/seas-portal/internal/web/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.Environment)

	// Relational storage for clients and usage logs
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Durable key-value backend for API secrets and rate counters
	backend, err := kv.OpenBolt(cfg.KVPath)
	if err != nil {
		log.Fatalf("Failed to open key-value store: %v", err)
	}
	defer backend.Close()

	catalog, err := plans.Load(cfg.PlansFile)
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}
	if err := db.SyncPlans(database, catalog); err != nil {
		log.Fatalf("Failed to sync plan catalog: %v", err)
	}

	secretStore := secrets.NewStore(backend)
	limiter := usage.NewLimiter(backend)

	sessions := session.NewStore(cfg.SessionTTL)
	defer sessions.Stop()

	provider := auth0.New(cfg.Auth0Domain, cfg.Auth0ClientID, cfg.Auth0ClientSecret, cfg.BaseURL+"/callback")
	checkout := billing.NewStripe(cfg.StripeSecretKey, cfg.BaseURL)

	secureCookies := cfg.IsProduction()

	// Create router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.RequestID)

	// ============================================
	// Public Routes
	// ============================================

	r.Get("/", handlers.LandingHandler())
	r.Get("/store", handlers.StoreHandler(catalog, cfg.StripePublishableKey))
	r.Get("/checkout-success", handlers.CheckoutSuccessHandler())

	// OAuth flow
	r.Get("/login", provider.HandleLogin())
	r.Get("/callback", provider.HandleCallback(database, sessions, logger, secureCookies))
	r.Get("/logout", provider.HandleLogout(sessions, cfg.BaseURL, secureCookies))

	// Payment processor webhook (signature-verified, no session)
	r.Post("/stripe/webhook", billing.WebhookHandler(database, cfg.StripeWebhookSecret, logger))

	// ============================================
	// Session-Gated Routes
	// ============================================

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))
		r.Get("/usage", handlers.UsagePageHandler(database, catalog, secretStore, logger))
		r.Get("/profile", handlers.ProfileHandler(database, catalog, logger))
		r.Get("/settings", handlers.SettingsHandler(database, catalog, logger))
		r.Post("/secret/rotate", handlers.RotateSecretHandler(secretStore, logger))
		r.Post("/checkout", handlers.CheckoutHandler(checkout, catalog, logger))
		r.Post("/api/secret/regenerate", handlers.RegenerateSecretAPIHandler(secretStore, logger))
	})

	// ============================================
	// Machine Routes (API Secret Required)
	// ============================================

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", handlers.ValidateHandler(secretStore, logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(secretStore))
			r.Use(middleware.RateLimit(database, catalog, limiter, logger))
			r.Post("/whoami", handlers.BearerValidateHandler(database, logger))
		})
	})

	r.NotFound(handlers.NotFoundHandler())

	logger.Info("SEAS portal starting",
		"addr", cfg.ListenAddr(),
		"base_url", cfg.BaseURL,
		"version", version.String(),
	)

	if err := http.ListenAndServe(cfg.ListenAddr(), r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
