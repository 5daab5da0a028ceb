package auth0

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/db"
	apperrors "github.com/pysugar/seas-portal/internal/errors"
	"github.com/pysugar/seas-portal/internal/logging"
)

// UserInfo is the subset of the provider's userinfo response the portal
// uses. Subject is the stable account identifier; access tokens rotate
// independently of it, so it is the only safe key for the secret store.
type UserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// HandleCallback processes the OAuth callback: verifies state, exchanges
// the authorization code, resolves the verified subject, upserts the
// client record and opens a web session.
func (p *Provider) HandleCallback(gdb *gorm.DB, sessions *session.Store, logger *slog.Logger, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context(), logger)

		if state := r.URL.Query().Get("state"); state != p.state {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No authorization code received", http.StatusBadRequest)
			return
		}

		token, err := p.config.Exchange(r.Context(), code)
		if err != nil {
			log.Error("token exchange failed", "error", err)
			http.Error(w, "Login failed, please try again", http.StatusBadGateway)
			return
		}

		info, err := p.fetchUserInfo(r.Context(), token.AccessToken)
		if err != nil {
			log.Error("userinfo fetch failed", "error", err)
			http.Error(w, "Login failed, please try again", http.StatusBadGateway)
			return
		}

		if _, err := db.EnsureClient(gdb, info.Subject, info.Email, info.Name); err != nil {
			log.Error("client upsert failed", "error", err)
			http.Error(w, "Login failed, please try again", http.StatusInternalServerError)
			return
		}

		sess := sessions.Create(token.AccessToken, info.Subject, info.Email, info.Name)
		session.WriteCookie(w, sess.ID, secureCookies)

		log.Info("login", "client_id", info.Subject)
		http.Redirect(w, r, "/usage", http.StatusFound)
	}
}

// fetchUserInfo calls the provider's userinfo endpoint with the fresh
// access token and requires a non-empty subject claim.
func (p *Provider) fetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d: %w", resp.StatusCode, apperrors.ErrUpstream)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}
	return &info, nil
}
