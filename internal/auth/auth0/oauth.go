// Package auth0 implements the web login flow against an Auth0-style
// identity provider. The authorization-code exchange itself is delegated
// to the provider's token endpoint via golang.org/x/oauth2.
package auth0

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"

	"golang.org/x/oauth2"
)

// Scopes requested from the identity provider. The profile and email
// scopes feed the client record; openid is required for the userinfo
// endpoint to return a stable subject.
var Scopes = []string{"openid", "profile", "email"}

// Provider holds the OAuth client for one identity-provider tenant.
type Provider struct {
	// BaseURL is the provider tenant root, e.g. https://example.auth0.com.
	// Tests point this at a local fake.
	BaseURL string

	config *oauth2.Config

	// state protects the callback against CSRF. One token per process,
	// regenerated on restart.
	state string
}

// New creates a provider client for the given tenant domain.
// redirectURL is this service's /callback endpoint.
func New(domain, clientID, clientSecret, redirectURL string) *Provider {
	return NewWithBaseURL("https://"+domain, clientID, clientSecret, redirectURL)
}

// NewWithBaseURL is New with an explicit tenant base URL.
func NewWithBaseURL(baseURL, clientID, clientSecret, redirectURL string) *Provider {
	b := make([]byte, 16)
	rand.Read(b)

	return &Provider{
		BaseURL: baseURL,
		state:   hex.EncodeToString(b),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  baseURL + "/authorize",
				TokenURL: baseURL + "/oauth/token",
			},
		},
	}
}

// AuthCodeURL returns the provider consent page URL carrying the CSRF
// state token.
func (p *Provider) AuthCodeURL() string {
	return p.config.AuthCodeURL(p.state)
}

// State returns the CSRF state token for callback validation.
func (p *Provider) State() string {
	return p.state
}

// LogoutURL returns the provider's session-termination URL, which sends
// the browser back to returnTo afterwards.
func (p *Provider) LogoutURL(returnTo string) string {
	return p.BaseURL + "/v2/logout?client_id=" + url.QueryEscape(p.config.ClientID) +
		"&returnTo=" + url.QueryEscape(returnTo)
}
