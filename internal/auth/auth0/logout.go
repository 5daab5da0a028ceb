package auth0

import (
	"net/http"

	"github.com/pysugar/seas-portal/internal/auth/session"
)

// HandleLogout destroys the web session and sends the browser to the
// provider's logout endpoint, which returns it to the landing page.
func (p *Provider) HandleLogout(sessions *session.Store, returnTo string, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := session.ReadCookie(r); ok {
			sessions.Destroy(id)
		}
		session.ClearCookie(w, secureCookies)

		http.Redirect(w, r, p.LogoutURL(returnTo), http.StatusFound)
	}
}
