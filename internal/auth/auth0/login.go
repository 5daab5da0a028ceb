package auth0

import "net/http"

// HandleLogin redirects the browser to the provider's consent page.
func (p *Provider) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, p.AuthCodeURL(), http.StatusTemporaryRedirect)
	}
}
