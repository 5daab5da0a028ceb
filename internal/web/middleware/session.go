// Package middleware holds the portal's HTTP middleware: the session
// gate for browser pages and the bearer validator for machine callers.
package middleware

import (
	"net/http"

	"github.com/pysugar/seas-portal/internal/auth/session"
)

// RequireSession gates browser pages behind an authenticated web
// session. Requests without one are redirected to the login flow rather
// than failing; the gated handler never runs, so no secret store access
// happens for anonymous visitors.
func RequireSession(sessions *session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Authenticate(r)
			if err != nil {
				// Only ErrUnauthenticated can arrive here; send the
				// visitor through the login flow rather than failing.
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}
