package auth0

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/auth/session"
	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/db/models"
)

// newFakeIdP stands in for the identity provider tenant: it answers the
// token and userinfo endpoints.
func newFakeIdP(t *testing.T, info UserInfo) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "idp-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer idp-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestDeps(t *testing.T) (*gorm.DB, *session.Store) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Client{}, &models.UsageLog{}))

	sessions := session.NewStore(time.Hour)
	t.Cleanup(sessions.Stop)

	return gdb, sessions
}

func TestHandleCallback_Success(t *testing.T) {
	idp := newFakeIdP(t, UserInfo{Subject: "auth0|abc123", Email: "a@example.com", Name: "Ada"})
	provider := NewWithBaseURL(idp.URL, "cid", "csecret", "http://localhost/callback")
	gdb, sessions := newTestDeps(t)

	handler := provider.HandleCallback(gdb, sessions, slog.Default(), false)

	req := httptest.NewRequest("GET", "/callback?state="+provider.State()+"&code=authcode", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/usage", rec.Header().Get("Location"))

	// A client row now exists, keyed by the verified subject.
	client, err := db.GetClient(gdb, "auth0|abc123")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", client.Email)

	// The cookie references a live session carrying the subject.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	sess := sessions.Get(cookies[0].Value)
	require.NotNil(t, sess)
	assert.Equal(t, "auth0|abc123", sess.ClientID)
	assert.Equal(t, "idp-access-token", sess.AccessToken)
}

func TestHandleCallback_BadState(t *testing.T) {
	idp := newFakeIdP(t, UserInfo{Subject: "auth0|abc123"})
	provider := NewWithBaseURL(idp.URL, "cid", "csecret", "http://localhost/callback")
	gdb, sessions := newTestDeps(t)

	handler := provider.HandleCallback(gdb, sessions, slog.Default(), false)

	req := httptest.NewRequest("GET", "/callback?state=forged&code=authcode", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCallback_MissingCode(t *testing.T) {
	idp := newFakeIdP(t, UserInfo{Subject: "auth0|abc123"})
	provider := NewWithBaseURL(idp.URL, "cid", "csecret", "http://localhost/callback")
	gdb, sessions := newTestDeps(t)

	handler := provider.HandleCallback(gdb, sessions, slog.Default(), false)

	req := httptest.NewRequest("GET", "/callback?state="+provider.State(), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCallback_MissingSubject(t *testing.T) {
	idp := newFakeIdP(t, UserInfo{Email: "nosub@example.com"})
	provider := NewWithBaseURL(idp.URL, "cid", "csecret", "http://localhost/callback")
	gdb, sessions := newTestDeps(t)

	handler := provider.HandleCallback(gdb, sessions, slog.Default(), false)

	req := httptest.NewRequest("GET", "/callback?state="+provider.State()+"&code=authcode", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	// An identity without a stable subject cannot key the secret store.
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleLogin_RedirectsToProvider(t *testing.T) {
	provider := NewWithBaseURL("https://tenant.example", "cid", "csecret", "http://localhost/callback")

	req := httptest.NewRequest("GET", "/login", nil)
	rec := httptest.NewRecorder()
	provider.HandleLogin()(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "https://tenant.example/authorize")
	assert.Contains(t, loc, "state="+provider.State())
	assert.Contains(t, loc, "client_id=cid")
}

func TestHandleLogout(t *testing.T) {
	provider := NewWithBaseURL("https://tenant.example", "cid", "csecret", "http://localhost/callback")
	_, sessions := newTestDeps(t)

	sess := sessions.Create("tok", "client", "", "")

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sess.ID})
	rec := httptest.NewRecorder()
	provider.HandleLogout(sessions, "http://localhost", false)(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/v2/logout")
	assert.Contains(t, rec.Header().Get("Location"), "returnTo=http%3A%2F%2Flocalhost")

	// Session is gone and the cookie is cleared.
	assert.Nil(t, sessions.Get(sess.ID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
