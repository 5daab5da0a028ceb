// Package session implements the server-side web session store and its
// cookie plumbing. All state is in-memory; sessions are invalidated on
// restart, which only forces a re-login.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/pysugar/seas-portal/internal/errors"
)

// Session is the ephemeral per-login state referenced by the cookie.
type Session struct {
	ID          string
	AccessToken string // opaque identity-provider token
	ClientID    string // stable subject identifier from the provider
	Email       string
	Name        string
	ExpiresAt   time.Time
}

// cleanupInterval controls how often expired sessions are reaped.
const cleanupInterval = 5 * time.Minute

// Store holds all active web sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stopGC   chan struct{}
}

// NewStore creates an empty session store and starts a background
// goroutine that periodically removes expired sessions.
// Call Stop() to clean up the goroutine.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopGC:   make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

// Stop terminates the background cleanup goroutine.
func (s *Store) Stop() {
	close(s.stopGC)
}

func (s *Store) gcLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopGC:
			return
		}
	}
}

func (s *Store) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Create stores a new session for an authenticated subject and returns it.
func (s *Store) Create(accessToken, clientID, email, name string) *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		ClientID:    clientID,
		Email:       email,
		Name:        name,
		ExpiresAt:   time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session for id, or nil when absent or expired.
// A session missing either its access token or client ID is treated as
// invalid, matching the web flows' redirect-to-login behavior.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil
	}
	if sess.AccessToken == "" || sess.ClientID == "" {
		return nil
	}
	return sess
}

// Destroy removes a session. Destroying an unknown ID is a no-op.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns ctx carrying the session.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext retrieves the session placed in ctx by the session gate
// middleware, or nil.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey).(*Session); ok {
		return sess
	}
	return nil
}

// FromRequest resolves the request's cookie to an active session, or nil.
func (s *Store) FromRequest(r *http.Request) *Session {
	id, ok := ReadCookie(r)
	if !ok {
		return nil
	}
	return s.Get(id)
}

// Authenticate resolves the request's session, or reports
// ErrUnauthenticated so the web layer can redirect to login.
func (s *Store) Authenticate(r *http.Request) (*Session, error) {
	sess := s.FromRequest(r)
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return sess, nil
}
