// Package secrets manages the one-active-secret-per-account invariant
// over an injected key-value backend. Each account has at most one API
// secret; issuing a new one invalidates the old immediately.
package secrets

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	apperrors "github.com/pysugar/seas-portal/internal/errors"
	"github.com/pysugar/seas-portal/internal/kv"
)

const (
	// secretBytes is the raw entropy of a generated secret before
	// URL-safe encoding. 32 bytes matches the original deployment.
	secretBytes = 32

	secretKeyPrefix = "user:"
	secretKeySuffix = ":api_secret"

	// ownerKeyPrefix namespaces the reverse index mapping a secret's
	// SHA-256 digest back to its owning account.
	ownerKeyPrefix = "apisecret:owner:"
)

// Store issues, rotates and resolves per-account API secrets.
type Store struct {
	kv kv.Store
}

// NewStore creates a secret store over the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

func secretKey(clientID string) string {
	return secretKeyPrefix + clientID + secretKeySuffix
}

func ownerKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return ownerKeyPrefix + hex.EncodeToString(sum[:])
}

// clientIDFromKey extracts the account identifier from a forward-mapping
// key, or "" when the key does not follow the expected layout.
func clientIDFromKey(key string) string {
	if !strings.HasPrefix(key, secretKeyPrefix) || !strings.HasSuffix(key, secretKeySuffix) {
		return ""
	}
	return key[len(secretKeyPrefix) : len(key)-len(secretKeySuffix)]
}

// newSecret generates a URL-safe random secret with no padding.
func newSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GetOrCreate returns the account's active secret, generating and
// persisting one when none exists. Repeated calls return the identical
// secret until Rotate intervenes. Concurrent first-calls are resolved
// with a set-if-absent write, so every caller receives the winning value.
func (s *Store) GetOrCreate(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("get or create secret: %w", apperrors.ErrBadRequest)
	}

	key := secretKey(clientID)

	existing, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if found {
		return existing, nil
	}

	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	wrote, err := s.kv.SetNX(ctx, key, secret)
	if err != nil {
		return "", err
	}
	if !wrote {
		// Another caller created the secret first; return theirs.
		winner, _, err := s.kv.Get(ctx, key)
		if err != nil {
			return "", err
		}
		return winner, nil
	}

	if err := s.kv.Set(ctx, ownerKey(secret), clientID); err != nil {
		return "", err
	}

	return secret, nil
}

// Rotate unconditionally replaces the account's secret. The previous
// value stops validating immediately; there is no grace period.
func (s *Store) Rotate(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("rotate secret: %w", apperrors.ErrBadRequest)
	}

	key := secretKey(clientID)

	old, hadOld, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}

	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	if err := s.kv.Set(ctx, key, secret); err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, ownerKey(secret), clientID); err != nil {
		return "", err
	}
	if hadOld {
		if err := s.kv.Delete(ctx, ownerKey(old)); err != nil {
			return "", err
		}
	}

	return secret, nil
}

// FindOwner resolves the account owning a presented secret. Lookup is a
// single reverse-index read; records written before the index existed
// are found by a full pattern scan, which also repairs the index.
// Returns ErrUnauthorized when no account owns the secret.
func (s *Store) FindOwner(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("find owner: %w", apperrors.ErrUnauthorized)
	}

	clientID, found, err := s.kv.Get(ctx, ownerKey(secret))
	if err != nil {
		return "", err
	}
	if found {
		// The index can lag a rotation that crashed between writes;
		// confirm the forward mapping still agrees.
		current, ok, err := s.kv.Get(ctx, secretKey(clientID))
		if err != nil {
			return "", err
		}
		if ok && subtle.ConstantTimeCompare([]byte(current), []byte(secret)) == 1 {
			return clientID, nil
		}
	}

	return s.scanForOwner(ctx, secret)
}

// scanForOwner enumerates every stored secret and compares it against the
// presented value. On a hit the missing index entry is written so the
// next lookup is O(1).
func (s *Store) scanForOwner(ctx context.Context, secret string) (string, error) {
	keys, err := s.kv.Keys(ctx, secretKeyPrefix+"*"+secretKeySuffix)
	if err != nil {
		return "", err
	}

	for _, key := range keys {
		stored, found, err := s.kv.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if !found {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1 {
			clientID := clientIDFromKey(key)
			if clientID == "" {
				continue
			}
			if err := s.kv.Set(ctx, ownerKey(secret), clientID); err != nil {
				return "", err
			}
			return clientID, nil
		}
	}

	return "", fmt.Errorf("find owner: %w", apperrors.ErrUnauthorized)
}

// Validate checks a presented secret against the account's stored one in
// constant time. Returns ErrNotFound when the account has no secret and
// ErrUnauthorized on mismatch.
func (s *Store) Validate(ctx context.Context, clientID, secret string) error {
	stored, found, err := s.kv.Get(ctx, secretKey(clientID))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("validate secret for %s: %w", clientID, apperrors.ErrNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) != 1 {
		return fmt.Errorf("validate secret for %s: %w", clientID, apperrors.ErrUnauthorized)
	}
	return nil
}
