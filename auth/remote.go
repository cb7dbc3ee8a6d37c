package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/n-chekan/ialla-api/supabase"
)

// UserVerifier verifies an access token with the identity service and
// returns the user it belongs to.
type UserVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// RemoteAuthenticator validates bearer tokens by asking the identity
// service who they belong to. Positive results are cached briefly by
// token digest so hot tokens do not hit the service on every request.
type RemoteAuthenticator struct {
	verifier UserVerifier
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[string]remoteEntry
}

type remoteEntry struct {
	identity *Identity
	expires  time.Time
}

// RemoteOption configures a RemoteAuthenticator.
type RemoteOption func(*RemoteAuthenticator)

// WithVerifyCacheTTL sets how long a positive verification is reused.
// Zero disables caching.
func WithVerifyCacheTTL(d time.Duration) RemoteOption {
	return func(a *RemoteAuthenticator) { a.ttl = d }
}

// NewRemoteAuthenticator creates an authenticator backed by verifier.
func NewRemoteAuthenticator(verifier UserVerifier, opts ...RemoteOption) *RemoteAuthenticator {
	a := &RemoteAuthenticator{
		verifier: verifier,
		ttl:      time.Minute,
		cache:    make(map[string]remoteEntry),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "remote".
func (a *RemoteAuthenticator) Name() string { return "remote" }

// Supports reports whether the request carries a bearer token.
func (a *RemoteAuthenticator) Supports(r *Request) bool {
	return r.BearerToken != ""
}

// Authenticate verifies the bearer token with the identity service.
func (a *RemoteAuthenticator) Authenticate(ctx context.Context, r *Request) (*Identity, error) {
	if r.BearerToken == "" {
		return nil, ErrNoCredential
	}

	digest := tokenDigest(r.BearerToken)
	if id, ok := a.cached(digest); ok {
		return id, nil
	}

	user, err := a.verifier.GetUser(ctx, r.BearerToken)
	if err != nil {
		if errors.Is(err, supabase.ErrUnauthorized) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	id := &Identity{
		Principal: user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Method:    MethodToken,
	}
	a.store(digest, id)
	return id, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (a *RemoteAuthenticator) cached(digest string) (*Identity, bool) {
	if a.ttl <= 0 {
		return nil, false
	}
	a.mu.RLock()
	entry, ok := a.cache[digest]
	a.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.identity, true
}

func (a *RemoteAuthenticator) store(digest string, id *Identity) {
	if a.ttl <= 0 {
		return
	}
	a.mu.Lock()
	// Occasional expired entries are swept on insert so the map does
	// not grow without bound.
	now := time.Now()
	for k, e := range a.cache {
		if now.After(e.expires) {
			delete(a.cache, k)
		}
	}
	a.cache[digest] = remoteEntry{identity: id, expires: now.Add(a.ttl)}
	a.mu.Unlock()
}
