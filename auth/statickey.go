package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
)

// StaticKeyAuthenticator validates the single configured service key.
// Comparison is constant-time over SHA-256 digests so key length is
// not observable either.
type StaticKeyAuthenticator struct {
	digest [sha256.Size]byte
	set    bool
}

// NewStaticKeyAuthenticator creates an authenticator for the given key.
// An empty key yields an authenticator that rejects everything.
func NewStaticKeyAuthenticator(key string) *StaticKeyAuthenticator {
	a := &StaticKeyAuthenticator{}
	if key != "" {
		a.digest = sha256.Sum256([]byte(key))
		a.set = true
	}
	return a
}

// Name returns "static-key".
func (a *StaticKeyAuthenticator) Name() string { return "static-key" }

// Supports reports whether the request carries an API key.
func (a *StaticKeyAuthenticator) Supports(r *Request) bool {
	return r.APIKey != ""
}

// Authenticate compares the presented key against the configured one.
func (a *StaticKeyAuthenticator) Authenticate(_ context.Context, r *Request) (*Identity, error) {
	if r.APIKey == "" {
		return nil, ErrNoCredential
	}
	if !a.set {
		return nil, ErrInvalidKey
	}
	presented := sha256.Sum256([]byte(r.APIKey))
	if subtle.ConstantTimeCompare(presented[:], a.digest[:]) != 1 {
		return nil, ErrInvalidKey
	}
	return SystemIdentity(), nil
}
