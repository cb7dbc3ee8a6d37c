package auth

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator verifies a credential carried by a request.
type Authenticator interface {
	// Name returns the authenticator's name for logging and errors.
	Name() string

	// Supports reports whether this authenticator recognizes a
	// credential on the request. It does not validate the credential.
	Supports(r *Request) bool

	// Authenticate verifies the credential and returns the identity.
	Authenticate(ctx context.Context, r *Request) (*Identity, error)
}

// Request carries the credential material extracted from an HTTP request.
type Request struct {
	// BearerToken is the token from the Authorization header, without
	// the "Bearer " prefix. Empty when no bearer credential was sent.
	BearerToken string

	// APIKey is the value of the X-API-Key header, when present.
	APIKey string
}

// HeaderAPIKey is the header carrying the static service key.
const HeaderAPIKey = "X-API-Key"

// FromHTTP extracts credential material from an HTTP request.
func FromHTTP(r *http.Request) *Request {
	req := &Request{APIKey: r.Header.Get(HeaderAPIKey)}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			req.BearerToken = strings.TrimSpace(token)
		}
	}
	return req
}

// HasCredential reports whether any credential is present.
func (r *Request) HasCredential() bool {
	return r.BearerToken != "" || r.APIKey != ""
}
