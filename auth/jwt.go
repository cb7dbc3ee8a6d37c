package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyProvider resolves the verification key for a token.
type KeyProvider interface {
	// Key returns the verification key for the given key ID. An empty
	// kid asks for the default key.
	Key(ctx context.Context, kid string) (any, error)
}

// StaticKeyProvider returns a fixed HMAC secret regardless of kid.
type StaticKeyProvider struct {
	secret []byte
}

// NewStaticKeyProvider creates a provider for a shared HMAC secret.
func NewStaticKeyProvider(secret string) *StaticKeyProvider {
	return &StaticKeyProvider{secret: []byte(secret)}
}

// Key returns the configured secret.
func (p *StaticKeyProvider) Key(context.Context, string) (any, error) {
	if len(p.secret) == 0 {
		return nil, ErrKeyNotFound
	}
	return p.secret, nil
}

// JWTAuthenticator validates bearer tokens as signed JWTs.
type JWTAuthenticator struct {
	keys     KeyProvider
	issuer   string
	audience string
	leeway   time.Duration
}

// JWTOption configures a JWTAuthenticator.
type JWTOption func(*JWTAuthenticator)

// WithIssuer requires the token's iss claim to match.
func WithIssuer(iss string) JWTOption {
	return func(a *JWTAuthenticator) { a.issuer = iss }
}

// WithAudience requires the token's aud claim to contain the value.
func WithAudience(aud string) JWTOption {
	return func(a *JWTAuthenticator) { a.audience = aud }
}

// WithLeeway allows clock skew when checking time claims.
func WithLeeway(d time.Duration) JWTOption {
	return func(a *JWTAuthenticator) { a.leeway = d }
}

// NewJWTAuthenticator creates a JWT authenticator backed by keys.
func NewJWTAuthenticator(keys KeyProvider, opts ...JWTOption) *JWTAuthenticator {
	a := &JWTAuthenticator{keys: keys, leeway: 30 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string { return "jwt" }

// Supports reports whether the request carries a bearer token.
func (a *JWTAuthenticator) Supports(r *Request) bool {
	return r.BearerToken != ""
}

// Authenticate parses and verifies the bearer token.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, r *Request) (*Identity, error) {
	if r.BearerToken == "" {
		return nil, ErrNoCredential
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(a.leeway),
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
	}
	if a.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.Parse(r.BearerToken, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return a.keys.Key(ctx, kid)
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrTokenMalformed
	}

	id := &Identity{
		Principal: sub,
		Method:    MethodToken,
		Claims:    map[string]any(claims),
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}
