package auth

import "time"

// Method indicates how authentication was performed.
type Method string

const (
	MethodNone      Method = "none"
	MethodToken     Method = "token"
	MethodStaticKey Method = "static-key"
)

// SystemPrincipal is the identity behind a valid static service key.
const SystemPrincipal = "system"

// Identity represents an authenticated principal.
type Identity struct {
	// Principal is the unique identifier (user ID, or "system").
	Principal string

	// Email is the principal's email when known.
	Email string

	// Role is the profile role when known (e.g. "admin").
	Role string

	// Method indicates how authentication was performed.
	Method Method

	// Claims contains raw token claims, when a token was presented.
	Claims map[string]any

	// ExpiresAt is when this identity expires (zero = never).
	ExpiresAt time.Time
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsSystem reports whether this identity is the static-key service identity.
func (id *Identity) IsSystem() bool {
	return id.Method == MethodStaticKey && id.Principal == SystemPrincipal
}

// SystemIdentity creates the identity produced by a valid static key.
func SystemIdentity() *Identity {
	return &Identity{
		Principal: SystemPrincipal,
		Method:    MethodStaticKey,
	}
}
