package secret

import "context"

// Provider resolves a secret reference to its value.
//
// Implementations must be safe for concurrent use and must never log
// resolved values.
type Provider interface {
	// Name identifies the provider in secretref values,
	// e.g. "env" in "secretref:env:IALLA_JWT_SECRET".
	Name() string

	// Resolve returns the secret for ref, or an error when the secret
	// does not exist or cannot be read.
	Resolve(ctx context.Context, ref string) (string, error)

	Close() error
}
