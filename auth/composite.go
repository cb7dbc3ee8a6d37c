package auth

import "context"

// Composite tries authenticators in order and returns the first
// result from one that supports the request's credential. A request
// with no credential at all fails with ErrNoCredential.
type Composite struct {
	authenticators []Authenticator
}

// NewComposite creates a composite over the given authenticators.
// Order matters: the first authenticator that supports the request
// decides the outcome.
func NewComposite(authenticators ...Authenticator) *Composite {
	return &Composite{authenticators: authenticators}
}

// Name returns "composite".
func (c *Composite) Name() string { return "composite" }

// Supports reports whether any member supports the request.
func (c *Composite) Supports(r *Request) bool {
	for _, a := range c.authenticators {
		if a.Supports(r) {
			return true
		}
	}
	return false
}

// Authenticate dispatches to the first supporting authenticator.
func (c *Composite) Authenticate(ctx context.Context, r *Request) (*Identity, error) {
	if !r.HasCredential() {
		return nil, ErrNoCredential
	}
	for _, a := range c.authenticators {
		if a.Supports(r) {
			return a.Authenticate(ctx, r)
		}
	}
	return nil, ErrNoCredential
}
