// Package auth provides authentication and authorization for the relay.
//
// It supports bearer-token verification (remote, against the identity
// collaborator, or local JWT validation) and a single static service key,
// composed so the bearer path is tried first. The package is
// protocol-agnostic apart from a small HTTP header-extraction middleware.
package auth
