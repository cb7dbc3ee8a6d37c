// Package fault defines the closed error taxonomy for the relay.
//
// Every error that reaches a caller is classified into exactly one Kind
// with a fixed HTTP status and machine-readable code. Unclassified
// failures default to KindInternal and are sanitized outside development.
package fault
