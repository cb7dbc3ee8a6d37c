// Package cache provides deterministic caching for idempotent relay calls.
//
// It provides a Cache interface with an in-memory implementation, SHA-256
// content-addressed key derivation, and per-namespace TTL policies. Entries
// expire lazily on read and are swept periodically.
package cache
