// Package relay is the HTTP surface of the API. Each capability
// handler walks the same pipeline: authenticate, validate the payload,
// consult the cache, call the provider adapter, store the result, and
// record exactly one call-log entry before responding. Validation and
// authentication failures never reach a provider; provider failures
// are masked with a fallback for text analysis and surfaced for the
// side-effecting capabilities.
package relay
