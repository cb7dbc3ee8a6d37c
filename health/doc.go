// Package health reports the relay's readiness to serve. Checks never
// dial an upstream API: a provider is reported as configured or
// missing based on its credentials, and the cache is verified with a
// local round trip. The aggregate is served on GET /health.
package health
