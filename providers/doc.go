// Package providers contains the adapters for the external APIs the
// relay fronts: LLM completion, voice conversation and synthesis, and
// transactional email. Each adapter shapes requests and normalizes
// responses and nothing more; retries, caching and fallbacks belong to
// the callers.
package providers
