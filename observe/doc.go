// Package observe provides observability primitives for the relay.
//
// It is a pure instrumentation library: structured JSON logging, OTel
// tracing and metrics, and HTTP middleware that records one span, one
// duration sample and one log line per request. No business logic.
package observe
