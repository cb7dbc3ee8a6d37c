// Package calllog records every provider call and every error with timing
// metadata. Writes are best-effort: a sink failure is reported on the
// observe logger (the secondary channel) and never reaches the caller.
package calllog
