package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// maxKeyLen bounds key size; content-derived keys are far shorter, so
// anything near the limit indicates a caller bug.
const maxKeyLen = 512

// ErrInvalidKey reports a key that is empty, overlong, or contains
// control characters.
var ErrInvalidKey = errors.New("cache: invalid key")

// Cache stores idempotent provider results keyed by content-derived keys.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
// - Concurrent Set to the same key is last-write-wins; keys are
//   content-derived so racing writers carry equal values.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL<=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// InvalidatePattern removes every key matching re and returns the count.
	InvalidatePattern(ctx context.Context, re *regexp.Regexp) int
}

// ValidateKey reports whether key is acceptable for storage.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case len(key) > maxKeyLen:
		return fmt.Errorf("%w: exceeds %d bytes", ErrInvalidKey, maxKeyLen)
	case strings.ContainsAny(key, "\n\r"):
		return fmt.Errorf("%w: contains line breaks", ErrInvalidKey)
	}
	return nil
}
