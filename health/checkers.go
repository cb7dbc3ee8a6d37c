package health

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/n-chekan/ialla-api/cache"
)

// MessageConfigured is reported for a provider whose credentials are
// present. The check deliberately never dials the provider.
const MessageConfigured = "configured"

// MessageMissing is reported for a provider with no credentials.
const MessageMissing = "missing"

// NewConfiguredChecker reports whether a provider's credentials are
// configured. Missing credentials degrade the service rather than
// failing it: the relay still serves the capabilities that are wired.
func NewConfiguredChecker(name string, configured func() bool) *CheckerFunc {
	return NewCheckerFunc(name, func(context.Context) Result {
		if configured() {
			return Healthy(MessageConfigured)
		}
		return Degraded(MessageMissing)
	})
}

// CacheChecker verifies the cache with a set/get/delete round trip.
type CacheChecker struct {
	cache cache.Cache
}

// NewCacheChecker creates a checker over c.
func NewCacheChecker(c cache.Cache) *CacheChecker {
	return &CacheChecker{cache: c}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check round-trips a probe value through the cache.
func (c *CacheChecker) Check(ctx context.Context) Result {
	key := "health:probe-" + uuid.NewString()
	want := []byte("ok")

	if err := c.cache.Set(ctx, key, want, 10*time.Second); err != nil {
		return Unhealthy("cache write failed", err)
	}
	got, ok := c.cache.Get(ctx, key)
	if !ok || !bytes.Equal(got, want) {
		return Unhealthy("cache read failed", fmt.Errorf("probe value not returned"))
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		return Unhealthy("cache delete failed", err)
	}
	return Healthy("ok")
}
