package cache

import "context"

// FetchFunc produces the value for a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ReadThrough composes a cache, keyer and policy into the relay's
// cache-check / cache-store stages.
type ReadThrough struct {
	cache  Cache
	keyer  Keyer
	policy Policy
}

// NewReadThrough creates a read-through helper.
func NewReadThrough(cache Cache, keyer Keyer, policy Policy) *ReadThrough {
	return &ReadThrough{
		cache:  cache,
		keyer:  keyer,
		policy: policy,
	}
}

// Do looks up the content-derived key for payload in ns; on a hit the
// cached value is returned with hit=true and fetch is never invoked. On a
// miss, fetch runs and its successful result is stored under the same key.
// Errors are never cached, and a failed store never fails the call.
//
// Concurrent misses for the same key each invoke fetch independently; the
// last write wins, which is safe because keys are content-derived.
func (rt *ReadThrough) Do(ctx context.Context, ns Namespace, payload any, fetch FetchFunc) (value []byte, hit bool, err error) {
	key, keyErr := rt.keyer.Key(ns, payload)
	if keyErr != nil {
		// Key derivation failed - fetch without caching
		value, err = fetch(ctx)
		return value, false, err
	}

	if cached, ok := rt.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	value, err = fetch(ctx)
	if err != nil {
		return value, false, err
	}

	_ = rt.cache.Set(ctx, key, value, rt.policy.TTL(ns))
	return value, false, nil
}

// Key exposes the derived key for a payload, for invalidation callers.
func (rt *ReadThrough) Key(ns Namespace, payload any) (string, error) {
	return rt.keyer.Key(ns, payload)
}
