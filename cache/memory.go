package cache

import (
	"context"
	"regexp"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the background sweeper removes
// expired entries that were never read again.
const DefaultSweepInterval = 5 * time.Minute

// MemoryCache is an in-memory cache implementation.
//
// Expired entries are dropped lazily on read; a background sweeper
// removes the rest on an interval. There is no size bound: the entry
// set is bounded by request diversity within the process lifetime.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

type cacheEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithSweepInterval overrides the background sweep interval.
// An interval <= 0 disables the sweeper.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		c.sweepInterval = d
	}
}

// NewMemoryCache creates a new in-memory cache and starts its sweeper.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]*cacheEntry),
		sweepInterval: DefaultSweepInterval,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sweepInterval > 0 {
		go c.sweep()
	}

	return c
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		// Expired - clean up lazily
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	now := time.Now()
	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()

	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// InvalidatePattern removes every key matching re and returns the count removed.
func (c *MemoryCache) InvalidatePattern(_ context.Context, re *regexp.Regexp) int {
	if re == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, counting entries that have
// expired but not yet been swept.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweeper. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
