package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// JWKSProvider fetches RSA verification keys from a JWKS endpoint and
// caches them. Concurrent refreshes for the same endpoint are collapsed
// into a single fetch.
type JWKSProvider struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time

	group singleflight.Group
}

// JWKSOption configures a JWKSProvider.
type JWKSOption func(*JWKSProvider)

// WithJWKSTTL sets how long a fetched key set is reused.
func WithJWKSTTL(d time.Duration) JWKSOption {
	return func(p *JWKSProvider) { p.ttl = d }
}

// WithJWKSHTTPClient sets the HTTP client used to fetch the key set.
func WithJWKSHTTPClient(c *http.Client) JWKSOption {
	return func(p *JWKSProvider) { p.client = c }
}

// NewJWKSProvider creates a provider for the given JWKS URL.
func NewJWKSProvider(url string, opts ...JWKSOption) *JWKSProvider {
	p := &JWKSProvider{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		ttl:    15 * time.Minute,
		keys:   make(map[string]*rsa.PublicKey),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the RSA public key with the given kid, refreshing the
// cached key set when it is stale or the kid is unknown.
func (p *JWKSProvider) Key(ctx context.Context, kid string) (any, error) {
	if key, ok := p.cached(kid); ok {
		return key, nil
	}

	_, err, _ := p.group.Do("refresh", func() (any, error) {
		// Another caller may have refreshed while we waited.
		p.mu.RLock()
		fresh := time.Since(p.fetched) < time.Minute
		p.mu.RUnlock()
		if fresh {
			return nil, nil
		}
		return nil, p.refresh(ctx)
	})
	if err != nil {
		// A previously fetched key set keeps serving on refresh failure.
		if key, ok := p.stale(kid); ok {
			return key, nil
		}
		return nil, fmt.Errorf("jwks refresh: %w", err)
	}

	if key, ok := p.stale(kid); ok {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (p *JWKSProvider) cached(kid string) (*rsa.PublicKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if time.Since(p.fetched) > p.ttl {
		return nil, false
	}
	key, ok := p.keys[kid]
	return key, ok
}

func (p *JWKSProvider) stale(kid string) (*rsa.PublicKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key, ok := p.keys[kid]
	return key, ok
}

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

type jwksKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (p *JWKSProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	p.mu.Lock()
	p.keys = keys
	p.fetched = time.Now()
	p.mu.Unlock()
	return nil
}

func parseRSAKey(k jwksKey) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
