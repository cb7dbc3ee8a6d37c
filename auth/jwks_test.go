package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func jwksHandler(t *testing.T, pub *rsa.PublicKey, kid string, hits *atomic.Int32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		doc := jwksDocument{Keys: []jwksKey{{
			Kty: "RSA",
			Kid: kid,
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}}
		json.NewEncoder(w).Encode(doc)
	}
}

func TestJWKSProvider(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	t.Run("fetches and caches keys", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(jwksHandler(t, &priv.PublicKey, "key-1", &hits))
		defer srv.Close()

		p := NewJWKSProvider(srv.URL, WithJWKSTTL(time.Minute))
		for i := 0; i < 3; i++ {
			key, err := p.Key(context.Background(), "key-1")
			if err != nil {
				t.Fatalf("Key() error = %v", err)
			}
			pub, ok := key.(*rsa.PublicKey)
			if !ok || pub.N.Cmp(priv.PublicKey.N) != 0 {
				t.Fatalf("Key() returned wrong key")
			}
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("endpoint hit %d times, want 1", got)
		}
	})

	t.Run("unknown kid", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(jwksHandler(t, &priv.PublicKey, "key-1", &hits))
		defer srv.Close()

		p := NewJWKSProvider(srv.URL)
		if _, err := p.Key(context.Background(), "missing"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("stale keys serve through endpoint failure", func(t *testing.T) {
		var hits atomic.Int32
		var failing atomic.Bool
		handler := jwksHandler(t, &priv.PublicKey, "key-1", &hits)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if failing.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			handler(w, r)
		}))
		defer srv.Close()

		p := NewJWKSProvider(srv.URL, WithJWKSTTL(0))
		if _, err := p.Key(context.Background(), "key-1"); err != nil {
			t.Fatalf("initial fetch: %v", err)
		}

		failing.Store(true)
		key, err := p.Key(context.Background(), "key-1")
		if err != nil {
			t.Fatalf("Key() after endpoint failure: %v", err)
		}
		if key == nil {
			t.Fatal("expected stale key to be served")
		}
	})

	t.Run("endpoint down with no cache", func(t *testing.T) {
		p := NewJWKSProvider("http://127.0.0.1:1/jwks.json")
		if _, err := p.Key(context.Background(), "key-1"); err == nil {
			t.Error("expected error when endpoint unreachable and nothing cached")
		}
	})
}
