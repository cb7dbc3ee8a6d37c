package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Ensure a clean slate for the variables Load inspects.
	for _, key := range []string{
		"IALLA_ENV", "PORT", "IALLA_VERSION", "LOG_LEVEL",
		"SUPABASE_URL", "SUPABASE_SERVICE_KEY", "OPENAI_API_KEY",
		"ELEVENLABS_API_KEY", "RESEND_API_KEY", "CACHE_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !cfg.Development() {
		t.Error("Development() should be true by default")
	}
	if cfg.CacheSweepInterval != 5*time.Minute {
		t.Errorf("CacheSweepInterval = %v, want 5m", cfg.CacheSweepInterval)
	}
	if cfg.OpenAI.Configured() {
		t.Error("OpenAI should be unconfigured without a key")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := Load(context.Background()); err == nil {
		t.Error("Load should reject a non-numeric PORT")
	}

	t.Setenv("PORT", "8080")
	t.Setenv("IALLA_ENV", "staging")
	if _, err := Load(context.Background()); err == nil {
		t.Error("Load should reject unknown environments")
	}
}

func TestLoadResolvesSecretRefs(t *testing.T) {
	t.Setenv("IALLA_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("REAL_OPENAI_KEY", "sk-live-123")
	t.Setenv("OPENAI_API_KEY", "secretref:env:REAL_OPENAI_KEY")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-live-123" {
		t.Errorf("APIKey = %q, want resolved secret", cfg.OpenAI.APIKey)
	}
	if cfg.Development() {
		t.Error("production config should not report development mode")
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
}

func TestProviderConfigured(t *testing.T) {
	if (ProviderConfig{}).Configured() {
		t.Error("empty provider should be unconfigured")
	}
	if !(ProviderConfig{APIKey: "k"}).Configured() {
		t.Error("provider with key should be configured")
	}
	if (SupabaseConfig{URL: "https://x"}).Configured() {
		t.Error("supabase needs both URL and key")
	}
}
