package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/n-chekan/ialla-api/secret"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full process configuration.
type Config struct {
	// Environment is development or production. Production sanitizes
	// internal error messages.
	Environment string

	// Port is the HTTP listen port.
	Port int

	// Version is the reported service version.
	Version string

	// LogLevel is debug|info|warn|error.
	LogLevel string

	// TracingExporter and MetricsExporter select OTel exporters
	// (otlp|prometheus|stdout|none).
	TracingExporter string
	MetricsExporter string

	// CacheSweepInterval is the background sweep interval.
	CacheSweepInterval time.Duration

	Supabase   SupabaseConfig
	Auth       AuthConfig
	OpenAI     ProviderConfig
	ElevenLabs ProviderConfig
	Resend     ResendConfig
}

// SupabaseConfig holds the identity/log-store collaborator settings.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
}

// Configured reports whether the collaborator can be reached.
func (c SupabaseConfig) Configured() bool {
	return c.URL != "" && c.ServiceKey != ""
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// JWTSecret enables local HS256 verification when set; otherwise
	// tokens are verified remotely against the identity collaborator.
	JWTSecret string

	// JWKSURL enables RS256 verification backed by a JWKS endpoint.
	JWKSURL string

	// StaticAPIKey is the single service key accepted on X-API-Key.
	StaticAPIKey string
}

// ProviderConfig holds one external provider's credentials.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Configured reports whether the provider has a credential.
func (c ProviderConfig) Configured() bool {
	return c.APIKey != ""
}

// ResendConfig holds the transactional email provider settings.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

// Configured reports whether the provider has a credential.
func (c ResendConfig) Configured() bool {
	return c.APIKey != ""
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.Environment != EnvProduction
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	resolver := secret.NewResolver(false, secret.NewEnvProvider())

	get := func(key string) (string, error) {
		raw, ok := os.LookupEnv(key)
		if !ok {
			return "", nil
		}
		value, err := resolver.ResolveValue(ctx, raw)
		if err != nil {
			return "", fmt.Errorf("config: resolve %s: %w", key, err)
		}
		return value, nil
	}

	getOr := func(key, fallback string) (string, error) {
		value, err := get(key)
		if err != nil {
			return "", err
		}
		if value == "" {
			return fallback, nil
		}
		return value, nil
	}

	cfg := &Config{}
	var err error

	if cfg.Environment, err = getOr("IALLA_ENV", EnvDevelopment); err != nil {
		return nil, err
	}
	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return nil, fmt.Errorf("config: unknown environment %q", cfg.Environment)
	}

	portStr, err := getOr("PORT", "8080")
	if err != nil {
		return nil, err
	}
	if cfg.Port, err = strconv.Atoi(portStr); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", portStr)
	}

	if cfg.Version, err = getOr("IALLA_VERSION", "dev"); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = getOr("LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if cfg.TracingExporter, err = getOr("TRACING_EXPORTER", "none"); err != nil {
		return nil, err
	}
	if cfg.MetricsExporter, err = getOr("METRICS_EXPORTER", "none"); err != nil {
		return nil, err
	}

	sweepStr, err := getOr("CACHE_SWEEP_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	if cfg.CacheSweepInterval, err = time.ParseDuration(sweepStr); err != nil {
		return nil, fmt.Errorf("config: invalid CACHE_SWEEP_INTERVAL %q", sweepStr)
	}

	if cfg.Supabase.URL, err = get("SUPABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.Supabase.ServiceKey, err = get("SUPABASE_SERVICE_KEY"); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret, err = get("AUTH_JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.Auth.JWKSURL, err = get("AUTH_JWKS_URL"); err != nil {
		return nil, err
	}
	if cfg.Auth.StaticAPIKey, err = get("SERVICE_API_KEY"); err != nil {
		return nil, err
	}

	if cfg.OpenAI.APIKey, err = get("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.OpenAI.BaseURL, err = getOr("OPENAI_BASE_URL", "https://api.openai.com"); err != nil {
		return nil, err
	}
	if cfg.OpenAI.Model, err = getOr("OPENAI_MODEL", "gpt-4o-mini"); err != nil {
		return nil, err
	}

	if cfg.ElevenLabs.APIKey, err = get("ELEVENLABS_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.ElevenLabs.BaseURL, err = getOr("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"); err != nil {
		return nil, err
	}

	if cfg.Resend.APIKey, err = get("RESEND_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Resend.BaseURL, err = getOr("RESEND_BASE_URL", "https://api.resend.com"); err != nil {
		return nil, err
	}
	if cfg.Resend.From, err = getOr("RESEND_FROM", "iAlla <noreply@ialla.app>"); err != nil {
		return nil, err
	}

	return cfg, nil
}
