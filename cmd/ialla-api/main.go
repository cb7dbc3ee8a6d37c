// Command ialla-api runs the iAlla backend relay.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/n-chekan/ialla-api/activity"
	"github.com/n-chekan/ialla-api/auth"
	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/calllog"
	"github.com/n-chekan/ialla-api/config"
	"github.com/n-chekan/ialla-api/health"
	"github.com/n-chekan/ialla-api/observe"
	"github.com/n-chekan/ialla-api/providers/email"
	"github.com/n-chekan/ialla-api/providers/llm"
	"github.com/n-chekan/ialla-api/providers/voice"
	"github.com/n-chekan/ialla-api/relay"
	"github.com/n-chekan/ialla-api/supabase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ialla-api:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "ialla-api",
		Version:     cfg.Version,
		Tracing: observe.TracingConfig{
			Enabled:  cfg.TracingExporter != "none",
			Exporter: cfg.TracingExporter,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.MetricsExporter != "none",
			Exporter: cfg.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.LogLevel,
		},
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	log := obs.Logger()

	mem := cache.NewMemoryCache(cache.WithSweepInterval(cfg.CacheSweepInterval))
	defer mem.Close()
	through := cache.NewReadThrough(mem, cache.NewDefaultKeyer(), cache.DefaultPolicy())

	var supa *supabase.Client
	if cfg.Supabase.Configured() {
		supa, err = supabase.New(supabase.Config{URL: cfg.Supabase.URL, APIKey: cfg.Supabase.ServiceKey})
		if err != nil {
			return fmt.Errorf("init supabase client: %w", err)
		}
	}

	opts := relay.Options{
		Cache:       through,
		Log:         log,
		Version:     cfg.Version,
		Development: cfg.Development(),
	}

	// Bearer tokens verify remotely when the identity service is
	// wired, otherwise locally against the shared JWT secret.
	var bearer auth.Authenticator
	switch {
	case supa != nil:
		bearer = auth.NewRemoteAuthenticator(supa)
	case cfg.Auth.JWKSURL != "":
		bearer = auth.NewJWTAuthenticator(auth.NewJWKSProvider(cfg.Auth.JWKSURL))
	default:
		bearer = auth.NewJWTAuthenticator(auth.NewStaticKeyProvider(cfg.Auth.JWTSecret))
	}
	staticKey := auth.NewStaticKeyAuthenticator(cfg.Auth.StaticAPIKey)
	opts.Auth = bearer
	opts.EmailAuth = auth.NewComposite(bearer, staticKey)

	if supa != nil {
		opts.Authorizer = auth.NewAdminAuthorizer(auth.NewSupabaseProfileStore(supa, ""), through)
		opts.CallLog = calllog.NewLogger(calllog.NewSupabaseSink(supa, ""), log)
		opts.Activity = activity.NewSupabaseStore(supa, "")
	} else {
		log.Warn(ctx, "supabase not configured, using in-memory call log and activity store")
		opts.Authorizer = auth.NewAdminAuthorizer(nil, nil)
		opts.CallLog = calllog.NewLogger(calllog.NewMemorySink(), log)
		opts.Activity = activity.NewMemoryStore()
	}

	if cfg.OpenAI.Configured() {
		client, err := llm.New(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			return fmt.Errorf("init llm client: %w", err)
		}
		opts.LLM = client
	}
	if cfg.ElevenLabs.Configured() {
		client, err := voice.New(voice.Config{
			APIKey:  cfg.ElevenLabs.APIKey,
			BaseURL: cfg.ElevenLabs.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("init voice client: %w", err)
		}
		opts.Voice = client
	}
	if cfg.Resend.Configured() {
		client, err := email.New(email.Config{
			APIKey:  cfg.Resend.APIKey,
			BaseURL: cfg.Resend.BaseURL,
			From:    cfg.Resend.From,
		})
		if err != nil {
			return fmt.Errorf("init email client: %w", err)
		}
		opts.Email = client
	}

	agg := health.NewAggregator()
	agg.Register(health.NewConfiguredChecker("supabase", cfg.Supabase.Configured))
	agg.Register(health.NewConfiguredChecker("openai", cfg.OpenAI.Configured))
	agg.Register(health.NewConfiguredChecker("elevenlabs", cfg.ElevenLabs.Configured))
	agg.Register(health.NewConfiguredChecker("resend", cfg.Resend.Configured))
	agg.Register(health.NewCacheChecker(mem))
	opts.Health = agg

	server := relay.NewServer(opts)
	middleware, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("init middleware: %w", err)
	}
	handler := middleware.Handler(server.Handler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening",
			observe.Field{Key: "addr", Value: httpServer.Addr},
			observe.Field{Key: "version", Value: cfg.Version},
			observe.Field{Key: "environment", Value: cfg.Environment},
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
