package secret

import (
	"context"
	"testing"
)

func TestEnvProviderResolve(t *testing.T) {
	t.Setenv("IALLA_TEST_SECRET", "s3cret")

	p := NewEnvProvider()
	got, err := p.Resolve(context.Background(), "IALLA_TEST_SECRET")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Resolve() = %q, want s3cret", got)
	}
}

func TestEnvProviderMissing(t *testing.T) {
	p := NewEnvProvider()
	if _, err := p.Resolve(context.Background(), "IALLA_TEST_DEFINITELY_MISSING"); err == nil {
		t.Error("Resolve of missing variable should error")
	}
}

func TestEnvProviderViaResolver(t *testing.T) {
	t.Setenv("IALLA_TEST_KEY", "abc123")

	r := NewResolver(true, NewEnvProvider())
	got, err := r.ResolveValue(context.Background(), "secretref:env:IALLA_TEST_KEY")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "abc123" {
		t.Errorf("ResolveValue() = %q, want abc123", got)
	}
}
