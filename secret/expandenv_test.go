package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("IALLA_REGION", "eu-west")
	t.Setenv("IALLA_STAGE", "staging")

	got, err := ExpandEnvStrict("https://${IALLA_REGION}.supabase.co/${IALLA_STAGE}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "https://eu-west.supabase.co/staging" {
		t.Errorf("ExpandEnvStrict() = %q", got)
	}
}

func TestExpandEnvStrict_MissingVariableNamedInError(t *testing.T) {
	t.Setenv("IALLA_KNOWN", "ok")

	_, err := ExpandEnvStrict("${IALLA_KNOWN}/${IALLA_ABSENT}")
	if err == nil {
		t.Fatal("expected error for unset variable")
	}
	if !strings.Contains(err.Error(), "IALLA_ABSENT") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestExpandEnvStrict_DoubleDollarEscapes(t *testing.T) {
	t.Setenv("IALLA_PRICE", "5")

	got, err := ExpandEnvStrict("$$${IALLA_PRICE}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "$5" {
		t.Errorf("ExpandEnvStrict() = %q, want %q", got, "$5")
	}
}
