package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

var refPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver expands environment variables in configuration values and
// substitutes secretref references through its providers.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver builds a resolver over the given providers. When strict
// is true, a provider returning an empty value is treated as an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p != nil {
			byName[p.Name()] = p
		}
	}
	return &Resolver{providers: byName, strict: strict}
}

// ResolveValue expands environment variables in value and resolves any
// secretref references it contains. A value that is a single reference
// is replaced entirely; references embedded in a larger string are
// substituted in place.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.lookup(ctx, provider, ref)
	}
	return r.substitute(ctx, expanded)
}

// ResolveSlice applies ResolveValue to every element of values.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// ResolveMap applies ResolveValue to every value of input.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// ParseSecretRef splits a value of the form "secretref:<provider>:<ref>".
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) lookup(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("secret provider %q is not registered", providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve secretref %s:%s: %w", providerName, ref, err)
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("secret provider %q returned an empty value for %q", providerName, ref)
	}
	return resolved, nil
}

// substitute replaces every embedded secretref in value. The first
// lookup failure aborts the whole substitution.
func (r *Resolver) substitute(ctx context.Context, value string) (string, error) {
	var firstErr error
	out := refPattern.ReplaceAllStringFunc(value, func(match string) string {
		if firstErr != nil {
			return match
		}
		groups := refPattern.FindStringSubmatch(match)
		resolved, err := r.lookup(ctx, groups[1], groups[2])
		if err != nil {
			firstErr = err
			return match
		}
		return resolved
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
