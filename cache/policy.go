package cache

import "time"

// Namespace selects a TTL policy and scopes key derivation.
type Namespace string

const (
	// NamespaceAnalysis holds completion results from the LLM provider.
	NamespaceAnalysis Namespace = "analysis"
	// NamespaceVoice holds synthesized audio results.
	NamespaceVoice Namespace = "voice"
	// NamespaceProfile holds user profile lookups.
	NamespaceProfile Namespace = "profile"
	// NamespaceTemplate holds email template data.
	NamespaceTemplate Namespace = "template"
)

// DefaultTTL applies to namespaces without an explicit policy entry.
const DefaultTTL = 3600 * time.Second

// Policy maps namespaces to their TTLs.
type Policy struct {
	ttls map[Namespace]time.Duration
}

// DefaultPolicy returns the relay's TTL table.
func DefaultPolicy() Policy {
	return Policy{ttls: map[Namespace]time.Duration{
		NamespaceAnalysis: 7200 * time.Second,
		NamespaceVoice:    3600 * time.Second,
		NamespaceProfile:  1800 * time.Second,
		NamespaceTemplate: 86400 * time.Second,
	}}
}

// NewPolicy returns a policy with the given TTL table.
// Namespaces absent from the table fall back to DefaultTTL.
func NewPolicy(ttls map[Namespace]time.Duration) Policy {
	copied := make(map[Namespace]time.Duration, len(ttls))
	for ns, ttl := range ttls {
		copied[ns] = ttl
	}
	return Policy{ttls: copied}
}

// TTL returns the TTL for a namespace, falling back to DefaultTTL.
func (p Policy) TTL(ns Namespace) time.Duration {
	if ttl, ok := p.ttls[ns]; ok && ttl > 0 {
		return ttl
	}
	return DefaultTTL
}
