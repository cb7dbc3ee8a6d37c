package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/supabase"
)

// RoleAdmin marks a profile allowed to read other users' data.
const RoleAdmin = "admin"

// Profile is the subset of a user profile relevant to authorization.
type Profile struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// ProfileStore looks up a user's profile.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// SupabaseProfileStore reads profiles from the profiles table.
type SupabaseProfileStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseProfileStore creates a store over client. An empty table
// defaults to "profiles".
func NewSupabaseProfileStore(client *supabase.Client, table string) *SupabaseProfileStore {
	if table == "" {
		table = "profiles"
	}
	return &SupabaseProfileStore{client: client, table: table}
}

// Profile fetches the profile row for userID.
func (s *SupabaseProfileStore) Profile(ctx context.Context, userID string) (*Profile, error) {
	resp, err := s.client.From(s.table).
		Select("id,role").
		Eq("id", userID).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	var p Profile
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// AdminAuthorizer decides whether an identity may act on other users'
// data. Profile lookups go through the cache so repeated checks for
// the same user do not hit the store.
type AdminAuthorizer struct {
	store    ProfileStore
	profiles *cache.ReadThrough
}

// NewAdminAuthorizer creates an authorizer over store. profiles may be
// nil to disable caching.
func NewAdminAuthorizer(store ProfileStore, profiles *cache.ReadThrough) *AdminAuthorizer {
	return &AdminAuthorizer{store: store, profiles: profiles}
}

// IsAdmin reports whether id may read data belonging to other users.
// The static service key is always allowed; token identities are
// checked against their profile role.
func (a *AdminAuthorizer) IsAdmin(ctx context.Context, id *Identity) (bool, error) {
	if id == nil {
		return false, ErrNoCredential
	}
	if id.IsSystem() {
		return true, nil
	}
	if id.Role == RoleAdmin {
		return true, nil
	}
	if a.store == nil {
		return false, nil
	}

	profile, err := a.profile(ctx, id.Principal)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return profile.Role == RoleAdmin, nil
}

func (a *AdminAuthorizer) profile(ctx context.Context, userID string) (*Profile, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		p, err := a.store.Profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	}

	if a.profiles == nil {
		raw, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		var p Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	raw, _, err := a.profiles.Do(ctx, cache.NamespaceProfile, map[string]string{"userId": userID}, fetch)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
