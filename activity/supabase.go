package activity

import (
	"context"
	"fmt"

	"github.com/n-chekan/ialla-api/supabase"
)

// SupabaseStore persists activity entries in a Supabase table.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseStore creates a store over client. An empty table
// defaults to "user_activity".
func NewSupabaseStore(client *supabase.Client, table string) *SupabaseStore {
	if table == "" {
		table = "user_activity"
	}
	return &SupabaseStore{client: client, table: table}
}

// Insert records one entry.
func (s *SupabaseStore) Insert(ctx context.Context, entry Entry) (*Entry, error) {
	record := map[string]any{
		"user_id":     entry.UserID,
		"action_type": string(entry.ActionType),
	}
	if entry.ActionData != nil {
		record["action_data"] = entry.ActionData
	}
	if entry.Metadata != nil {
		record["metadata"] = entry.Metadata
	}

	resp, err := s.client.From(s.table).Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}

	var created []Entry
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("decode inserted activity: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("insert activity: empty response")
	}
	return &created[0], nil
}

// List returns userID's entries, newest first.
func (s *SupabaseStore) List(ctx context.Context, userID string, page Page) ([]Entry, int64, error) {
	resp, err := s.client.From(s.table).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", false).
		Limit(page.PerPage).
		Offset(page.Offset()).
		ExactCount().
		Execute(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}

	var entries []Entry
	if err := resp.Decode(&entries); err != nil {
		return nil, 0, fmt.Errorf("decode activity list: %w", err)
	}

	total := resp.Count
	if total < 0 {
		total = int64(len(entries))
	}
	return entries, total, nil
}
