package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestActionTypeValid(t *testing.T) {
	for _, typ := range ActionTypes() {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	for _, typ := range []ActionType{"", "lesson", "LESSON_STARTED", "logout"} {
		if typ.Valid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{name: "defaults", page: 0, perPage: 0, wantPage: 1, wantPerPage: 20},
		{name: "negative page", page: -3, perPage: 10, wantPage: 1, wantPerPage: 10},
		{name: "per page over cap", page: 2, perPage: 500, wantPage: 2, wantPerPage: 100},
		{name: "per page at cap", page: 1, perPage: 100, wantPage: 1, wantPerPage: 100},
		{name: "normal", page: 3, perPage: 25, wantPage: 3, wantPerPage: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePage(tt.page, tt.perPage)
			if got.Number != tt.wantPage || got.PerPage != tt.wantPerPage {
				t.Errorf("NormalizePage(%d, %d) = %+v, want {%d %d}",
					tt.page, tt.perPage, got, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageOffset(t *testing.T) {
	if got := NormalizePage(1, 20).Offset(); got != 0 {
		t.Errorf("page 1 offset = %d, want 0", got)
	}
	if got := NormalizePage(3, 25).Offset(); got != 50 {
		t.Errorf("page 3 offset = %d, want 50", got)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		entry, err := store.Insert(ctx, Entry{
			UserID:     "user-1",
			ActionType: ActionLessonCompleted,
			ActionData: map[string]any{"lesson": fmt.Sprintf("l-%d", i)},
		})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if entry.ID == "" || entry.CreatedAt.IsZero() {
			t.Fatalf("Insert() returned incomplete entry: %+v", entry)
		}
	}
	store.Insert(ctx, Entry{UserID: "user-2", ActionType: ActionLogin})

	t.Run("newest first", func(t *testing.T) {
		entries, total, err := store.List(ctx, "user-1", NormalizePage(1, 20))
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		if len(entries) != 5 {
			t.Fatalf("len = %d, want 5", len(entries))
		}
		if entries[0].ActionData["lesson"] != "l-4" {
			t.Errorf("first entry = %+v, want most recent", entries[0])
		}
	})

	t.Run("pagination window", func(t *testing.T) {
		entries, total, err := store.List(ctx, "user-1", NormalizePage(2, 2))
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 5 || len(entries) != 2 {
			t.Fatalf("total = %d, len = %d, want 5 and 2", total, len(entries))
		}
		if entries[0].ActionData["lesson"] != "l-2" {
			t.Errorf("page 2 starts at %v, want l-2", entries[0].ActionData["lesson"])
		}
	})

	t.Run("past the end", func(t *testing.T) {
		entries, total, err := store.List(ctx, "user-1", NormalizePage(10, 20))
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 5 || len(entries) != 0 {
			t.Errorf("total = %d, len = %d, want 5 and 0", total, len(entries))
		}
	})

	t.Run("user isolation", func(t *testing.T) {
		entries, total, _ := store.List(ctx, "user-2", NormalizePage(1, 20))
		if total != 1 || len(entries) != 1 {
			t.Errorf("total = %d, len = %d, want 1 and 1", total, len(entries))
		}
	})

	t.Run("failure injection", func(t *testing.T) {
		broken := NewMemoryStore()
		broken.FailWith(errors.New("store down"))
		if _, err := broken.Insert(ctx, Entry{UserID: "u", ActionType: ActionLogin}); err == nil {
			t.Error("expected insert error")
		}
		if _, _, err := broken.List(ctx, "u", NormalizePage(1, 20)); err == nil {
			t.Error("expected list error")
		}
	})
}
