// Package activity records and lists per-user learning activity.
package activity

import (
	"context"
	"time"
)

// ActionType names one kind of user action. The set is closed; inputs
// carrying anything else are rejected before they reach a store.
type ActionType string

const (
	ActionLessonStarted         ActionType = "lesson_started"
	ActionLessonCompleted       ActionType = "lesson_completed"
	ActionConversationStarted   ActionType = "conversation_started"
	ActionConversationCompleted ActionType = "conversation_completed"
	ActionVocabularyReviewed    ActionType = "vocabulary_reviewed"
	ActionLogin                 ActionType = "login"
)

// ActionTypes lists every known action type.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionLessonStarted,
		ActionLessonCompleted,
		ActionConversationStarted,
		ActionConversationCompleted,
		ActionVocabularyReviewed,
		ActionLogin,
	}
}

// Valid reports whether t names a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionLessonStarted, ActionLessonCompleted,
		ActionConversationStarted, ActionConversationCompleted,
		ActionVocabularyReviewed, ActionLogin:
		return true
	}
	return false
}

// Entry is one recorded user action.
type Entry struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	ActionType ActionType     `json:"action_type"`
	ActionData map[string]any `json:"action_data,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Page is a normalized pagination window.
type Page struct {
	Number  int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// NormalizePage clamps raw pagination input into a valid window:
// page at least 1, perPage between 1 and 100, defaulting to 20.
func NormalizePage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Number: page, PerPage: perPage}
}

// Offset is the number of entries to skip for this window.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Store persists and lists activity entries.
type Store interface {
	// Insert records one entry and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, entry Entry) (*Entry, error)

	// List returns userID's entries, newest first, within the window,
	// along with the total entry count for that user.
	List(ctx context.Context, userID string, page Page) ([]Entry, int64, error)
}
