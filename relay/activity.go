package relay

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/n-chekan/ialla-api/activity"
	"github.com/n-chekan/ialla-api/auth"
	"github.com/n-chekan/ialla-api/fault"
)

type activityRequest struct {
	ActionType activity.ActionType `json:"actionType"`
	UserID     string              `json:"userId,omitempty"`
	ActionData map[string]any      `json:"actionData,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
}

// handleActivityCreate records one activity entry. A caller may only
// record against another user's history with the admin role.
func (s *Server) handleActivityCreate(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, "supabase")

	identity, err := s.authenticate(r, s.auth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req activityRequest
	if err := decodeValid(r, activityValidator, &req); err != nil {
		c.fail(w, r, err)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = identity.Principal
	}
	c.describe(fmt.Sprintf("user=%s action=%s", userID, req.ActionType))

	if err := s.requireSelfOrAdmin(r, identity, userID); err != nil {
		c.fail(w, r, err)
		return
	}

	entry, err := s.activities.Insert(r.Context(), activity.Entry{
		UserID:     userID,
		ActionType: req.ActionType,
		ActionData: req.ActionData,
		Metadata:   req.Metadata,
	})
	if err != nil {
		c.fail(w, r, fault.Internal(fmt.Errorf("record activity: %w", err)))
		return
	}

	c.finish(r, http.StatusCreated, nil)
	s.writeSuccess(w, http.StatusCreated, entry)
}

// handleActivityList returns a page of a user's activity, newest
// first. Reading another user's history requires the admin role.
func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, "supabase")

	identity, err := s.authenticate(r, s.auth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	userID := query.Get("userId")
	if userID == "" {
		userID = identity.Principal
	}

	page := activity.NormalizePage(intParam(query.Get("page")), intParam(query.Get("perPage")))
	c.describe(fmt.Sprintf("user=%s page=%d perPage=%d", userID, page.Number, page.PerPage))

	if err := s.requireSelfOrAdmin(r, identity, userID); err != nil {
		c.fail(w, r, err)
		return
	}

	entries, total, err := s.activities.List(r.Context(), userID, page)
	if err != nil {
		c.fail(w, r, fault.Internal(fmt.Errorf("list activity: %w", err)))
		return
	}

	totalPages := total / int64(page.PerPage)
	if total%int64(page.PerPage) != 0 {
		totalPages++
	}

	c.finish(r, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, listEnvelope{
		Success: true,
		Data:    entries,
		Pagination: pagination{
			Page:       page.Number,
			PerPage:    page.PerPage,
			Total:      total,
			TotalPages: totalPages,
		},
		Timestamp: timestamp(),
	})
}

// requireSelfOrAdmin allows acting on one's own data always, and on
// another user's data only with the admin role.
func (s *Server) requireSelfOrAdmin(r *http.Request, identity *auth.Identity, userID string) error {
	if identity.Principal == userID {
		return nil
	}
	if s.authorizer == nil {
		return fault.Authorization("admin role required")
	}
	admin, err := s.authorizer.IsAdmin(r.Context(), identity)
	if err != nil {
		return fault.Internal(fmt.Errorf("authorize: %w", err))
	}
	if !admin {
		return fault.Authorization("admin role required")
	}
	return nil
}

func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
