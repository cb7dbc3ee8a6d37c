package relay

import (
	"net/http"
	"testing"
)

func TestActivityCreate(t *testing.T) {
	t.Run("record for self", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/activity", testToken, map[string]any{
			"actionType": "lesson_completed",
			"actionData": map[string]any{"lessonId": "l-1"},
		})

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		data := decodeBody(t, rec)["data"].(map[string]any)
		if data["user_id"] != testUser {
			t.Errorf("user_id = %v", data["user_id"])
		}
		if data["action_type"] != "lesson_completed" {
			t.Errorf("action_type = %v", data["action_type"])
		}
		if data["id"] == "" || data["created_at"] == "" {
			t.Errorf("incomplete entry: %v", data)
		}
	})

	t.Run("invalid action type", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/activity", testToken, map[string]any{
			"actionType": "logout",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("cross-user record requires admin", func(t *testing.T) {
		f := newFixture(t)
		body := map[string]any{"actionType": "login", "userId": "someone-else"}

		rec := f.do(http.MethodPost, "/api/activity", testToken, body)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("non-admin: status = %d, want 403", rec.Code)
		}
		if decodeBody(t, rec)["error"] != "authorization" {
			t.Errorf("error = %v", decodeBody(t, rec)["error"])
		}

		rec = f.do(http.MethodPost, "/api/activity", testAdminToken, body)
		if rec.Code != http.StatusCreated {
			t.Errorf("admin: status = %d, want 201", rec.Code)
		}
	})
}

func TestActivityList(t *testing.T) {
	seed := func(f *fixture, n int) {
		for i := 0; i < n; i++ {
			if rec := f.do(http.MethodPost, "/api/activity", testToken, map[string]any{
				"actionType": "vocabulary_reviewed",
			}); rec.Code != http.StatusCreated {
				panic("seed failed")
			}
		}
	}

	t.Run("own history with pagination", func(t *testing.T) {
		f := newFixture(t)
		seed(f, 5)

		rec := f.do(http.MethodGet, "/api/activity?page=2&perPage=2", testToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		entries := body["data"].([]any)
		if len(entries) != 2 {
			t.Errorf("entries = %d, want 2", len(entries))
		}
		p := body["pagination"].(map[string]any)
		if p["page"] != float64(2) || p["perPage"] != float64(2) || p["total"] != float64(5) || p["totalPages"] != float64(3) {
			t.Errorf("pagination = %v", p)
		}
	})

	t.Run("pagination bounds are normalized", func(t *testing.T) {
		f := newFixture(t)
		seed(f, 1)

		rec := f.do(http.MethodGet, "/api/activity?page=-1&perPage=9999", testToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		p := decodeBody(t, rec)["pagination"].(map[string]any)
		if p["page"] != float64(1) || p["perPage"] != float64(100) {
			t.Errorf("pagination = %v", p)
		}
	})

	t.Run("cross-user read requires admin", func(t *testing.T) {
		f := newFixture(t)
		seed(f, 1)

		rec := f.do(http.MethodGet, "/api/activity?userId="+testUser, testAdminToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("admin: status = %d", rec.Code)
		}
		if entries := decodeBody(t, rec)["data"].([]any); len(entries) != 1 {
			t.Errorf("admin sees %d entries, want 1", len(entries))
		}

		rec = f.do(http.MethodGet, "/api/activity?userId="+testAdmin, testToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("non-admin: status = %d, want 403", rec.Code)
		}
	})

	t.Run("requires a credential", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/api/activity", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
