package relay

import (
	"net/http"
	"strings"
	"sync"
	"testing"
)

func analysisBody() map[string]any {
	return map[string]any{
		"messages":   []map[string]string{{"role": "user", "content": "Hola, me gusta la paella"}},
		"studyTopic": "food",
	}
}

func TestAnalysis(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("success = %v", body["success"])
		}
		data := body["data"].(map[string]any)
		if data["summary"] != "A friendly chat about food." {
			t.Errorf("summary = %v", data["summary"])
		}
		if f.llm.callCount() != 1 {
			t.Errorf("llm calls = %d, want 1", f.llm.callCount())
		}
		if records := f.sink.Records(); len(records) != 1 {
			t.Errorf("log records = %d, want 1", len(records))
		} else if records[0].Status != http.StatusOK || records[0].ErrorMessage != "" {
			t.Errorf("record = %+v", records[0])
		}
	})

	t.Run("cache hit skips provider", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 3; i++ {
			if rec := f.do(http.MethodPost, "/api/analysis", testToken, analysisBody()); rec.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d", i+1, rec.Code)
			}
		}
		if f.llm.callCount() != 1 {
			t.Errorf("llm calls = %d, want 1 (later requests should hit the cache)", f.llm.callCount())
		}
		if records := f.sink.Records(); len(records) != 3 {
			t.Errorf("log records = %d, want 3 (one per request)", len(records))
		}
	})

	t.Run("different payloads miss independently", func(t *testing.T) {
		f := newFixture(t)
		f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())

		other := analysisBody()
		other["studyTopic"] = "travel"
		f.do(http.MethodPost, "/api/analysis", testToken, other)

		if f.llm.callCount() != 2 {
			t.Errorf("llm calls = %d, want 2", f.llm.callCount())
		}
	})

	t.Run("validation failure never reaches provider", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/analysis", testToken, map[string]any{"studyTopic": "food"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != "validation" {
			t.Errorf("error = %v", body["error"])
		}
		if msg, _ := body["message"].(string); !strings.Contains(msg, "messages") {
			t.Errorf("message %q does not name the missing field", msg)
		}
		if f.llm.callCount() != 0 {
			t.Errorf("llm calls = %d, want 0", f.llm.callCount())
		}
		if records := f.sink.Records(); len(records) != 1 {
			t.Errorf("log records = %d, want 1", len(records))
		}
	})

	t.Run("rejected token never reaches cache or provider", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/analysis", "expired-token", analysisBody())

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != "authentication" {
			t.Errorf("error = %v", body["error"])
		}
		if f.llm.callCount() != 0 {
			t.Errorf("llm calls = %d, want 0", f.llm.callCount())
		}

		// A later valid request must still miss: the rejected one may
		// not have warmed the cache.
		f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())
		if f.llm.callCount() != 1 {
			t.Errorf("llm calls = %d, want 1", f.llm.callCount())
		}
	})

	t.Run("provider failure falls back to default", func(t *testing.T) {
		f := newFixture(t)
		f.llm.err = upstreamErr("openai", http.StatusInternalServerError)

		rec := f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 fallback", rec.Code)
		}
		body := decodeBody(t, rec)
		data := body["data"].(map[string]any)
		if summary, _ := data["summary"].(string); summary == "" {
			t.Error("fallback summary is empty")
		}
		if topics, ok := data["keyTopics"].([]any); !ok || len(topics) != 0 {
			t.Errorf("keyTopics = %v, want empty array", data["keyTopics"])
		}

		records := f.sink.Records()
		if len(records) != 1 {
			t.Fatalf("log records = %d, want 1", len(records))
		}
		if records[0].ErrorMessage == "" {
			t.Error("fallback path should log the provider failure")
		}
	})

	t.Run("failed results are not cached", func(t *testing.T) {
		f := newFixture(t)
		f.llm.err = errBoom
		f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())

		f.llm.err = nil
		f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())
		if f.llm.callCount() != 2 {
			t.Errorf("llm calls = %d, want 2 (failure must not be cached)", f.llm.callCount())
		}
	})

	t.Run("unparseable completion falls back", func(t *testing.T) {
		f := newFixture(t)
		f.llm.content = "sorry, I can't do that"

		rec := f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		data := decodeBody(t, rec)["data"].(map[string]any)
		if data["summary"] != defaultAnalysis().Summary {
			t.Errorf("summary = %v, want default", data["summary"])
		}
	})

	t.Run("concurrent identical misses both call provider", func(t *testing.T) {
		f := newFixture(t)
		f.llm.barrier = make(chan struct{})

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.do(http.MethodPost, "/api/analysis", testToken, analysisBody())
			}()
		}

		// Wait until both requests are inside the adapter, then let
		// them finish.
		waitFor(t, func() bool { return f.llm.callCount() == 2 })
		close(f.llm.barrier)
		wg.Wait()

		if f.llm.callCount() != 2 {
			t.Errorf("llm calls = %d, want 2 (no single-flight)", f.llm.callCount())
		}
	})
}
