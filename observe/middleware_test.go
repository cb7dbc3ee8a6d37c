package observe

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestMiddleware(buf *bytes.Buffer) *Middleware {
	return NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NewLoggerWithWriter("info", buf))
}

func TestMiddlewareLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	mw := newTestMiddleware(&buf)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/activity", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "request completed") {
		t.Errorf("expected completion log, got %q", out)
	}
	if !strings.Contains(out, "/api/activity") {
		t.Errorf("log should carry the endpoint, got %q", out)
	}
}

func TestMiddlewareRecordsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	mw := newTestMiddleware(&buf)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/voice/synthesis", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "request failed") {
		t.Errorf("5xx should log as failure, got %q", buf.String())
	}
}

func TestMiddlewareClientErrorsAreNotFailures(t *testing.T) {
	var buf bytes.Buffer
	mw := newTestMiddleware(&buf)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/email", nil))

	if !strings.Contains(buf.String(), "request completed") {
		t.Errorf("4xx is a handled request, got %q", buf.String())
	}
}
