package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/n-chekan/ialla-api/activity"
	"github.com/n-chekan/ialla-api/auth"
	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/calllog"
	"github.com/n-chekan/ialla-api/health"
	"github.com/n-chekan/ialla-api/observe"
	"github.com/n-chekan/ialla-api/providers"
	"github.com/n-chekan/ialla-api/providers/email"
	"github.com/n-chekan/ialla-api/providers/llm"
	"github.com/n-chekan/ialla-api/providers/voice"
)

const (
	testToken      = "valid-token"
	testAdminToken = "admin-token"
	testServiceKey = "service-key"
	testUser       = "user-1"
	testAdmin      = "admin-1"
)

// tokenAuthenticator resolves a fixed set of bearer tokens.
type tokenAuthenticator struct{}

func (tokenAuthenticator) Name() string { return "test-token" }

func (tokenAuthenticator) Supports(r *auth.Request) bool { return r.BearerToken != "" }

func (tokenAuthenticator) Authenticate(_ context.Context, r *auth.Request) (*auth.Identity, error) {
	switch r.BearerToken {
	case "":
		return nil, auth.ErrNoCredential
	case testToken:
		return &auth.Identity{Principal: testUser, Method: auth.MethodToken}, nil
	case testAdminToken:
		return &auth.Identity{Principal: testAdmin, Role: "admin", Method: auth.MethodToken}, nil
	default:
		return nil, auth.ErrInvalidToken
	}
}

type mockLLM struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error

	// barrier, when set, blocks Complete until released.
	barrier chan struct{}
}

func (m *mockLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	m.mu.Lock()
	m.calls++
	barrier := m.barrier
	m.mu.Unlock()

	if barrier != nil {
		<-barrier
	}
	if m.err != nil {
		return nil, m.err
	}
	content := m.content
	if content == "" {
		content = `{"summary":"A friendly chat about food.","keyTopics":["food"],"corrections":[],"suggestions":["Practice ordering"]}`
	}
	return &llm.Completion{Content: content, Model: "gpt-4o-mini"}, nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockVoice struct {
	mu         sync.Mutex
	startCalls int
	sendCalls  int
	endCalls   int
	synthCalls int
	err        error
}

func (m *mockVoice) StartConversation(_ context.Context, agentID string) (*voice.Conversation, error) {
	m.mu.Lock()
	m.startCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &voice.Conversation{ConversationID: "conv-1", AgentID: agentID, Status: "active"}, nil
}

func (m *mockVoice) SendMessage(_ context.Context, conversationID, message string) (*voice.Reply, error) {
	m.mu.Lock()
	m.sendCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &voice.Reply{ConversationID: conversationID, Text: "reply to " + message}, nil
}

func (m *mockVoice) EndConversation(_ context.Context, conversationID string) (*voice.Conversation, error) {
	m.mu.Lock()
	m.endCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &voice.Conversation{ConversationID: conversationID, Status: "ended"}, nil
}

func (m *mockVoice) Synthesize(_ context.Context, req voice.SynthesisRequest) (*voice.Synthesis, error) {
	m.mu.Lock()
	m.synthCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &voice.Synthesis{AudioReference: "data:audio/mpeg;base64,QQ==", Duration: 1.5}, nil
}

type mockEmail struct {
	mu    sync.Mutex
	calls int
	err   error
	last  email.Message
}

func (m *mockEmail) Send(_ context.Context, msg email.Message) (*email.Receipt, error) {
	m.mu.Lock()
	m.calls++
	m.last = msg
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &email.Receipt{ID: "email-1", Status: "sent"}, nil
}

type fixture struct {
	server  *Server
	handler http.Handler
	llm     *mockLLM
	voice   *mockVoice
	email   *mockEmail
	sink    *calllog.MemorySink
	store   *activity.MemoryStore
}

type profileStoreFunc func(ctx context.Context, userID string) (*auth.Profile, error)

func (f profileStoreFunc) Profile(ctx context.Context, userID string) (*auth.Profile, error) {
	return f(ctx, userID)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := cache.NewMemoryCache(cache.WithSweepInterval(0))
	t.Cleanup(mem.Close)

	sink := calllog.NewMemorySink()
	f := &fixture{
		llm:   &mockLLM{},
		voice: &mockVoice{},
		email: &mockEmail{},
		sink:  sink,
		store: activity.NewMemoryStore(),
	}

	profiles := profileStoreFunc(func(_ context.Context, userID string) (*auth.Profile, error) {
		if userID == testAdmin {
			return &auth.Profile{ID: userID, Role: "admin"}, nil
		}
		return &auth.Profile{ID: userID, Role: "student"}, nil
	})

	agg := health.NewAggregator()
	agg.Register(health.NewConfiguredChecker("openai", func() bool { return true }))
	agg.Register(health.NewConfiguredChecker("resend", func() bool { return false }))
	agg.Register(health.NewCacheChecker(mem))

	tokens := tokenAuthenticator{}
	f.server = NewServer(Options{
		Auth:       tokens,
		EmailAuth:  auth.NewComposite(tokens, auth.NewStaticKeyAuthenticator(testServiceKey)),
		Authorizer: auth.NewAdminAuthorizer(profiles, nil),
		Cache:      cache.NewReadThrough(mem, cache.NewDefaultKeyer(), cache.DefaultPolicy()),
		CallLog:    calllog.NewLogger(sink, observe.NopLogger()),
		Log:        observe.NopLogger(),
		LLM:        f.llm,
		Voice:      f.voice,
		Email:      f.email,
		Activity:   f.store,
		Health:     agg,
		Version:    "test",
	})
	f.handler = f.server.Handler()
	return f
}

// do performs one request against the fixture.
func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func upstreamErr(provider string, status int) error {
	return &providers.UpstreamError{Provider: provider, StatusCode: status, Body: "upstream failure"}
}

var errBoom = errors.New("boom")

// waitFor polls cond until it holds or the test deadline is near.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
