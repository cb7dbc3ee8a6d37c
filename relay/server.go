package relay

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/n-chekan/ialla-api/activity"
	"github.com/n-chekan/ialla-api/auth"
	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/calllog"
	"github.com/n-chekan/ialla-api/fault"
	"github.com/n-chekan/ialla-api/health"
	"github.com/n-chekan/ialla-api/observe"
	"github.com/n-chekan/ialla-api/providers/email"
	"github.com/n-chekan/ialla-api/providers/llm"
	"github.com/n-chekan/ialla-api/providers/voice"
)

// CompletionClient is the slice of the LLM adapter the relay uses.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error)
}

// VoiceClient is the slice of the voice adapter the relay uses.
type VoiceClient interface {
	StartConversation(ctx context.Context, agentID string) (*voice.Conversation, error)
	SendMessage(ctx context.Context, conversationID, message string) (*voice.Reply, error)
	EndConversation(ctx context.Context, conversationID string) (*voice.Conversation, error)
	Synthesize(ctx context.Context, req voice.SynthesisRequest) (*voice.Synthesis, error)
}

// EmailClient is the slice of the email adapter the relay uses.
type EmailClient interface {
	Send(ctx context.Context, msg email.Message) (*email.Receipt, error)
}

// Options wires a Server. Auth, Cache, CallLog and Log are required;
// a nil provider client disables its capability with a 502 at call
// time rather than at startup.
type Options struct {
	Auth       auth.Authenticator
	EmailAuth  auth.Authenticator
	Authorizer *auth.AdminAuthorizer

	Cache   *cache.ReadThrough
	CallLog *calllog.Logger
	Log     observe.Logger

	LLM      CompletionClient
	Voice    VoiceClient
	Email    EmailClient
	Activity activity.Store

	Health  *health.Aggregator
	Version string

	// Development leaves internal error detail in responses.
	Development bool
}

// Server holds the relay's handlers and their collaborators.
type Server struct {
	auth       auth.Authenticator
	emailAuth  auth.Authenticator
	authorizer *auth.AdminAuthorizer

	cache   *cache.ReadThrough
	callLog *calllog.Logger
	log     observe.Logger

	llm        CompletionClient
	voice      VoiceClient
	email      EmailClient
	activities activity.Store

	health      *health.Aggregator
	version     string
	development bool
}

// NewServer creates a Server from opts.
func NewServer(opts Options) *Server {
	s := &Server{
		auth:        opts.Auth,
		emailAuth:   opts.EmailAuth,
		authorizer:  opts.Authorizer,
		cache:       opts.Cache,
		callLog:     opts.CallLog,
		log:         opts.Log,
		llm:         opts.LLM,
		voice:       opts.Voice,
		email:       opts.Email,
		activities:  opts.Activity,
		health:      opts.Health,
		version:     opts.Version,
		development: opts.Development,
	}
	if s.emailAuth == nil {
		s.emailAuth = s.auth
	}
	if s.log == nil {
		s.log = observe.NopLogger()
	}
	return s
}

// Handler builds the HTTP surface: the routing table wrapped in the
// CORS layer, so preflight probes are answered before routing can
// reject their method.
func (s *Server) Handler() http.Handler {
	return CORS(s.router())
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", health.Handler(s.health, s.version)).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleDocs).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analysis", s.handleAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/voice/conversation", s.handleConversation).Methods(http.MethodPost)
	api.HandleFunc("/voice/synthesis", s.handleSynthesis).Methods(http.MethodPost)
	api.HandleFunc("/email", s.handleEmail).Methods(http.MethodPost)
	api.HandleFunc("/activity", s.handleActivityList).Methods(http.MethodGet)
	api.HandleFunc("/activity", s.handleActivityCreate).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	return r
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, fault.NotFound("no such endpoint"))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	env := fault.Envelope{
		Error:     "method_not_allowed",
		Message:   "method " + r.Method + " is not allowed on this endpoint",
		Code:      "METHOD_NOT_ALLOWED",
		Timestamp: timestamp(),
	}
	writeJSON(w, http.StatusMethodNotAllowed, env)
}

// authenticate resolves the request's credential with the given
// authenticator and maps failures into the error taxonomy.
func (s *Server) authenticate(r *http.Request, authenticator auth.Authenticator) (*auth.Identity, error) {
	identity, err := authenticator.Authenticate(r.Context(), auth.FromHTTP(r))
	if err != nil {
		return nil, authFault(err)
	}
	return identity, nil
}
