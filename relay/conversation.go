package relay

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/n-chekan/ialla-api/fault"
	"github.com/n-chekan/ialla-api/providers"
	"github.com/n-chekan/ialla-api/providers/voice"
)

// conversationAction is the closed set of verbs the conversation
// endpoint dispatches on.
type conversationAction string

const (
	actionStart conversationAction = "start"
	actionSend  conversationAction = "send"
	actionEnd   conversationAction = "end"
)

type conversationRequest struct {
	Action         conversationAction `json:"action"`
	AgentID        string             `json:"agentId,omitempty"`
	Message        string             `json:"message,omitempty"`
	ConversationID string             `json:"conversationId,omitempty"`
}

var errVoiceNotConfigured = errors.New("voice provider not configured")

// handleConversation proxies live agent conversations. Results are
// never cached: every action mutates provider-side state.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, voice.ProviderName)

	identity, err := s.authenticate(r, s.auth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req conversationRequest
	if err := decodeValid(r, conversationValidator, &req); err != nil {
		c.fail(w, r, err)
		return
	}
	c.describe(fmt.Sprintf("user=%s action=%s", identity.Principal, req.Action))

	if err := req.requireFields(); err != nil {
		c.fail(w, r, err)
		return
	}

	if s.voice == nil {
		c.fail(w, r, providers.Fault(voice.ProviderName, errVoiceNotConfigured))
		return
	}

	var result any
	switch req.Action {
	case actionStart:
		result, err = s.voice.StartConversation(r.Context(), req.AgentID)
	case actionSend:
		result, err = s.voice.SendMessage(r.Context(), req.ConversationID, req.Message)
	case actionEnd:
		result, err = s.voice.EndConversation(r.Context(), req.ConversationID)
	}
	if err != nil {
		c.fail(w, r, providers.Fault(voice.ProviderName, err))
		return
	}

	c.finish(r, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, successEnvelope{
		Success:   true,
		Data:      result,
		Action:    string(req.Action),
		Timestamp: timestamp(),
	})
}

// requireFields enforces the per-action field contract the schema
// cannot express.
func (req *conversationRequest) requireFields() error {
	var missing []string
	switch req.Action {
	case actionStart:
		if req.AgentID == "" {
			missing = append(missing, "agentId")
		}
	case actionSend:
		if req.ConversationID == "" {
			missing = append(missing, "conversationId")
		}
		if req.Message == "" {
			missing = append(missing, "message")
		}
	case actionEnd:
		if req.ConversationID == "" {
			missing = append(missing, "conversationId")
		}
	}
	if len(missing) > 0 {
		return fault.Validation(fmt.Sprintf("action %q requires additional fields", req.Action), missing...)
	}
	return nil
}
