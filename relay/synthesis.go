package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/providers"
	"github.com/n-chekan/ialla-api/providers/voice"
)

type synthesisRequest struct {
	Text     string          `json:"text"`
	VoiceID  string          `json:"voiceId"`
	Settings *voice.Settings `json:"settings,omitempty"`
}

// handleSynthesis converts text to speech. Identical text and voice
// settings produce identical audio, so results are cached; a provider
// failure is surfaced, not masked.
func (s *Server) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, voice.ProviderName)

	identity, err := s.authenticate(r, s.auth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req synthesisRequest
	if err := decodeValid(r, synthesisValidator, &req); err != nil {
		c.fail(w, r, err)
		return
	}
	c.describe(fmt.Sprintf("user=%s voice=%s chars=%d", identity.Principal, req.VoiceID, len(req.Text)))

	if s.voice == nil {
		c.fail(w, r, providers.Fault(voice.ProviderName, errVoiceNotConfigured))
		return
	}

	payload := map[string]any{
		"text":     req.Text,
		"voiceId":  req.VoiceID,
		"settings": req.Settings,
	}
	value, _, err := s.cache.Do(r.Context(), cache.NamespaceVoice, payload, func(ctx context.Context) ([]byte, error) {
		synthesis, err := s.voice.Synthesize(ctx, voice.SynthesisRequest{
			Text:     req.Text,
			VoiceID:  req.VoiceID,
			Settings: req.Settings,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(synthesis)
	})
	if err != nil {
		c.fail(w, r, providers.Fault(voice.ProviderName, err))
		return
	}

	var synthesis voice.Synthesis
	if err := json.Unmarshal(value, &synthesis); err != nil {
		c.fail(w, r, fmt.Errorf("decode cached synthesis: %w", err))
		return
	}

	c.finish(r, http.StatusOK, nil)
	s.writeSuccess(w, http.StatusOK, &synthesis)
}
