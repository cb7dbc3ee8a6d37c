package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/n-chekan/ialla-api/cache"
	"github.com/n-chekan/ialla-api/observe"
	"github.com/n-chekan/ialla-api/providers"
	"github.com/n-chekan/ialla-api/providers/llm"
)

type analysisRequest struct {
	Messages          []llm.Message  `json:"messages"`
	UserProfile       map[string]any `json:"userProfile,omitempty"`
	StudyTopic        string         `json:"studyTopic,omitempty"`
	VocabularyContext string         `json:"vocabularyContext,omitempty"`
}

// Correction is one language fix proposed by the analysis.
type Correction struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

// Analysis is the structured result of analyzing a conversation.
type Analysis struct {
	Summary     string       `json:"summary"`
	KeyTopics   []string     `json:"keyTopics"`
	Corrections []Correction `json:"corrections"`
	Suggestions []string     `json:"suggestions"`
}

// defaultAnalysis is returned when the completion provider fails: the
// capability prefers availability over accuracy, so the caller gets a
// deterministic neutral result instead of an error.
func defaultAnalysis() *Analysis {
	return &Analysis{
		Summary:     "The conversation could not be analyzed right now. Keep practicing and try again later.",
		KeyTopics:   []string{},
		Corrections: []Correction{},
		Suggestions: []string{},
	}
}

var errLLMNotConfigured = errors.New("completion provider not configured")

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, llm.ProviderName)

	identity, err := s.authenticate(r, s.auth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req analysisRequest
	if err := decodeValid(r, analysisValidator, &req); err != nil {
		c.fail(w, r, err)
		return
	}
	c.describe(fmt.Sprintf("user=%s messages=%d topic=%q", identity.Principal, len(req.Messages), req.StudyTopic))

	payload := map[string]any{
		"messages":          req.Messages,
		"userProfile":       req.UserProfile,
		"studyTopic":        req.StudyTopic,
		"vocabularyContext": req.VocabularyContext,
	}
	value, _, err := s.cache.Do(r.Context(), cache.NamespaceAnalysis, payload, func(ctx context.Context) ([]byte, error) {
		analysis, err := s.analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis)
	})
	if err != nil {
		// Availability over accuracy: record the failure, answer with
		// the deterministic default. Nothing is cached on this path.
		c.finish(r, http.StatusOK, providers.Fault(llm.ProviderName, err))
		s.log.Warn(r.Context(), "analysis fallback engaged",
			observe.Field{Key: "error", Value: err.Error()},
		)
		s.writeSuccess(w, http.StatusOK, defaultAnalysis())
		return
	}

	var analysis Analysis
	if err := json.Unmarshal(value, &analysis); err != nil {
		c.finish(r, http.StatusOK, fmt.Errorf("decode cached analysis: %w", err))
		s.writeSuccess(w, http.StatusOK, defaultAnalysis())
		return
	}

	c.finish(r, http.StatusOK, nil)
	s.writeSuccess(w, http.StatusOK, &analysis)
}

func (s *Server) analyze(ctx context.Context, req analysisRequest) (*Analysis, error) {
	if s.llm == nil {
		return nil, errLLMNotConfigured
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: "system", Content: analysisPrompt(req)})
	messages = append(messages, req.Messages...)

	completion, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages:     messages,
		Temperature:  0.3,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(completion.Content), &analysis); err != nil {
		return nil, fmt.Errorf("completion was not valid analysis JSON: %w", err)
	}
	if analysis.KeyTopics == nil {
		analysis.KeyTopics = []string{}
	}
	if analysis.Corrections == nil {
		analysis.Corrections = []Correction{}
	}
	if analysis.Suggestions == nil {
		analysis.Suggestions = []string{}
	}
	return &analysis, nil
}

func analysisPrompt(req analysisRequest) string {
	var b strings.Builder
	b.WriteString("You are a language-learning coach. Analyze the conversation that follows ")
	b.WriteString("and respond with a single JSON object with the keys ")
	b.WriteString(`"summary" (string), "keyTopics" (array of strings), `)
	b.WriteString(`"corrections" (array of {original, corrected, explanation}) and `)
	b.WriteString(`"suggestions" (array of strings).`)
	if req.StudyTopic != "" {
		fmt.Fprintf(&b, " The learner is studying: %s.", req.StudyTopic)
	}
	if req.VocabularyContext != "" {
		fmt.Fprintf(&b, " Recently practiced vocabulary: %s.", req.VocabularyContext)
	}
	if len(req.UserProfile) > 0 {
		if profile, err := json.Marshal(req.UserProfile); err == nil {
			fmt.Fprintf(&b, " Learner profile: %s.", profile)
		}
	}
	return b.String()
}
