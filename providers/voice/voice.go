// Package voice wraps the conversational-voice API: agent
// conversations and text-to-speech synthesis.
package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/n-chekan/ialla-api/providers"
)

// ProviderName identifies this adapter in errors and call logs.
const ProviderName = "elevenlabs"

// MaxSynthesisChars is the longest text accepted for synthesis.
const MaxSynthesisChars = 5000

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("voice: missing API key")

// ErrTextLength is returned for synthesis text outside 1..5000 chars.
var ErrTextLength = errors.New("voice: text must be between 1 and 5000 characters")

// Config holds the settings for the voice client.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the voice API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a voice client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.elevenlabs.io"
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 60 * time.Second}
	}
	return c, nil
}

// Conversation is the state of an agent conversation.
type Conversation struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Reply is the agent's answer to one message.
type Reply struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	AudioReference string `json:"audio_reference,omitempty"`
}

// StartConversation opens a conversation with the given agent.
func (c *Client) StartConversation(ctx context.Context, agentID string) (*Conversation, error) {
	payload := map[string]string{"agent_id": agentID}
	var conv Conversation
	if err := c.postJSON(ctx, "/v1/convai/conversations", payload, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// SendMessage sends one user message into an open conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID, message string) (*Reply, error) {
	path := "/v1/convai/conversations/" + url.PathEscape(conversationID) + "/messages"
	payload := map[string]string{"text": message}
	var reply Reply
	if err := c.postJSON(ctx, path, payload, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// EndConversation closes a conversation and returns its final state.
func (c *Client) EndConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	path := "/v1/convai/conversations/" + url.PathEscape(conversationID) + "/end"
	var conv Conversation
	if err := c.postJSON(ctx, path, struct{}{}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Settings tunes the synthesized voice.
type Settings struct {
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
}

// SynthesisRequest asks for speech audio for a piece of text.
type SynthesisRequest struct {
	Text     string
	VoiceID  string
	Settings *Settings
}

// Synthesis is the normalized result of a synthesis call. The audio is
// carried as a data URL so callers can hand it straight to a client.
type Synthesis struct {
	AudioReference string  `json:"audioReference"`
	Duration       float64 `json:"duration"`
}

// Synthesize converts text to speech with the given voice.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (*Synthesis, error) {
	n := utf8.RuneCountInString(req.Text)
	if n < 1 || n > MaxSynthesisChars {
		return nil, ErrTextLength
	}

	payload := struct {
		Text     string    `json:"text"`
		Settings *Settings `json:"voice_settings,omitempty"`
	}{Text: req.Text, Settings: req.Settings}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("voice: encode request: %w", err)
	}

	path := "/v1/text-to-speech/" + url.PathEscape(req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("voice: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providers.NewUpstreamError(ProviderName, resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voice: read audio: %w", err)
	}

	return &Synthesis{
		AudioReference: "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio),
		Duration:       estimateDuration(req.Text),
	}, nil
}

// estimateDuration approximates spoken length from text size; the API
// does not report one.
func estimateDuration(text string) float64 {
	const charsPerSecond = 15.0
	return float64(utf8.RuneCountInString(text)) / charsPerSecond
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("voice: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("voice: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return providers.NewUpstreamError(ProviderName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("voice: decode response: %w", err)
	}
	return nil
}
