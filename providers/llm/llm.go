// Package llm wraps the chat-completion API used for text analysis.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/n-chekan/ialla-api/providers"
)

// ProviderName identifies this adapter in errors and call logs.
const ProviderName = "openai"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// ErrEmptyCompletion is returned when the API answers with no choices.
var ErrEmptyCompletion = errors.New("llm: completion contained no choices")

// Config holds the settings for the completion client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client calls the chat-completion endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a completion client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.openai.com"
	}
	if c.model == "" {
		c.model = "gpt-4o-mini"
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 60 * time.Second}
	}
	return c, nil
}

// Message is one turn of a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest asks the model for one completion.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int

	// JSONResponse asks the model to emit a single JSON object.
	JSONResponse bool
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized result of a completion call.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}

type wireRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type wireResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete performs one chat-completion call.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	wire := wireRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONResponse {
		wire.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providers.NewUpstreamError(ProviderName, resp)
	}

	var out wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage:   out.Usage,
	}, nil
}
