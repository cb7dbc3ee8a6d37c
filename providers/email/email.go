// Package email wraps the transactional-email API.
package email

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
const ProviderName = "resend"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("email: missing API key")

// Config holds the settings for the email client.
type Config struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// Client sends transactional email.
type Client struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// New creates an email client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		from:    cfg.From,
		client:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.resend.com"
	}
	if c.from == "" {
		c.from = "iAlla <noreply@ialla.app>"
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

// Message is one email to send.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Receipt is the provider's acknowledgement of an accepted message.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type wireMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one message. Every call is an independent provider
// request; identical messages are never de-duplicated.
func (c *Client) Send(ctx context.Context, msg Message) (*Receipt, error) {
	body, err := json.Marshal(wireMessage{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("email: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, providers.NewUpstreamError(ProviderName, resp)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("email: decode response: %w", err)
	}
	if receipt.Status == "" {
		receipt.Status = "sent"
	}
	return &receipt, nil
}
