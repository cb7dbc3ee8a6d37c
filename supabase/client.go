package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for client operations.
var (
	ErrMissingURL    = errors.New("supabase: URL is required")
	ErrMissingAPIKey = errors.New("supabase: API key is required")
	ErrUnauthorized  = errors.New("supabase: unauthorized")
	ErrNotFound      = errors.New("supabase: not found")
)

// Config holds client configuration.
type Config struct {
	// URL is the project base URL (https://<ref>.supabase.co).
	URL string

	// APIKey is the service-role or anon key sent as apikey header.
	APIKey string

	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
}

// Client is a Supabase REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Configured reports whether the client has a usable endpoint.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Response holds the raw result of a REST call.
type Response struct {
	StatusCode int
	Data       []byte
	// Count is the exact row count when requested, else -1.
	Count int64
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Data: body, Count: -1}
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		// Format: 0-24/3573
		if idx := strings.LastIndex(cr, "/"); idx >= 0 && cr[idx+1:] != "*" {
			if n, err := strconv.ParseInt(cr[idx+1:], 10, 64); err == nil {
				out.Count = n
			}
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return out, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return out, ErrNotFound
	case resp.StatusCode >= 400:
		return out, fmt.Errorf("supabase: status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// User is the subset of the GoTrue user record the relay needs.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetUser resolves the user behind an access token via GET /auth/v1/user.
// An invalid or expired token returns ErrUnauthorized.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("supabase: decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// From starts a query builder for a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

// QueryBuilder builds PostgREST queries against one table.
type QueryBuilder struct {
	client     *Client
	table      string
	columns    string
	filters    [][2]string
	order      string
	limit      int
	offset     int
	single     bool
	exactCount bool
}

// Select specifies columns to select.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, [2]string{column, fmt.Sprintf("eq.%v", value)})
	return q
}

// Order adds an ORDER BY clause.
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = column + "." + dir
	return q
}

// Limit sets the LIMIT.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Offset sets the OFFSET.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Single expects exactly one row.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// ExactCount requests the exact row count in the response.
func (q *QueryBuilder) ExactCount() *QueryBuilder {
	q.exactCount = true
	return q
}

// Execute runs a SELECT.
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)

	params := make([]string, 0, len(q.filters)+4)
	if q.columns != "" {
		params = append(params, "select="+q.columns)
	}
	for _, f := range q.filters {
		params = append(params, f[0]+"="+f[1])
	}
	if q.order != "" {
		params = append(params, "order="+q.order)
	}
	if q.limit > 0 {
		params = append(params, fmt.Sprintf("limit=%d", q.limit))
	}
	if q.offset > 0 {
		params = append(params, fmt.Sprintf("offset=%d", q.offset))
	}
	if len(params) > 0 {
		reqURL += "?" + strings.Join(params, "&")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}

	q.client.setHeaders(req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if q.exactCount {
		req.Header.Set("Prefer", "count=exact")
	}

	return q.client.do(req)
}

// Insert runs an INSERT returning the created representation.
func (q *QueryBuilder) Insert(ctx context.Context, record any) (*Response, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)

	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("supabase: marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}

	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	return q.client.do(req)
}
