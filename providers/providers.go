package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/n-chekan/ialla-api/fault"
)

// maxErrorBody caps how much of an upstream error body is retained.
const maxErrorBody = 2048

// UpstreamError describes a non-success response from an external API.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NewUpstreamError builds an UpstreamError from an HTTP response,
// consuming (a bounded prefix of) its body.
func NewUpstreamError(provider string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// Fault maps an adapter failure into the relay error taxonomy: an
// upstream 429 becomes a rate-limit error, everything else an
// external-provider error attributed to the named provider.
func Fault(provider string, err error) *fault.Error {
	if err == nil {
		return nil
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests {
		return fault.RateLimit(fmt.Sprintf("%s rate limit exceeded", provider))
	}
	return fault.External(provider, err)
}
