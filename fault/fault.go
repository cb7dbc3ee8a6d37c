package fault

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindAuthentication   Kind = "authentication"
	KindAuthorization    Kind = "authorization"
	KindNotFound         Kind = "not_found"
	KindRateLimit        Kind = "rate_limit"
	KindExternalProvider Kind = "external_provider"
	KindInternal         Kind = "internal"
)

// Status returns the fixed HTTP status for a kind.
// Unknown kinds map to 500.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindExternalProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code string for a kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindRateLimit:
		return "RATE_LIMIT_EXCEEDED"
	case KindExternalProvider:
		return "EXTERNAL_PROVIDER_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is the single tagged error type carried through the relay.
// Kind is the discriminant; Fields is populated for validation faults only.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

// Error returns the message, prefixed with the kind.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation fault listing the violated fields.
func Validation(msg string, fields ...string) *Error {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)
	if len(sorted) > 0 {
		msg = msg + ": " + strings.Join(sorted, ", ")
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: sorted}
}

// Authentication creates an authentication fault.
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Authorization creates an authorization fault.
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NotFound creates a not-found fault.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// RateLimit creates a rate-limit fault.
func RateLimit(msg string) *Error {
	return &Error{Kind: KindRateLimit, Message: msg}
}

// External creates an external-provider fault naming the provider.
func External(provider string, err error) *Error {
	return &Error{
		Kind:    KindExternalProvider,
		Message: fmt.Sprintf("%s request failed", provider),
		Err:     err,
	}
}

// Internal wraps an unclassified failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// From classifies an arbitrary error. A *Error passes through unchanged;
// anything else becomes KindInternal.
func From(err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return Internal(err)
}

// Envelope is the wire form of an error response.
type Envelope struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

// genericInternalMessage replaces internal detail outside development.
const genericInternalMessage = "an unexpected error occurred"

// NewEnvelope serializes err for the caller. Outside development mode the
// message of an internal fault is replaced to avoid leaking detail.
func NewEnvelope(err error, now time.Time, development bool) Envelope {
	fe := From(err)

	msg := fe.Message
	if fe.Kind == KindInternal && !development {
		msg = genericInternalMessage
	} else if development && fe.Err != nil {
		msg = fmt.Sprintf("%s: %v", fe.Message, fe.Err)
	}

	return Envelope{
		Error:     string(fe.Kind),
		Message:   msg,
		Code:      fe.Kind.Code(),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
