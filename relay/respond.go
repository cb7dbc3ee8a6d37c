package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/n-chekan/ialla-api/auth"
	"github.com/n-chekan/ialla-api/fault"
	"github.com/n-chekan/ialla-api/observe"
)

// successEnvelope is the wire form of every successful response.
type successEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Action    string `json:"action,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// pagination summarizes a list window for the caller.
type pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// listEnvelope is the wire form of a paginated list response.
type listEnvelope struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
	Timestamp  string     `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{
		Success:   true,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	fe := fault.From(err)
	writeJSON(w, fe.Kind.Status(), fault.NewEnvelope(fe, time.Now(), s.development))
}

// logError reports a request failure to the structured log; the
// call-log record is written separately by the handler.
func (s *Server) logError(r *http.Request, err error) {
	fe := fault.From(err)
	s.log.Error(r.Context(), "request failed",
		observe.Field{Key: "endpoint", Value: r.URL.Path},
		observe.Field{Key: "method", Value: r.Method},
		observe.Field{Key: "kind", Value: string(fe.Kind)},
		observe.Field{Key: "error", Value: fe.Error()},
	)
}

// authFault maps authenticator sentinels onto the error taxonomy.
func authFault(err error) error {
	switch {
	case errors.Is(err, auth.ErrNoCredential):
		return fault.Authentication("no credential provided")
	case errors.Is(err, auth.ErrInvalidKey):
		return fault.Authentication("invalid key")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenMalformed):
		return fault.Authentication("invalid or expired token")
	default:
		return fault.Authentication("invalid or expired token")
	}
}
