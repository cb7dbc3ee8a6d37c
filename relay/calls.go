package relay

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/n-chekan/ialla-api/calllog"
	"github.com/n-chekan/ialla-api/fault"
)

// call tracks one request through the pipeline and guarantees that
// exactly one call-log record is written for it, whatever path it
// takes to a terminal state.
type call struct {
	server    *Server
	sessionID string
	service   string
	endpoint  string
	method    string
	summary   string
	start     time.Time
	done      bool
}

// begin opens call bookkeeping for a request against the named
// upstream service.
func (s *Server) begin(r *http.Request, service string) *call {
	return &call{
		server:    s,
		sessionID: uuid.NewString(),
		service:   service,
		endpoint:  r.URL.Path,
		method:    r.Method,
		start:     time.Now(),
	}
}

// describe records a short requestSummary once the payload is known.
// Credentials and raw content never belong here.
func (c *call) describe(summary string) {
	c.summary = summary
}

// finish writes the single call-log record for this request. Later
// calls are ignored, so a handler may fail early and still fall
// through shared cleanup safely.
func (c *call) finish(r *http.Request, status int, err error) {
	if c.done {
		return
	}
	c.done = true

	rec := calllog.Record{
		SessionID:      c.sessionID,
		Service:        c.service,
		Endpoint:       c.endpoint,
		Method:         c.method,
		RequestSummary: c.summary,
		Status:         status,
		DurationMS:     time.Since(c.start).Milliseconds(),
	}
	if err != nil {
		rec.ErrorMessage = fault.From(err).Error()
	}
	c.server.callLog.Record(r.Context(), rec)
}

// fail resolves a request as the given error: one call-log record,
// one structured log line, one error envelope.
func (c *call) fail(w http.ResponseWriter, r *http.Request, err error) {
	fe := fault.From(err)
	c.finish(r, fe.Kind.Status(), fe)
	c.server.logError(r, fe)
	c.server.writeError(w, fe)
}
