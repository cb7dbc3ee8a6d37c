package observe

import (
	"net/http"
	"time"
)

// Middleware wraps HTTP handlers with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Handler() returns a thread-safe http.Handler.
//   - Context: propagates context through tracing spans.
//   - Errors: a 5xx response is recorded as an error on the span and metrics.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// statusRecorder captures the response status for telemetry.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler wraps next with one span, one metrics sample and one log line
// per request.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := CallMeta{
			Endpoint: r.URL.Path,
			Method:   r.Method,
		}

		ctx, span := m.tracer.StartSpan(r.Context(), meta)
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)

		var reqErr error
		if rec.status >= 500 {
			reqErr = &statusError{status: rec.status}
		}

		m.tracer.EndSpan(span, reqErr)
		m.metrics.RecordRequest(ctx, meta, duration, reqErr)

		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "status", Value: rec.status},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if reqErr != nil {
			callLogger.Error(ctx, "request failed", fields...)
		} else {
			callLogger.Info(ctx, "request completed", fields...)
		}
	})
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return http.StatusText(e.status)
}
