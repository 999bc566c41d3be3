package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a matched route in a span and records request metrics
// labelled with the route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		ctx := r.Context()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if s.tracer == nil {
			next.ServeHTTP(rec, r)
		} else {
			var span trace.Span
			ctx, span = s.tracer.StartSpan(s.tracer.Extract(ctx, propagation.HeaderCarrier(r.Header)), r.Method+" "+route)
			next.ServeHTTP(rec, r.WithContext(ctx))
			s.tracer.SetAttributes(span, map[string]interface{}{
				"http.method":      r.Method,
				"http.route":       route,
				"http.status_code": rec.status,
			})
			if rec.status >= http.StatusInternalServerError {
				s.tracer.RecordErrorOnSpan(span, errors.New(http.StatusText(rec.status)))
			}
			span.End()
		}

		if s.metrics != nil {
			s.metrics.IncrementRequests(strconv.Itoa(rec.status))
			s.metrics.RecordRequestDuration(start, route)
		}
		s.logger.DebugWithContext(ctx, "Handled request", nil, map[string]interface{}{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}
