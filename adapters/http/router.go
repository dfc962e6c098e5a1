// Package http serves the management endpoints over HTTP.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/artpar/actuate/adapters/metrics"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	Metrics *metrics.Collector

	// Exchanges records every request for the trace endpoint.
	Exchanges ports.ExchangeRecorder
	Clock     ports.Clock
	IDs       ports.IDGenerator
	// TraceHeaders are the request headers copied into recorded exchanges.
	TraceHeaders []string

	// RequestTimeout bounds each request; zero disables the timeout.
	RequestTimeout time.Duration
}

// NewRouter creates the HTTP router with the management handler mounted at
// its context path.
func NewRouter(mgmt *Management, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}
	if cfg.Exchanges != nil {
		r.Use(NewExchangeMiddleware(cfg.Exchanges, cfg.Clock, cfg.IDs, cfg.TraceHeaders))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		e := hal.ErrNotFound("resource")
		e.Path = req.URL.Path
		_ = hal.WriteError(w, e)
	})

	mountPath := mgmt.ContextPath()
	if mountPath == "" {
		mountPath = "/"
	}
	r.Mount(mountPath, mgmt)

	return r
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware creates middleware that records request metrics.
// Requests are labelled with their route pattern, not the raw path.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := statusLabel(ww.Status())
			endpoint := routeLabel(r)

			m.RequestsTotal.WithLabelValues(r.Method, endpoint, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, endpoint, status).Observe(duration)
		})
	}
}

// NewExchangeMiddleware records each request and its outcome.
func NewExchangeMiddleware(rec ports.ExchangeRecorder, clock ports.Clock, ids ports.IDGenerator, headers []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clock.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			ex := ports.Exchange{
				ID:        ids.New(),
				Timestamp: start,
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    ww.Status(),
				Duration:  clock.Now().Sub(start),
				RequestID: middleware.GetReqID(r.Context()),
			}
			for _, h := range headers {
				if v := r.Header.Get(h); v != "" {
					if ex.Headers == nil {
						ex.Headers = make(map[string]string, len(headers))
					}
					ex.Headers[strings.ToLower(h)] = v
				}
			}
			rec.Record(ex)
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
