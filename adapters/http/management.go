package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/artpar/actuate/app"
	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/link"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// ManagementConfig configures the management handler.
type ManagementConfig struct {
	Registry      *endpoint.Registry[ports.Endpoint]
	Enhancer      *app.Enhancer
	ContextPath   string
	AbsoluteLinks bool
	// Tracer is optional; nil means no spans.
	Tracer trace.Tracer
	Logger zerolog.Logger
}

// Management routes requests below the context path to the registered
// endpoints. The routes are rebuilt from a registry snapshot; requests in
// flight keep the routes they started with.
type Management struct {
	registry    *endpoint.Registry[ports.Endpoint]
	enhancer    *app.Enhancer
	contextPath string
	tracer      trace.Tracer
	logger      zerolog.Logger

	absolute atomic.Bool
	mux      atomic.Pointer[chi.Mux]
}

// locator is implemented by the HAL browser.
type locator interface {
	Location() string
}

// NewManagement creates the handler and builds routes for the current
// registry snapshot.
func NewManagement(cfg ManagementConfig) (*Management, error) {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	m := &Management{
		registry:    cfg.Registry,
		enhancer:    cfg.Enhancer,
		contextPath: strings.TrimRight(cfg.ContextPath, "/"),
		tracer:      tracer,
		logger:      cfg.Logger,
	}
	m.absolute.Store(cfg.AbsoluteLinks)
	if err := m.Rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// ContextPath returns the path the handler is mounted at.
func (m *Management) ContextPath() string {
	return m.contextPath
}

// SetAbsoluteLinks switches between root-relative and absolute hrefs.
func (m *Management) SetAbsoluteLinks(on bool) {
	m.absolute.Store(on)
}

// Rebuild replaces the routes with ones built from the current registry
// snapshot. On error the previous routes stay in place.
func (m *Management) Rebuild() error {
	mux, err := m.build(m.registry.Snapshot())
	if err != nil {
		return err
	}
	m.mux.Store(mux)
	m.logger.Debug().Int("endpoints", m.registry.Snapshot().Len()).Msg("management routes rebuilt")
	return nil
}

func (m *Management) build(snap *endpoint.Snapshot[ports.Endpoint]) (mux *chi.Mux, err error) {
	// chi panics on patterns it cannot route.
	defer func() {
		if p := recover(); p != nil {
			mux, err = nil, fmt.Errorf("mount endpoints: %v", p)
		}
	}()

	mux = chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		e := hal.ErrNotFound("endpoint")
		e.Path = r.URL.Path
		_ = hal.WriteError(w, e)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		e := hal.NewError(http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed").
			Detailf("%s is not supported", r.Method).
			Path(r.URL.Path).
			Build()
		_ = hal.WriteError(w, e)
	})

	browser := ""
	for _, e := range snap.Entries() {
		if l, ok := e.Handler.(locator); ok && e.Descriptor.Type == TypeHAL {
			browser = l.Location()
		}
	}

	for _, e := range snap.Entries() {
		m.mount(mux, e, browser)
	}
	return mux, nil
}

func (m *Management) mount(mux chi.Router, e endpoint.Entry[ports.Endpoint], browser string) {
	pattern := e.Descriptor.Path
	if pattern == "" {
		pattern = "/"
	}

	if h, ok := e.Handler.(http.Handler); ok {
		mux.Handle(pattern, h)
		mux.Handle(strings.TrimRight(pattern, "/")+"/*", h)
		return
	}

	enhance := enhanceMiddleware(enhanceOptions{
		Enhancer:    m.enhancer,
		Descriptor:  e.Descriptor,
		ContextPath: m.contextPath,
		Tracer:      m.tracer,
		Origin:      m.origin,
	})

	h := m.serve(Chain(m.invoke(e.Handler), enhance))
	if e.Descriptor.Type == app.TypeLinks && browser != "" {
		h = redirectHTML(browser, h)
	}
	mux.Get(pattern, h)

	if item, ok := e.Handler.(ports.ItemEndpoint); ok {
		mux.Get(strings.TrimRight(pattern, "/")+"/{name}", m.serve(Chain(m.item(item), enhance)))
	}
}

func (m *Management) invoke(ep ports.Endpoint) Handler {
	return func(r *http.Request) (Response, error) {
		v, err := ep.Invoke(r.Context(), m.request(r))
		if err != nil {
			return Response{}, err
		}
		return plain(v), nil
	}
}

func (m *Management) item(ep ports.ItemEndpoint) Handler {
	return func(r *http.Request) (Response, error) {
		req := m.request(r)
		v, err := ep.Item(r.Context(), req, req.Param("name"))
		if err != nil {
			return Response{}, err
		}
		return plain(v), nil
	}
}

func (m *Management) request(r *http.Request) ports.Request {
	req := ports.Request{
		Path:   link.StripContext(r.URL.Path, m.contextPath),
		Origin: m.origin(r),
	}
	if name := chi.URLParam(r, "name"); name != "" {
		req.Params = map[string]string{"name": name}
	}
	return req
}

func (m *Management) origin(r *http.Request) string {
	if !m.absolute.Load() {
		return ""
	}
	return RequestOrigin(r)
}

// serve writes the handler's response, or its error as an error document.
func (m *Management) serve(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h(r)
		if err != nil {
			e := hal.ErrFromError(err)
			e.Path = r.URL.Path
			if e.Status >= http.StatusInternalServerError {
				m.logger.Error().Err(err).Str("path", r.URL.Path).Msg("endpoint failed")
			} else {
				m.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", e.Status).Msg("endpoint error")
			}
			_ = hal.WriteError(w, e)
			return
		}

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		ct := resp.ContentType
		if ct == "" {
			ct = hal.JSONContentType
		}
		if err := hal.Write(w, ct, status, resp.Body); err != nil {
			m.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response")
		}
	}
}

// redirectHTML sends clients that prefer HTML to the HAL browser.
func redirectHTML(location string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsHTML(r.Header.Get("Accept")) {
			http.Redirect(w, r, location, http.StatusFound)
			return
		}
		next(w, r)
	}
}

// RequestOrigin returns scheme://host for r, honoring X-Forwarded-Proto.
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host
}

// ServeHTTP implements http.Handler.
func (m *Management) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.Load().ServeHTTP(w, r)
}

// Routes implements chi.Routes so chi.Walk sees the endpoint routes.
func (m *Management) Routes() []chi.Route {
	return m.mux.Load().Routes()
}

// Middlewares implements chi.Routes.
func (m *Management) Middlewares() chi.Middlewares {
	return m.mux.Load().Middlewares()
}

// Match implements chi.Routes.
func (m *Management) Match(rctx *chi.Context, method, path string) bool {
	return m.mux.Load().Match(rctx, method, path)
}

// Find implements chi.Routes.
func (m *Management) Find(rctx *chi.Context, method, path string) string {
	return m.mux.Load().Find(rctx, method, path)
}
