// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file when one exists, otherwise from
// ACTUATE_* environment variables and defaults.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/artpar/actuate/adapters/clock"
	"github.com/artpar/actuate/adapters/endpoints"
	apihttp "github.com/artpar/actuate/adapters/http"
	"github.com/artpar/actuate/adapters/idgen"
	"github.com/artpar/actuate/adapters/metrics"
	"github.com/artpar/actuate/adapters/tracing"
	"github.com/artpar/actuate/app"
	"github.com/artpar/actuate/config"
	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/link"
	"github.com/artpar/actuate/ports"
)

// EnvConfigPath names the config file when no path is given explicitly.
const EnvConfigPath = "ACTUATE_CONFIG"

// DefaultConfigPath is used when neither a path nor EnvConfigPath is set.
const DefaultConfigPath = "actuate.yaml"

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	HTTPServer *http.Server
	Router     chi.Router
	Management *apihttp.Management
	Registry   *endpoint.Registry[ports.Endpoint]

	// Metrics is nil when metrics are disabled. Gatherer always exists so
	// the metrics endpoints have something to report.
	Metrics  *metrics.Collector
	Gatherer *prometheus.Registry
	Tracing  *tracing.Provider

	Health *endpoints.Health
	Trace  *endpoints.Trace

	enhancer *app.Enhancer
	links    *app.LinksEndpoint
	browser  *apihttp.Browser
	info     *endpoints.Info
	builtins map[string]ports.Endpoint

	mu        sync.Mutex
	reloadErr error
}

// Options provides optional configuration for application initialization.
type Options struct {
	// ConfigPath is the YAML file to load. Empty falls back to
	// EnvConfigPath, then DefaultConfigPath. A missing file is not an
	// error: the environment and defaults are used instead.
	ConfigPath string
	// LogOutput receives log lines; nil means os.Stdout.
	LogOutput io.Writer
	// Environ feeds the env endpoint; nil means os.Environ.
	Environ func() []string
}

// New creates and initializes the application.
func New() (*App, error) {
	return NewWithOptions(Options{})
}

// NewWithOptions creates and initializes the application with custom options.
func NewWithOptions(opts Options) (*App, error) {
	path := ResolveConfigPath(opts.ConfigPath)

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		return nil, err
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := setupLogger(cfg.Logging, out)
	logger.Info().Msg("initializing actuate")

	a := &App{Logger: logger}

	if _, statErr := os.Stat(path); statErr == nil {
		a.Config, err = config.NewHolder(path, logger)
		if err != nil {
			return nil, err
		}
		cfg = a.Config.Get()
		logger.Info().Str("path", a.Config.Path()).Msg("configuration loaded from file")
	} else {
		a.Config = config.NewStaticHolder(cfg, logger)
		logger.Info().Msg("no config file, using environment and defaults")
	}

	a.Gatherer = metrics.NewRegistry()
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.NewWithRegistry(a.Gatherer)
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.Tracing, err = tracing.NewProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		SampleRate:  cfg.Tracing.SampleRate,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := a.initEndpoints(cfg, opts.Environ); err != nil {
		return nil, fmt.Errorf("init endpoints: %w", err)
	}

	if err := a.initHTTPServer(cfg); err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}

	a.Config.OnChange(a.apply)
	if a.Metrics != nil {
		a.Config.OnReload(a.Metrics.ConfigReloaded)
	}
	a.Config.OnReload(a.recordReload)

	return a, nil
}

// ResolveConfigPath picks the config file path: explicit, then
// EnvConfigPath, then DefaultConfigPath.
func ResolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return DefaultConfigPath
}

func (a *App) initEndpoints(cfg *config.Config, environ func() []string) error {
	m := cfg.Management

	paths := app.Paths{Links: m.LinksPath}
	if m.HALBrowserEnabled() {
		paths.HAL = m.HALPath
	}

	var observer ports.EnhanceObserver
	if a.Metrics != nil {
		observer = a.Metrics
	}
	a.enhancer = app.NewEnhancer(paths, observer, a.Logger)
	a.Registry = endpoint.NewRegistry[ports.Endpoint]()
	a.links = app.NewLinksEndpoint(a.enhancer, m.ContextPath, func() []endpoint.Descriptor {
		return a.Registry.Snapshot().Descriptors()
	})

	if m.HALBrowserEnabled() {
		root, err := link.Href(m.ContextPath, m.LinksPath)
		if err != nil {
			return err
		}
		browser, err := apihttp.NewBrowser(m.ContextPath, m.HALPath, root)
		if err != nil {
			return err
		}
		a.browser = browser
	}

	env := endpoints.NewEnv()
	if environ != nil {
		env = endpoints.NewEnvFrom(environ)
	}

	a.Health = endpoints.NewHealth()
	a.Health.AddCheck("config", endpoints.CheckerFunc(a.checkConfig))
	a.Trace = endpoints.NewTrace(cfg.Trace.Capacity)
	a.info = endpoints.NewInfo(cfg.Info)

	a.builtins = map[string]ports.Endpoint{
		config.EndpointHealth:      a.Health,
		config.EndpointInfo:        a.info,
		config.EndpointEnv:         env,
		config.EndpointMetrics:     endpoints.NewMetrics(a.Gatherer),
		config.EndpointTrace:       a.Trace,
		config.EndpointMappings:    endpoints.NewMappings(func() chi.Routes { return a.Router }),
		config.EndpointConfigProps: endpoints.NewConfigProps(a.Config.Get),
		config.EndpointPrometheus:  endpoints.NewPrometheus(a.Gatherer),
	}

	if err := a.Registry.Replace(a.entries(cfg)); err != nil {
		return err
	}
	a.setEndpointGauge()
	return nil
}

// entries lists the registry contents for cfg: the links endpoint first,
// the enabled built-ins in order, then the HAL browser.
func (a *App) entries(cfg *config.Config) []endpoint.Entry[ports.Endpoint] {
	out := []endpoint.Entry[ports.Endpoint]{{Descriptor: a.links.Descriptor(), Handler: a.links}}
	for _, d := range cfg.Descriptors() {
		out = append(out, endpoint.Entry[ports.Endpoint]{Descriptor: d, Handler: a.builtins[d.Type]})
	}
	if a.browser != nil {
		out = append(out, endpoint.Entry[ports.Endpoint]{Descriptor: a.browser.Descriptor(), Handler: a.browser})
	}
	return out
}

func (a *App) initHTTPServer(cfg *config.Config) error {
	mgmt, err := apihttp.NewManagement(apihttp.ManagementConfig{
		Registry:      a.Registry,
		Enhancer:      a.enhancer,
		ContextPath:   cfg.Management.ContextPath,
		AbsoluteLinks: cfg.Management.AbsoluteLinks,
		Tracer:        a.Tracing.Tracer(),
		Logger:        a.Logger,
	})
	if err != nil {
		return err
	}
	a.Management = mgmt

	a.Router = apihttp.NewRouter(mgmt, a.Logger, apihttp.RouterConfig{
		Metrics:        a.Metrics,
		Exchanges:      a.Trace,
		Clock:          clock.Real{},
		IDs:            idgen.UUID{},
		TraceHeaders:   cfg.Trace.Headers,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().
		Str("context_path", cfg.Management.ContextPath).
		Int("endpoints", a.Registry.Snapshot().Len()).
		Msg("management endpoints mounted")
	return nil
}

// apply pushes a reloaded configuration into the running components.
// Paths, the server address and the trace headers need a restart.
func (a *App) apply(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level)); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	a.info.Set(cfg.Info)
	a.Trace.Resize(cfg.Trace.Capacity)
	a.Management.SetAbsoluteLinks(cfg.Management.AbsoluteLinks)

	if err := a.Registry.Replace(a.entries(cfg)); err != nil {
		a.Logger.Error().Err(err).Msg("endpoint registry not updated")
		return
	}
	if err := a.Management.Rebuild(); err != nil {
		a.Logger.Error().Err(err).Msg("management routes not rebuilt")
		return
	}
	a.setEndpointGauge()

	a.Logger.Info().Int("endpoints", a.Registry.Snapshot().Len()).Msg("configuration applied")
}

func (a *App) setEndpointGauge() {
	if a.Metrics != nil {
		a.Metrics.EndpointsRegistered.Set(float64(a.Registry.Snapshot().Len()))
	}
}

func (a *App) recordReload(err error, _ time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reloadErr = err
}

// checkConfig fails while the last reload attempt failed.
func (a *App) checkConfig(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reloadErr != nil {
		return fmt.Errorf("last reload failed: %w", a.reloadErr)
	}
	return nil
}

// Reload re-reads the config file and applies it.
func (a *App) Reload() error {
	return a.Config.Reload()
}

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	if a.Config.Path() != "" {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch disabled")
		}
		a.Config.WatchSignals()
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// Flush pending spans
	if a.Tracing != nil {
		if err := a.Tracing.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
