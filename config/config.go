// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/artpar/actuate/domain/endpoint"
)

// Built-in endpoint types, in the order they are registered.
const (
	EndpointHealth      = "health"
	EndpointInfo        = "info"
	EndpointEnv         = "env"
	EndpointMetrics     = "metrics"
	EndpointTrace       = "trace"
	EndpointMappings    = "mappings"
	EndpointConfigProps = "configprops"
	EndpointPrometheus  = "prometheus"
)

// EndpointTypes lists the built-in endpoints in registration order.
func EndpointTypes() []string {
	return []string{
		EndpointHealth,
		EndpointInfo,
		EndpointEnv,
		EndpointMetrics,
		EndpointTrace,
		EndpointMappings,
		EndpointConfigProps,
		EndpointPrometheus,
	}
}

var sensitiveByDefault = map[string]bool{
	EndpointEnv:         true,
	EndpointTrace:       true,
	EndpointConfigProps: true,
}

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig              `yaml:"server" json:"server"`
	Management ManagementConfig          `yaml:"management" json:"management"`
	Endpoints  map[string]EndpointConfig `yaml:"endpoints" json:"endpoints"`
	Info       map[string]any            `yaml:"info" json:"info"`
	Trace      TraceConfig               `yaml:"trace" json:"trace"`
	Logging    LoggingConfig             `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig             `yaml:"metrics" json:"metrics"`
	Tracing    TracingConfig             `yaml:"tracing" json:"tracing"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ManagementConfig configures where management endpoints live.
type ManagementConfig struct {
	// ContextPath prefixes every management path ("" or "/admin").
	ContextPath string `yaml:"context_path" json:"context_path"`
	// LinksPath is where the root links resource is served, relative to
	// ContextPath. "" serves it at the context path itself.
	LinksPath string `yaml:"links_path" json:"links_path"`
	// HALPath is where the HAL browser is served.
	HALPath string `yaml:"hal_path" json:"hal_path"`
	// HALEnabled toggles the HAL browser (default true).
	HALEnabled *bool `yaml:"hal_enabled,omitempty" json:"hal_enabled,omitempty"`
	// AbsoluteLinks prefixes hrefs with the request origin.
	AbsoluteLinks bool `yaml:"absolute_links" json:"absolute_links"`
}

// HALBrowserEnabled reports whether the HAL browser is served.
func (m ManagementConfig) HALBrowserEnabled() bool {
	return m.HALEnabled == nil || *m.HALEnabled
}

// EndpointConfig customizes a built-in endpoint.
type EndpointConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
	Sensitive *bool  `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`
}

// TraceConfig configures the HTTP exchange trace.
type TraceConfig struct {
	Capacity int      `yaml:"capacity" json:"capacity"`
	Headers  []string `yaml:"headers" json:"headers"` // request headers to record
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" json:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Exporter    string  `yaml:"exporter" json:"exporter"` // "stdout" or "none"
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration from defaults and environment variables.
//
// Environment variables:
//
//	ACTUATE_SERVER_HOST             - Server host (default: 0.0.0.0)
//	ACTUATE_SERVER_PORT             - Server port (default: 8081)
//	ACTUATE_MANAGEMENT_CONTEXT_PATH - Prefix of every management path (default: "")
//	ACTUATE_MANAGEMENT_LINKS_PATH   - Root links path (default: "")
//	ACTUATE_MANAGEMENT_HAL_PATH     - HAL browser path (default: /hal)
//	ACTUATE_MANAGEMENT_HAL_ENABLED  - Serve the HAL browser (default: true)
//	ACTUATE_MANAGEMENT_ABSOLUTE     - Absolute hrefs (default: false)
//	ACTUATE_TRACE_CAPACITY          - Recorded exchanges (default: 100)
//	ACTUATE_LOG_LEVEL               - debug, info, warn, error (default: info)
//	ACTUATE_LOG_FORMAT              - json or console (default: json)
//	ACTUATE_METRICS_ENABLED         - Collect request metrics (default: false)
//	ACTUATE_TRACING_ENABLED         - OpenTelemetry spans (default: false)
//	ACTUATE_TRACING_EXPORTER        - stdout or none (default: none)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads from file when it exists, otherwise from the
// environment and defaults.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// Descriptors returns the enabled endpoints in registration order.
func (c *Config) Descriptors() []endpoint.Descriptor {
	var out []endpoint.Descriptor
	for _, t := range EndpointTypes() {
		d, enabled := c.Endpoint(t)
		if enabled {
			out = append(out, d)
		}
	}
	return out
}

// Endpoint resolves the descriptor for a built-in endpoint type and whether
// it is enabled.
func (c *Config) Endpoint(t string) (endpoint.Descriptor, bool) {
	ec := c.Endpoints[t]
	d := endpoint.Descriptor{
		Path:      "/" + t,
		Type:      t,
		Sensitive: sensitiveByDefault[t],
	}
	if ec.Path != "" {
		d.Path = ec.Path
	}
	if ec.Sensitive != nil {
		d.Sensitive = *ec.Sensitive
	}
	return d, ec.Enabled == nil || *ec.Enabled
}

// applyEnvOverrides applies ACTUATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ACTUATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ACTUATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ACTUATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("ACTUATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Management paths
	if v, ok := os.LookupEnv("ACTUATE_MANAGEMENT_CONTEXT_PATH"); ok {
		cfg.Management.ContextPath = v
	}
	if v, ok := os.LookupEnv("ACTUATE_MANAGEMENT_LINKS_PATH"); ok {
		cfg.Management.LinksPath = v
	}
	if v := os.Getenv("ACTUATE_MANAGEMENT_HAL_PATH"); v != "" {
		cfg.Management.HALPath = v
	}
	if v := os.Getenv("ACTUATE_MANAGEMENT_HAL_ENABLED"); v != "" {
		enabled := parseBool(v)
		cfg.Management.HALEnabled = &enabled
	}
	if v := os.Getenv("ACTUATE_MANAGEMENT_ABSOLUTE"); v != "" {
		cfg.Management.AbsoluteLinks = parseBool(v)
	}

	if v := os.Getenv("ACTUATE_TRACE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Trace.Capacity = n
		}
	}

	if v := os.Getenv("ACTUATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ACTUATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("ACTUATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv("ACTUATE_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("ACTUATE_TRACING_EXPORTER"); v != "" {
		cfg.Tracing.Exporter = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}

	if cfg.Management.HALPath == "" {
		cfg.Management.HALPath = "/hal"
	}

	if cfg.Trace.Capacity == 0 {
		cfg.Trace.Capacity = 100
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "none"
	}
	if cfg.Tracing.SampleRate == 0 {
		cfg.Tracing.SampleRate = 1.0
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "actuate"
	}
}

// validate reports every problem at once.
func validate(cfg *Config) error {
	var errs error

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port))
	}

	m := cfg.Management
	if m.ContextPath != "" && (!strings.HasPrefix(m.ContextPath, "/") || strings.HasSuffix(m.ContextPath, "/")) {
		errs = multierr.Append(errs, fmt.Errorf("management.context_path must start with / and not end with /, got %q", m.ContextPath))
	}
	if m.LinksPath != "" && !strings.HasPrefix(m.LinksPath, "/") {
		errs = multierr.Append(errs, fmt.Errorf("management.links_path must start with /, got %q", m.LinksPath))
	}
	if !strings.HasPrefix(m.HALPath, "/") {
		errs = multierr.Append(errs, fmt.Errorf("management.hal_path must start with /, got %q", m.HALPath))
	}

	known := make(map[string]bool)
	for _, t := range EndpointTypes() {
		known[t] = true
	}
	for t := range cfg.Endpoints {
		if !known[t] {
			errs = multierr.Append(errs, fmt.Errorf("endpoints.%s: unknown endpoint", t))
		}
	}

	claimed := map[string]string{m.LinksPath: "management.links_path"}
	if m.HALBrowserEnabled() {
		claimed[m.HALPath] = "management.hal_path"
	}
	for _, d := range cfg.Descriptors() {
		if err := d.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoints.%s.path: %w", d.Type, err))
			continue
		}
		if d.Path == "/self" {
			errs = multierr.Append(errs, fmt.Errorf("endpoints.%s.path: /self is reserved", d.Type))
		}
		if owner, dup := claimed[d.Path]; dup {
			errs = multierr.Append(errs, fmt.Errorf("endpoints.%s.path %q already used by %s", d.Type, d.Path, owner))
			continue
		}
		claimed[d.Path] = "endpoints." + d.Type
	}

	if cfg.Trace.Capacity < 0 {
		errs = multierr.Append(errs, fmt.Errorf("trace.capacity must not be negative, got %d", cfg.Trace.Capacity))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = multierr.Append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		errs = multierr.Append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format))
	}

	if cfg.Tracing.Exporter != "stdout" && cfg.Tracing.Exporter != "none" {
		errs = multierr.Append(errs, fmt.Errorf("tracing.exporter must be 'stdout' or 'none', got %q", cfg.Tracing.Exporter))
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = multierr.Append(errs, fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", cfg.Tracing.SampleRate))
	}

	return errs
}
