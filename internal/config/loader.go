package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "GATEWAY_"
	configEnvVar = "CONFIG_PATH"
)

// Loader loads configuration from defaults, an optional file, and the environment.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader creates a Loader with its default search paths and env prefix.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/plcgateway/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load loads configuration with precedence (lowest to highest):
// 1. Defaults
// 2. Config file (yaml)
// 3. Environment variables
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		// Config file is optional.
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	// The original gateway's own tunables are also read under their
	// unprefixed, historical names (COMPACTLOGIX_IP, POLL_PERIOD, ...) per
	// §6; these take precedence over the GATEWAY_-namespaced equivalents
	// since they are the names operators of the prior service already use.
	if err := l.loadLegacyPLCEnv(); err != nil {
		return nil, fmt.Errorf("failed to load legacy plc env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "plc-gateway",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// HTTP
		"http.port":                   8080,
		"http.read_timeout":           30 * time.Second,
		"http.write_timeout":          30 * time.Second,
		"http.shutdown_timeout":       5 * time.Second,
		"http.cors.enabled":           true,
		"http.cors.allowed_origins":   []string{"*"},
		"http.cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		"http.cors.allowed_headers":   []string{"*"},
		"http.cors.allow_credentials": false,
		"http.cors.max_age":           86400,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "plcgateway",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "plc-gateway",
		"tracing.sample_rate":  0.1,

		// Rate limit
		"rate_limit.enabled":          true,
		"rate_limit.requests":         100,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "sliding_window",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,

		// Audit
		"audit.enabled":      true,
		"audit.backend":      "stdout",
		"audit.buffer_size":  1000,
		"audit.flush_period": 5 * time.Second,

		// Export
		"export.default_company_name": "Gateway Operations",
		"export.pdf.page_size":        "A4",
		"export.pdf.orientation":      "portrait",
		"export.pdf.margin_top":       15.0,
		"export.pdf.font_family":      "Arial",
		"export.pdf.font_size":        10.0,

		// PLC
		"plc.compactlogix_ip":     "192.168.1.10",
		"plc.slc500_ip":           "192.168.1.11",
		"plc.poll_period":         1 * time.Second,
		"plc.socket_timeout":      2 * time.Second,
		"plc.reconnect_base":      1.0,
		"plc.reconnect_max":       60.0,
		"plc.shutdown_timeout":    5 * time.Second,
		"plc.ready_file":          "",
		"plc.loki_push_url":       "",
		"plc.mock_plc":            false,
		"plc.mock_fail_reconnect": false,

		// OPC UA
		"opcua.endpoint":      "opc.tcp://0.0.0.0:4840/freeopcua/server/",
		"opcua.namespace_uri": "http://hmi.designer.flutter",
		"opcua.folder_name":   "HMI_Tags",
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		// GATEWAY_HTTP_PORT -> http.port
		return strings.ReplaceAll(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".",
		)
	}), nil)
}

// loadLegacyPLCEnv maps the gateway's historical, unprefixed environment
// variable names onto the koanf PLC/OPCUA keys.
func (l *Loader) loadLegacyPLCEnv() error {
	legacy := map[string]string{
		"COMPACTLOGIX_IP":             "plc.compactlogix_ip",
		"SLC500_IP":                   "plc.slc500_ip",
		"POLL_PERIOD":                 "plc.poll_period",
		"PLC_SOCKET_TIMEOUT":          "plc.socket_timeout",
		"RECONNECT_BASE":              "plc.reconnect_base",
		"RECONNECT_MAX":               "plc.reconnect_max",
		"SHUTDOWN_TIMEOUT":            "plc.shutdown_timeout",
		"READY_FILE":                  "plc.ready_file",
		"LOKI_PUSH_URL":               "plc.loki_push_url",
		"GATEWAY_MOCK_PLC":            "plc.mock_plc",
		"GATEWAY_MOCK_FAIL_RECONNECT": "plc.mock_fail_reconnect",
		"METRICS_PORT":                "metrics.port",
		"PROMETHEUS_PORT":             "metrics.port",
	}

	values := map[string]any{}
	for envVar, key := range legacy {
		v, ok := os.LookupEnv(envVar)
		if !ok || v == "" {
			continue
		}
		switch key {
		case "plc.poll_period", "plc.socket_timeout", "plc.shutdown_timeout":
			// Historical values are plain seconds (e.g. "1.0").
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				values[key] = time.Duration(secs * float64(time.Second))
				continue
			}
		}
		values[key] = v
	}

	if len(values) == 0 {
		return nil
	}

	return l.k.Load(confmap.Provider(values, "."), nil)
}

// MustLoad loads configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load is a convenience function using default options.
func Load() (*Config, error) {
	return NewLoader().Load()
}
