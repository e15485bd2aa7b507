// Package config provides the gateway's layered configuration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Audit     AuditConfig     `koanf:"audit"`
	Export    ExportConfig    `koanf:"export"`
	PLC       PLCConfig       `koanf:"plc"`
	OPCUA     OPCUAConfig     `koanf:"opcua"`
}

// AppConfig carries process-wide identity settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig configures the REST surface's transport.
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig configures cross-origin access for HMI clients.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig configures the slog-based logger.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// RateLimitConfig configures the REST rate limiter.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// AuditConfig configures the tag-mutation audit trail.
type AuditConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Backend     string        `koanf:"backend"` // stdout, file
	FilePath    string        `koanf:"file_path"`
	BufferSize  int           `koanf:"buffer_size"`
	FlushPeriod time.Duration `koanf:"flush_period"`
}

// ExportConfig holds settings for the tag-documentation export. The export
// package does not read it; its workbook and PDF layouts are fixed in code.
type ExportConfig struct {
	DefaultCompanyName string `koanf:"default_company_name"`
	PDF                PDFConfig `koanf:"pdf"`
}

// PDFConfig holds PDF layout settings for the tag export; the export package
// does not read them.
type PDFConfig struct {
	PageSize    string  `koanf:"page_size"`   // A4, Letter, Legal
	Orientation string  `koanf:"orientation"` // portrait, landscape
	MarginTop   float64 `koanf:"margin_top"`
	FontFamily  string  `koanf:"font_family"`
	FontSize    float64 `koanf:"font_size"`
}

// PLCConfig carries the controller addresses and driver tunables.
type PLCConfig struct {
	CompactLogixIP    string        `koanf:"compactlogix_ip"`
	SLC500IP          string        `koanf:"slc500_ip"`
	PollPeriod        time.Duration `koanf:"poll_period"`
	SocketTimeout     time.Duration `koanf:"socket_timeout"`
	ReconnectBase     float64       `koanf:"reconnect_base"`
	ReconnectMax      float64       `koanf:"reconnect_max"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	ReadyFile         string        `koanf:"ready_file"`
	LokiPushURL       string        `koanf:"loki_push_url"`
	MockPLC           bool          `koanf:"mock_plc"`
	MockFailReconnect bool          `koanf:"mock_fail_reconnect"`
}

// OPCUAConfig carries the embedded OPC UA server's settings.
type OPCUAConfig struct {
	Endpoint     string `koanf:"endpoint"`
	NamespaceURI string `koanf:"namespace_uri"`
	FolderName   string `koanf:"folder_name"`
}

// Validate checks invariants the rest of the application relies on.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.PLC.PollPeriod <= 0 {
		errs = append(errs, "plc.poll_period must be positive")
	}

	if c.PLC.ReconnectBase <= 0 {
		errs = append(errs, "plc.reconnect_base must be positive")
	}

	if c.PLC.ReconnectMax < c.PLC.ReconnectBase {
		errs = append(errs, "plc.reconnect_max must be >= plc.reconnect_base")
	}

	validPageSizes := map[string]bool{"A4": true, "Letter": true, "Legal": true, "A3": true}
	if c.Export.PDF.PageSize != "" && !validPageSizes[c.Export.PDF.PageSize] {
		errs = append(errs, fmt.Sprintf("export.pdf.page_size must be one of: A4, Letter, Legal, A3, got %s", c.Export.PDF.PageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the app is running in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the app is running in a production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
