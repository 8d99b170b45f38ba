package config

import (
	"strings"
	"time"

	"github.com/slabounty/rusty-server/internal/server"
	"github.com/slabounty/rusty-server/internal/static"
)

// DefaultStaticRoot is the filesystem directory served when no root is
// configured.
const DefaultStaticRoot = "static"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyStaticDefaults(&cfg.Static)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets listener and connection handling defaults.
func applyServerDefaults(cfg *server.HTTPConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	// MaxConnections defaults to 0 (unlimited)
	// RateLimit defaults to 0 (disabled)

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = 8 << 10
	}
	if cfg.MetricsLogInterval == 0 {
		cfg.MetricsLogInterval = 5 * time.Minute
	}
}

// applyStaticDefaults sets content store defaults.
func applyStaticDefaults(cfg *StaticConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}
	if cfg.Index == "" {
		cfg.Index = static.DefaultIndexDocument
	}
	if cfg.NotFound == "" {
		cfg.NotFound = static.DefaultNotFoundDocument
	}

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	if _, ok := cfg.Filesystem["root"]; !ok {
		cfg.Filesystem["root"] = DefaultStaticRoot
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// Useful for generating sample configuration files and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Static: StaticConfig{
			Filesystem: make(map[string]any),
			Memory:     make(map[string]any),
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
