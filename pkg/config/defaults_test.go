package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read_timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Expected default write_timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxHeaderBytes != 8<<10 {
		t.Errorf("Expected default max_header_bytes 8192, got %d", cfg.Server.MaxHeaderBytes)
	}
	if cfg.Server.MaxConnections != 0 {
		t.Errorf("Expected default max_connections 0 (unlimited), got %d", cfg.Server.MaxConnections)
	}
	if cfg.Static.Type != "filesystem" {
		t.Errorf("Expected default store type 'filesystem', got %q", cfg.Static.Type)
	}
	if cfg.Static.Index != "index.html" {
		t.Errorf("Expected default index 'index.html', got %q", cfg.Static.Index)
	}
	if cfg.Static.NotFound != "404.html" {
		t.Errorf("Expected default not_found '404.html', got %q", cfg.Static.NotFound)
	}
	if root := cfg.Static.Filesystem["root"]; root != DefaultStaticRoot {
		t.Errorf("Expected default static root %q, got %v", DefaultStaticRoot, root)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Server.Port = 9000
	cfg.Static.Type = "memory"
	cfg.Static.Index = "start.html"

	ApplyDefaults(cfg)

	// Level is normalized to uppercase but otherwise preserved
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected explicit port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Static.Type != "memory" {
		t.Errorf("Expected explicit type 'memory', got %q", cfg.Static.Type)
	}
	if cfg.Static.Index != "start.html" {
		t.Errorf("Expected explicit index 'start.html', got %q", cfg.Static.Index)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg == nil {
		t.Fatal("GetDefaultConfig() returned nil")
	}

	// The default config must pass its own validation
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
}
