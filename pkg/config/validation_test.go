package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Static.Type = "memory"
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Valid config failed validation: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected oneof tag failure, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid log format, got nil")
	}
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.Static.Type = "ftp"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid store type, got nil")
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for out-of-range port, got nil")
	}
}

func TestValidate_FilesystemRootRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Static.Type = "filesystem"
	cfg.Static.Filesystem = map[string]any{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for missing filesystem root, got nil")
	}
	if !strings.Contains(err.Error(), "root is required") {
		t.Errorf("Expected root requirement message, got: %v", err)
	}
}

func TestValidate_S3RequiresBucketAndRegion(t *testing.T) {
	tests := []struct {
		name string
		s3   map[string]any
		want string
	}{
		{
			name: "missing bucket",
			s3:   map[string]any{"region": "us-east-1"},
			want: "bucket is required",
		},
		{
			name: "missing region",
			s3:   map[string]any{"bucket": "assets"},
			want: "region is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Static.Type = "s3"
			cfg.Static.S3 = tt.s3

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected %q in error, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_RateBurstWithoutRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RateBurst = 100
	cfg.Server.RateLimit = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for rate_burst without rate_limit, got nil")
	}
	if !strings.Contains(err.Error(), "rate_burst") {
		t.Errorf("Expected rate_burst message, got: %v", err)
	}
}

func TestValidate_S3Valid(t *testing.T) {
	cfg := validConfig()
	cfg.Static.Type = "s3"
	cfg.Static.S3 = map[string]any{
		"bucket": "assets",
		"region": "us-east-1",
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("Valid S3 config failed validation: %v", err)
	}
}
