package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Validation.MaxFileSize != 10*1024*1024 {
		t.Errorf("expected 10 MiB max size, got %d", cfg.Validation.MaxFileSize)
	}
	if cfg.OCR.Timeout != 10*time.Second {
		t.Errorf("expected 10s OCR timeout, got %v", cfg.OCR.Timeout)
	}
	if cfg.Batch.MaxItems != 10 || cfg.Batch.Concurrency != 1 {
		t.Errorf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.RateLimit.RequestsPerMinute != 10 {
		t.Errorf("expected 10 requests/minute, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Validation.MaxPixels != 178956970 {
		t.Errorf("expected 178956970 max pixels, got %d", cfg.Validation.MaxPixels)
	}
	if len(cfg.Server.TrustedProxies) != 0 {
		t.Errorf("no proxies should be trusted by default, got %v", cfg.Server.TrustedProxies)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_TESSDATA", "/opt/tessdata")

	path := writeConfig(t, `
server:
  listen: ":9090"
ocr:
  language: deu
  tessdata_prefix: ${TEST_TESSDATA}
  timeout: 5s
cache:
  capacity: 16
  policy: 2q
batch:
  concurrency: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Listen)
	}
	if cfg.OCR.TessdataPrefix != "/opt/tessdata" {
		t.Errorf("env var not expanded: got %s", cfg.OCR.TessdataPrefix)
	}
	if cfg.OCR.Language != "deu" {
		t.Errorf("expected deu, got %s", cfg.OCR.Language)
	}
	if cfg.OCR.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.OCR.Timeout)
	}
	if cfg.Cache.Capacity != 16 || cfg.Cache.Policy != "2q" {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Batch.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Batch.Concurrency)
	}
	// Untouched sections keep their defaults
	if cfg.Validation.MaxFileSize != 10*1024*1024 {
		t.Errorf("max file size default lost: %d", cfg.Validation.MaxFileSize)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("OCR_GATEWAY_LOG_LEVEL", "debug")
	t.Setenv("OCR_GATEWAY_AUDIT_DB", "/tmp/audit.db")

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("expected :7000, got %s", cfg.Server.Listen)
	}
	if !cfg.Debug() {
		t.Error("expected debug logging from environment")
	}
	if cfg.Audit.DBPath != "/tmp/audit.db" {
		t.Errorf("expected audit db override, got %q", cfg.Audit.DBPath)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("missing default config should fall back to defaults: %v", err)
	}
	if cfg.Cache.Capacity != Default().Cache.Capacity {
		t.Errorf("expected default capacity, got %d", cfg.Cache.Capacity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capacity", func(c *Config) { c.Cache.Capacity = 0 }, "cache.capacity"},
		{"unknown policy", func(c *Config) { c.Cache.Policy = "fifo" }, "cache.policy"},
		{"ttl without duration", func(c *Config) { c.Cache.Policy = "ttl"; c.Cache.TTL = 0 }, "cache.ttl"},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
		{"zero batch size", func(c *Config) { c.Batch.MaxItems = 0 }, "batch.max_items"},
		{"negative max size", func(c *Config) { c.Validation.MaxFileSize = -1 }, "max_file_size"},
		{"empty allow-list", func(c *Config) { c.Validation.AllowedMIMETypes = nil }, "allowed_mime_types"},
		{"zero max pixels", func(c *Config) { c.Validation.MaxPixels = 0 }, "max_pixels"},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.1"} }, "trusted_proxies"},
		{"zero timeout", func(c *Config) { c.OCR.Timeout = 0 }, "ocr.timeout"},
		{"zero scale", func(c *Config) { c.Preprocess.Scale = 0 }, "preprocess.scale"},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, "requests_per_minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
