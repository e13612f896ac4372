// Package config loads the gateway configuration from YAML with environment
// variable expansion and overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when no -c flag is given. A missing
// file at this path is not an error.
const DefaultPath = "ocr-gateway.yaml"

// Config holds all gateway configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Validation ValidationConfig `yaml:"validation"`
	OCR        OCRConfig        `yaml:"ocr"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Cache      CacheConfig      `yaml:"cache"`
	Batch      BatchConfig      `yaml:"batch"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Audit      AuditConfig      `yaml:"audit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	BodyLimit       string        `yaml:"body_limit"`
	EnableCORS      bool          `yaml:"enable_cors"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	RequestLogging  bool          `yaml:"request_logging"`

	// TrustedProxies lists CIDR ranges whose X-Forwarded-For header is
	// believed when identifying clients. Empty means the socket peer is used.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// ValidationConfig controls the checks applied to single-image uploads.
// MaxPixels applies to batch items too.
type ValidationConfig struct {
	MaxFileSize      int64    `yaml:"max_file_size"`
	AllowedMIMETypes []string `yaml:"allowed_mime_types"`
	MaxPixels        int64    `yaml:"max_pixels"`
}

// OCRConfig tunes the Tesseract engine.
type OCRConfig struct {
	Language       string        `yaml:"language"`
	TessdataPrefix string        `yaml:"tessdata_prefix"`
	PageSegMode    int           `yaml:"page_seg_mode"`
	Timeout        time.Duration `yaml:"timeout"`
}

// PreprocessConfig enables image clean-up before recognition. Everything is
// off by default.
type PreprocessConfig struct {
	Grayscale  bool    `yaml:"grayscale"`
	Scale      float64 `yaml:"scale"`
	Threshold  uint8   `yaml:"threshold"`
	AutoInvert bool    `yaml:"auto_invert"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Capacity int           `yaml:"capacity"`
	Policy   string        `yaml:"policy"` // lru, 2q or ttl
	TTL      time.Duration `yaml:"ttl"`
}

// BatchConfig controls the batch endpoint.
type BatchConfig struct {
	MaxItems    int `yaml:"max_items"`
	Concurrency int `yaml:"concurrency"`
}

// RateLimitConfig limits OCR requests per client address.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	ExpiresIn         time.Duration `yaml:"expires_in"`
}

// AuditConfig controls the SQLite request log. An empty DBPath disables it.
type AuditConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          ":8000",
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "110M",
			EnableCORS:      false,
			AllowOrigins:    []string{"*"},
			RequestLogging:  true,
		},
		Validation: ValidationConfig{
			MaxFileSize:      10 * 1024 * 1024,
			AllowedMIMETypes: []string{"image/jpeg", "image/jpg", "image/png", "image/gif"},
			MaxPixels:        178956970,
		},
		OCR: OCRConfig{
			Language:    "eng",
			PageSegMode: 3,
			Timeout:     10 * time.Second,
		},
		Preprocess: PreprocessConfig{
			Scale: 1.0,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1024,
			Policy:   "lru",
			TTL:      time.Hour,
		},
		Batch: BatchConfig{
			MaxItems:    10,
			Concurrency: 1,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			ExpiresIn:         3 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file, expands environment variables and applies
// environment overrides. A missing file at DefaultPath yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			c.Server.Listen = ":" + port
		}
	}
	if level := os.Getenv("OCR_GATEWAY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if prefix := os.Getenv("TESSDATA_PREFIX"); prefix != "" && c.OCR.TessdataPrefix == "" {
		c.OCR.TessdataPrefix = prefix
	}
	if db := os.Getenv("OCR_GATEWAY_AUDIT_DB"); db != "" {
		c.Audit.DBPath = db
	}
}

// Validate rejects values the gateway cannot run with.
func (c *Config) Validate() error {
	if c.Validation.MaxFileSize <= 0 {
		return fmt.Errorf("validation.max_file_size must be positive, got %d", c.Validation.MaxFileSize)
	}
	if len(c.Validation.AllowedMIMETypes) == 0 {
		return errors.New("validation.allowed_mime_types must not be empty")
	}
	if c.Validation.MaxPixels <= 0 {
		return fmt.Errorf("validation.max_pixels must be positive, got %d", c.Validation.MaxPixels)
	}
	for _, cidr := range c.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("server.trusted_proxies: %w", err)
		}
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("ocr.timeout must be positive, got %s", c.OCR.Timeout)
	}
	if c.Preprocess.Scale <= 0 {
		return fmt.Errorf("preprocess.scale must be positive, got %g", c.Preprocess.Scale)
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be at least 1, got %d", c.Cache.Capacity)
	}
	switch c.Cache.Policy {
	case "lru", "2q":
	case "ttl":
		if c.Cache.TTL <= 0 {
			return errors.New("cache.ttl must be positive when cache.policy is ttl")
		}
	default:
		return fmt.Errorf("unknown cache.policy %q (want lru, 2q or ttl)", c.Cache.Policy)
	}
	if c.Batch.MaxItems < 1 {
		return fmt.Errorf("batch.max_items must be at least 1, got %d", c.Batch.MaxItems)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate_limit.requests_per_minute must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Logging.Level == "debug"
}
