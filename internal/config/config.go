// Package config loads application configuration from a .env file, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// defaultAllowedOrigins are the front-end dev servers that talk to the API.
var defaultAllowedOrigins = []string{
	"http://localhost:8081",
	"http://127.0.0.1:8081",
	"http://localhost:5173",
}

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// PublicBaseURL prefixes download URLs, e.g. "https://files.example.com".
	// Empty means the base is derived from each request.
	PublicBaseURL  string
	AllowedOrigins []string

	// Local file storage
	StorageRoot    string
	MaxUploadSize  string // humanized, e.g. "50MB"
	MaxUploadBytes int64
	ClearOnStart   bool

	QRSize     int
	QRTerminal bool
}

// fileConfig mirrors the optional YAML config file. Every field is optional;
// environment variables take precedence over it.
type fileConfig struct {
	Server struct {
		Port           string   `yaml:"port"`
		Env            string   `yaml:"env"`
		LogLevel       string   `yaml:"log_level"`
		PublicBaseURL  string   `yaml:"public_base_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Storage struct {
		Root          string `yaml:"root"`
		MaxUploadSize string `yaml:"max_upload_size"`
		ClearOnStart  *bool  `yaml:"clear_on_start"`
	} `yaml:"storage"`
	QRCode struct {
		Size     int   `yaml:"size"`
		Terminal *bool `yaml:"terminal"`
	} `yaml:"qrcode"`
}

// Load reads configuration from a .env file (if present), the YAML file named
// by CONFIG_PATH (default "config.yaml", if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, reading from environment")
	}

	fc, err := readFile(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", orDefault(fc.Server.Port, "8080")),
		AppEnv:         getEnv("APP_ENV", orDefault(fc.Server.Env, "development")),
		LogLevel:       getEnv("LOG_LEVEL", orDefault(fc.Server.LogLevel, "info")),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", fc.Server.PublicBaseURL), "/"),
		AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", orDefaultSlice(fc.Server.AllowedOrigins, defaultAllowedOrigins)),

		StorageRoot:   getEnv("STORAGE_ROOT", orDefault(fc.Storage.Root, "uploads")),
		MaxUploadSize: getEnv("MAX_UPLOAD_SIZE", orDefault(fc.Storage.MaxUploadSize, "50MB")),
		ClearOnStart:  getBoolEnv("CLEAR_ON_START", orDefaultBool(fc.Storage.ClearOnStart, false)),

		QRSize:     getIntEnv("QR_SIZE", orDefaultInt(fc.QRCode.Size, 250)),
		QRTerminal: getBoolEnv("QR_TERMINAL", orDefaultBool(fc.QRCode.Terminal, false)),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.StorageRoot) == "" {
		return errors.New("STORAGE_ROOT must not be empty")
	}
	if c.QRSize <= 0 {
		return fmt.Errorf("QR_SIZE must be positive, got %d", c.QRSize)
	}
	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	}
	c.MaxUploadBytes = int64(n)
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// readFile parses the YAML config file at path. A missing file yields an
// empty fileConfig.
func readFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	logrus.WithField("path", path).Debug("loaded config file")
	return fc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orDefaultInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func orDefaultBool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func orDefaultSlice(v, fallback []string) []string {
	if len(v) > 0 {
		return v
	}
	return fallback
}
