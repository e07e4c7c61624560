// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/persistence/middleware"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Submission sink backends.
const (
	SinkMemory   = "memory"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	CORSOrigin  string
	CatalogPath string
	FormsPath   string
	LogLevel    string
	LogFormat   string

	Store StoreConfig
	Sink  SinkConfig
	Auth  AuthConfig

	// EncryptionKey is a base64 AES-256 key; empty disables encryption at rest.
	EncryptionKey string
}

// StoreConfig selects where in-flight sessions live.
type StoreConfig struct {
	Backend     string
	Dir         string
	RedisURL    string
	RedisPrefix string
	TTL         time.Duration
}

// SinkConfig selects where finished submissions go.
type SinkConfig struct {
	Backend string
	DSN     string
}

// AuthConfig controls token issuance and enforcement.
type AuthConfig struct {
	Required  bool
	JWTSecret string
	TokenTTL  time.Duration
}

// LoadDotEnv loads variables from path into the environment, without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from FORMCHAT_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("FORMCHAT_PORT", "8080"),
		CORSOrigin:  getEnv("FORMCHAT_CORS_ORIGIN", "*"),
		CatalogPath: getEnv("FORMCHAT_CATALOG", ""),
		FormsPath:   getEnv("FORMCHAT_FORMS", ""),
		LogLevel:    getEnv("FORMCHAT_LOG_LEVEL", "info"),
		LogFormat:   getEnv("FORMCHAT_LOG_FORMAT", string(logging.FormatText)),
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("FORMCHAT_STORE", StoreMemory)),
			Dir:         getEnv("FORMCHAT_SESSION_DIR", ".formchat/sessions"),
			RedisURL:    getEnv("FORMCHAT_REDIS_URL", ""),
			RedisPrefix: getEnv("FORMCHAT_REDIS_PREFIX", "formchat:"),
			TTL:         getEnvDuration("FORMCHAT_SESSION_TTL", 0),
		},
		Sink: SinkConfig{
			Backend: strings.ToLower(getEnv("FORMCHAT_SINK", SinkMemory)),
			DSN:     getEnv("FORMCHAT_SINK_DSN", ""),
		},
		Auth: AuthConfig{
			Required:  getEnvBool("FORMCHAT_AUTH_REQUIRED", false),
			JWTSecret: getEnv("FORMCHAT_JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("FORMCHAT_TOKEN_TTL", time.Hour),
		},
		EncryptionKey: getEnv("FORMCHAT_ENCRYPTION_KEY", ""),
	}

	if cfg.Sink.Backend == SinkSQLite && cfg.Sink.DSN == "" {
		cfg.Sink.DSN = "./data/formchat.db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("FORMCHAT_PORT cannot be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("FORMCHAT_LOG_LEVEL: %w", err)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("FORMCHAT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("FORMCHAT_SESSION_DIR cannot be empty for the file store")
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("FORMCHAT_REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown FORMCHAT_STORE %q", c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("FORMCHAT_SESSION_TTL must be >= 0")
	}

	switch c.Sink.Backend {
	case SinkMemory:
	case SinkSQLite, SinkPostgres:
		if c.Sink.DSN == "" {
			return fmt.Errorf("FORMCHAT_SINK_DSN is required for the %s sink", c.Sink.Backend)
		}
	default:
		return fmt.Errorf("unknown FORMCHAT_SINK %q", c.Sink.Backend)
	}

	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return fmt.Errorf("FORMCHAT_JWT_SECRET is required when FORMCHAT_AUTH_REQUIRED is set")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("FORMCHAT_TOKEN_TTL must be > 0")
	}

	if c.EncryptionKey != "" {
		if _, err := middleware.ParseKey(c.EncryptionKey); err != nil {
			return fmt.Errorf("FORMCHAT_ENCRYPTION_KEY: %w", err)
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
