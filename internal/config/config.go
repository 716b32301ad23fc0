package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Logging     LoggingConfig  `yaml:"logging"`
	CORS        CORSConfig     `yaml:"cors"`
	Tracing     TracingConfig  `yaml:"tracing"`
	Environment string         `yaml:"environment" env:"ENVIRONMENT"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url" env:"DATABASE_URL"`
	MaxConnections int    `yaml:"max_connections" env:"DATABASE_MAX_CONNECTIONS"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
}

type AuthConfig struct {
	SessionTTL        time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	SessionCookieName string        `yaml:"session_cookie_name" env:"SESSION_COOKIE_NAME"`
	// PasswordScheme is "plaintext" or "bcrypt".
	PasswordScheme string `yaml:"password_scheme" env:"PASSWORD_SCHEME"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type CORSConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AllowAllOrigins bool     `yaml:"-"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"TRACING_ENABLED"`
	Exporter     string  `yaml:"exporter" env:"TRACING_EXPORTER"`
	ServiceName  string  `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"TRACING_SAMPLE_RATE"`
}

const (
	PasswordSchemePlaintext = "plaintext"
	PasswordSchemeBcrypt    = "bcrypt"
)

// Default returns the configuration used when neither a file nor the
// environment sets a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			URL:            "sqlite://eventio.db",
			MaxConnections: 25,
			AutoMigrate:    true,
		},
		Auth: AuthConfig{
			SessionTTL:        7 * 24 * time.Hour,
			SessionCookieName: "session",
			PasswordScheme:    PasswordSchemePlaintext,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "eventio",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

// Load builds the configuration from defaults and environment variables.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile builds the configuration from defaults, the optional YAML file at
// path, and environment variables, in increasing order of precedence.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Fields without a matching env var are left untouched.
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.finalize()
}

func (c *Config) finalize() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Auth.PasswordScheme = strings.ToLower(strings.TrimSpace(c.Auth.PasswordScheme))

	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if strings.TrimSpace(c.Auth.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	switch c.Auth.PasswordScheme {
	case PasswordSchemePlaintext, PasswordSchemeBcrypt:
	default:
		return fmt.Errorf("PASSWORD_SCHEME must be %q or %q", PasswordSchemePlaintext, PasswordSchemeBcrypt)
	}

	origins := make([]string, 0, len(c.CORS.AllowedOrigins))
	for _, origin := range c.CORS.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORS.AllowedOrigins = origins

	switch c.Environment {
	case "development", "test":
		c.CORS.AllowAllOrigins = true
	case "production":
		if len(c.CORS.AllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
