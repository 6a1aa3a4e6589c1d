package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Token store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the CLI and the gateway.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Transsmart
	Username    string        `envconfig:"TRANSSMART_USERNAME"`
	Password    string        `envconfig:"TRANSSMART_PASSWORD"`
	Account     string        `envconfig:"TRANSSMART_ACCOUNT"`
	TestMode    bool          `envconfig:"TRANSSMART_TEST_MODE" default:"false"`
	BaseURL     string        `envconfig:"TRANSSMART_BASE_URL" default:"https://api.transsmart.com"`
	TestBaseURL string        `envconfig:"TRANSSMART_TEST_BASE_URL" default:"https://accept-api.transsmart.com"`
	Timeout     time.Duration `envconfig:"TRANSSMART_TIMEOUT" default:"30s"`

	// Token store
	TokenStore     string `envconfig:"TOKEN_STORE" default:"memory"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"transsmart:token:"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"transsmart"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to talk to the provider.
func (c *Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("TRANSSMART_USERNAME is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("TRANSSMART_PASSWORD is required"))
	}
	if c.Account == "" {
		errs = append(errs, errors.New("TRANSSMART_ACCOUNT is required"))
	}
	switch c.TokenStore {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unsupported TOKEN_STORE %q", c.TokenStore))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("TRANSSMART_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("transsmart.account", c.Account),
		attribute.Bool("transsmart.test_mode", c.TestMode),
		attribute.String("transsmart.token_store", c.TokenStore),
	}
}
