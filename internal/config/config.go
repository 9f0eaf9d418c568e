// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// CORSOrigins is a comma-separated list of allowed browser origins.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// ServiceKey guards the report endpoint when set (X-Service-Key header).
	ServiceKey string `mapstructure:"SERVICE_KEY"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// LLMProvider selects the insight model backend: gateway, openai or anthropic.
	LLMProvider string `mapstructure:"LLM_PROVIDER"`
	// LLMAPIKey is the API key for the selected provider.
	LLMAPIKey string `mapstructure:"LLM_API_KEY"`
	// LLMBaseURL is the OpenAI-compatible base URL used by the gateway provider.
	LLMBaseURL string `mapstructure:"LLM_BASE_URL"`
	LLMModel   string `mapstructure:"LLM_MODEL"`
	// InsightCacheTTL is how long generated AI insights are served from cache (e.g. "2m").
	InsightCacheTTL string `mapstructure:"INSIGHT_CACHE_TTL"`
	// InsightRatePerMinute caps uncached AI generations per user.
	InsightRatePerMinute int `mapstructure:"INSIGHT_RATE_PER_MINUTE"`

	// RedisURL enables the insight cache when set (redis://host:6379/0).
	RedisURL string `mapstructure:"REDIS_URL"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses; empty disables event publishing.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsTopic is the Kafka topic for domain events (report.generated, ...).
	EventsTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the delivery worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker archives consumed events (e.g. http://localhost:3100). Optional.
	LokiURL string `mapstructure:"LOKI_URL"`
	// ReportWebhookURL receives report payloads for each subscriber (e.g. an n8n webhook).
	ReportWebhookURL string `mapstructure:"REPORT_WEBHOOK_URL"`
	// MailWebhookURL receives transactional messages (password reset). Optional.
	MailWebhookURL string `mapstructure:"MAIL_WEBHOOK_URL"`
	// NotifyToken is sent as the Authorization header on webhook calls.
	NotifyToken string `mapstructure:"NOTIFY_TOKEN"`

	// OTLPEndpoint enables OpenTelemetry export when set.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is json or console.
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("SERVICE_KEY", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "econ-auth")
	v.SetDefault("JWT_AUDIENCE", "econ-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LLM_PROVIDER", "gateway")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("LLM_MODEL", "google/gemini-3-flash-preview")
	v.SetDefault("INSIGHT_CACHE_TTL", "2m")
	v.SetDefault("INSIGHT_RATE_PER_MINUTE", 6)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "econ-events")
	v.SetDefault("KAFKA_GROUP_ID", "econ-report-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("REPORT_WEBHOOK_URL", "")
	v.SetDefault("MAIL_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_TOKEN", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "economic-insights")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	switch cfg.LLMProvider {
	case "gateway", "openai", "anthropic":
	default:
		return nil, errors.New("config: LLM_PROVIDER must be one of gateway, openai, anthropic")
	}

	if cfg.Env == "production" && cfg.ServiceKey == "" {
		return nil, errors.New("config: SERVICE_KEY must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDurationOr(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return parseDurationOr(c.JWTRefreshTTL, 168*time.Hour)
}

// InsightTTL parses InsightCacheTTL. Returns 2m if unset or invalid.
func (c *Config) InsightTTL() time.Duration {
	return parseDurationOr(c.InsightCacheTTL, 2*time.Minute)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list means event publishing is disabled.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOriginsList returns the allowed origins from the comma-separated config.
func (c *Config) CORSOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSOrigins)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
