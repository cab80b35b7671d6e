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
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim; required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim; required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTTTL is the bearer token lifetime (e.g. "24h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// SessionTTL is the cookie session lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// RedisAddr enables the cart cache when set (e.g. "localhost:6379").
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// Blob storage. When S3Bucket is empty the in-memory store is used, which
	// only makes sense outside production.
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`

	// Telemetry (optional). When Kafka brokers are set, the server emits telemetry to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group used by cmd/worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint enables trace export when set (e.g. "localhost:4317").
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "shopfront-auth")
	v.SetDefault("JWT_AUDIENCE", "shopfront-api")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "shopfront-telemetry")
	v.SetDefault("KAFKA_GROUP_ID", "shopfront-telemetry-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

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

	if cfg.Env == "production" && cfg.S3Bucket == "" {
		return nil, errors.New("config: S3_BUCKET must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// CookieSessionTTL parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) CookieSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
