package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"OBLIGO_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	Migrate      bool   `env:"DB_MIGRATE" envDefault:"true"`
}

// RedisConfig is optional; an empty URL disables the organization cache.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	OrgCacheTTL  time.Duration `env:"ORG_CACHE_TTL" envDefault:"5m"`
}

// KafkaConfig is optional; no brokers disables the outbox relay.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"obligations.published"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

type AuthConfig struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"obligo"`
}

type PublishConfig struct {
	TxTimeout   time.Duration `env:"PUBLISH_TX_TIMEOUT" envDefault:"30s"`
	InsertChunk int           `env:"PUBLISH_INSERT_CHUNK" envDefault:"1000"`
	LookupChunk int           `env:"PREVIEW_LOOKUP_CHUNK" envDefault:"5000"`
}

type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Publish  PublishConfig
}

func (c Config) RelayEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// Load reads the optional env files and parses the environment into Config.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns))
	}
	if c.Publish.TxTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_TX_TIMEOUT must be positive, got %s", c.Publish.TxTimeout))
	}
	if c.Publish.InsertChunk <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_INSERT_CHUNK must be positive, got %d", c.Publish.InsertChunk))
	}
	if c.Publish.LookupChunk <= 0 {
		errs = append(errs, fmt.Errorf("PREVIEW_LOOKUP_CHUNK must be positive, got %d", c.Publish.LookupChunk))
	}
	if c.Redis.URL != "" && c.Redis.OrgCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("ORG_CACHE_TTL must be positive when REDIS_URL is set, got %s", c.Redis.OrgCacheTTL))
	}
	if c.RelayEnabled() {
		if c.Kafka.Topic == "" {
			errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
		}
		if c.Kafka.BatchSize <= 0 || c.Kafka.PollInterval <= 0 {
			errs = append(errs, errors.New("OUTBOX_BATCH_SIZE and OUTBOX_POLL_INTERVAL must be positive"))
		}
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	return errors.Join(errs...)
}
