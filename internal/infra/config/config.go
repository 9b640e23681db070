package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogS3       = "s3"

	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	DefaultLocale   string        `env:"DEFAULT_LOCALE" envDefault:"ro"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`

	CatalogSource    string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	CatalogPath      string `env:"CATALOG_PATH"`
	CatalogObjectKey string `env:"CATALOG_OBJECT_KEY" envDefault:"catalog.json"`
	S3Endpoint       string `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	S3AccessKey      string `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	S3SecretKey      string `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	S3Bucket         string `env:"S3_BUCKET" envDefault:"venue-catalog"`
	S3UseSSL         bool   `env:"S3_USE_SSL" envDefault:"false"`

	StorageMode    string        `env:"STORAGE_MODE" envDefault:"memory"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDB        string        `env:"MONGO_DB" envDefault:"venue"`
	IdempotencyTTL time.Duration `env:"IDEMP_TTL" envDefault:"168h"`

	KafkaBrokers       []string        `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPrefix   string          `env:"KAFKA_TOPIC_PREFIX"`
	OutboxPollInterval time.Duration   `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	RetryBackoff       []time.Duration `env:"RETRY_BACKOFF" envSeparator:"," envDefault:"1s,5s,30s"`

	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	InquiryRateLimit  int           `env:"INQUIRY_RATE_LIMIT" envDefault:"5"`
	InquiryRateWindow time.Duration `env:"INQUIRY_RATE_WINDOW" envDefault:"10m"`
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

// Defaults is the configuration of an empty environment.
func Defaults() Config {
	cfg, _ := parse(env.Options{Environment: map[string]string{}})
	return cfg
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.CatalogSource = strings.ToLower(strings.TrimSpace(cfg.CatalogSource))
	cfg.StorageMode = strings.ToLower(strings.TrimSpace(cfg.StorageMode))
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the rules that span several variables.
func (c Config) Validate() error {
	var errs []error
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogFile:
		if c.CatalogPath == "" {
			errs = append(errs, errors.New("CATALOG_PATH is required for the file catalog"))
		}
	case CatalogS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" || c.CatalogObjectKey == "" {
			errs = append(errs, errors.New("S3_ENDPOINT, S3_BUCKET and CATALOG_OBJECT_KEY are required for the s3 catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource))
	}
	switch c.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for mongo storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_MODE %q", c.StorageMode))
	}
	switch strings.ToLower(c.DefaultLocale) {
	case "ro", "en":
	default:
		errs = append(errs, fmt.Errorf("unsupported DEFAULT_LOCALE %q", c.DefaultLocale))
	}
	if c.OutboxPollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.InquiryRateLimit < 0 {
		errs = append(errs, errors.New("INQUIRY_RATE_LIMIT cannot be negative"))
	}
	if c.InquiryRateLimit > 0 && c.InquiryRateWindow <= 0 {
		errs = append(errs, errors.New("INQUIRY_RATE_WINDOW must be positive"))
	}
	for _, d := range c.RetryBackoff {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("RETRY_BACKOFF step %s must be positive", d))
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
