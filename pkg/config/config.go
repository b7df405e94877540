// Package config loads and validates application configuration from YAML or
// TOML files with environment-variable overrides. It provides typed structs
// for every subsystem (Server, Postgres, Kafka, Redis, Catalog, Search, Cache,
// Analytics, etc.).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres" toml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka" toml:"kafka"`
	Redis     RedisConfig     `yaml:"redis" toml:"redis"`
	Catalog   CatalogConfig   `yaml:"catalog" toml:"catalog"`
	Search    SearchConfig    `yaml:"search" toml:"search"`
	Cache     CacheConfig     `yaml:"cache" toml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics" toml:"analytics"`
	RateLimit RateLimitConfig `yaml:"rateLimit" toml:"rateLimit"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing" toml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout" toml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" toml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" toml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" toml:"allowedOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	Database        string        `yaml:"database" toml:"database"`
	User            string        `yaml:"user" toml:"user"`
	Password        string        `yaml:"password" toml:"password"`
	SSLMode         string        `yaml:"sslMode" toml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns" toml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns" toml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" toml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled" toml:"enabled"`
	Brokers       []string    `yaml:"brokers" toml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup" toml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics" toml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents string `yaml:"analyticsEvents" toml:"analyticsEvents"`
	CacheInvalidate string `yaml:"cacheInvalidate" toml:"cacheInvalidate"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// shared cache level.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	PoolSize int    `yaml:"poolSize" toml:"poolSize"`
}

// Catalog sources.
const (
	SourceSample   = "sample"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// CatalogConfig selects where the course corpus is loaded from.
type CatalogConfig struct {
	Source       string        `yaml:"source" toml:"source"`
	Path         string        `yaml:"path" toml:"path"`
	LoadAttempts int           `yaml:"loadAttempts" toml:"loadAttempts"`
	LoadBackoff  time.Duration `yaml:"loadBackoff" toml:"loadBackoff"`
}

// SearchConfig controls query execution and typeahead.
type SearchConfig struct {
	FuzzyThreshold   int           `yaml:"fuzzyThreshold" toml:"fuzzyThreshold"`
	SuggestLimit     int           `yaml:"suggestLimit" toml:"suggestLimit"`
	MaxSuggestLimit  int           `yaml:"maxSuggestLimit" toml:"maxSuggestLimit"`
	MinSuggestLength int           `yaml:"minSuggestLength" toml:"minSuggestLength"`
	RequestTimeout   time.Duration `yaml:"requestTimeout" toml:"requestTimeout"`
}

// CacheConfig controls the query result cache. A Capacity of zero keeps every
// entry for the lifetime of the index.
type CacheConfig struct {
	Capacity               int           `yaml:"capacity" toml:"capacity"`
	TTL                    time.Duration `yaml:"ttl" toml:"ttl"`
	RemoteFailureThreshold int           `yaml:"remoteFailureThreshold" toml:"remoteFailureThreshold"`
	RemoteResetTimeout     time.Duration `yaml:"remoteResetTimeout" toml:"remoteResetTimeout"`
	RemoteTimeout          time.Duration `yaml:"remoteTimeout" toml:"remoteTimeout"`
}

// AnalyticsConfig controls search event collection and aggregation.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled" toml:"enabled"`
	BufferSize       int           `yaml:"bufferSize" toml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize" toml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval" toml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval" toml:"snapshotInterval"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	RPS     float64 `yaml:"rps" toml:"rps"`
	Burst   int     `yaml:"burst" toml:"burst"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// TracingConfig controls in-process span recording.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" toml:"enabled"`
	SampleRate float64 `yaml:"sampleRate" toml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	Port    int  `yaml:"port" toml:"port"`
}

// Load reads a YAML or TOML config file (if provided) and applies
// environment-variable overrides. The format follows the file extension;
// anything other than .toml is parsed as YAML.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceSample, SourcePostgres:
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required when catalog.source is %q", SourceFile)
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Search.FuzzyThreshold < 0 {
		return fmt.Errorf("search.fuzzyThreshold must be non-negative, got %d", c.Search.FuzzyThreshold)
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must be non-negative, got %d", c.Cache.Capacity)
	}
	return nil
}

// defaultConfig returns a Config with sensible defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "coursecatalog",
			User:            "coursecatalog",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "coursecatalog-analytics",
			Topics: KafkaTopics{
				AnalyticsEvents: "catalog-search-events",
				CacheInvalidate: "catalog-cache-invalidate",
			},
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		Catalog: CatalogConfig{
			Source:       SourceSample,
			LoadAttempts: 5,
			LoadBackoff:  500 * time.Millisecond,
		},
		Search: SearchConfig{
			FuzzyThreshold:   10,
			SuggestLimit:     5,
			MaxSuggestLimit:  20,
			MinSuggestLength: 2,
			RequestTimeout:   5 * time.Second,
		},
		Cache: CacheConfig{
			Capacity:               0,
			TTL:                    10 * time.Minute,
			RemoteFailureThreshold: 5,
			RemoteResetTimeout:     30 * time.Second,
			RemoteTimeout:          100 * time.Millisecond,
		},
		Analytics: AnalyticsConfig{
			Enabled:          true,
			BufferSize:       10000,
			BatchSize:        100,
			FlushInterval:    time.Second,
			SnapshotInterval: time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     50,
			Burst:   100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:    true,
			SampleRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SP_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SP_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SP_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("SP_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SP_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("SP_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("SP_SEARCH_FUZZY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.FuzzyThreshold = n
		}
	}
	if v := os.Getenv("SP_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Capacity = n
		}
	}
	if v := os.Getenv("SP_RATELIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = rps
		}
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SP_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
