// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Inventory, Search, Preferences, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	Search      SearchConfig      `yaml:"search"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RateLimit       int           `yaml:"rateLimit"` // requests per minute per client, 0 disables
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnectAttempts int           `yaml:"connectAttempts"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout"`
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
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents  string `yaml:"analyticsEvents"`
	InventoryChanges string `yaml:"inventoryChanges"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// InventoryConfig selects where item snapshots come from and how often they
// are reloaded.
type InventoryConfig struct {
	Source          string        `yaml:"source"` // "file" or "postgres"
	File            string        `yaml:"file"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	LoadTimeout     time.Duration `yaml:"loadTimeout"`
	RetryAttempts   int           `yaml:"retryAttempts"`
	RetryBaseDelay  time.Duration `yaml:"retryBaseDelay"`
}

// SearchConfig controls result limits, relevance tuning, and suggestions.
type SearchConfig struct {
	MaxResults      int                `yaml:"maxResults"`
	DefaultLimit    int                `yaml:"defaultLimit"`
	RecencyWindow   time.Duration      `yaml:"recencyWindow"`
	HistorySize     int                `yaml:"historySize"`
	SuggestionLimit int                `yaml:"suggestionLimit"`
	Weights         map[string]float64 `yaml:"weights"` // relevance point overrides, e.g. nameExact: 120
}

// PreferencesConfig selects the storage backend for saved filters and sort
// configurations.
type PreferencesConfig struct {
	Backend   string `yaml:"backend"` // "redis" or "memory"
	KeyPrefix string `yaml:"keyPrefix"`
}

// AnalyticsConfig controls the search-event pipeline.
type AnalyticsConfig struct {
	BufferSize       int           `yaml:"bufferSize"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig toggles span logging for the search pipeline.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load layers an optional YAML file and then INV_* environment variables over
// the defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Inventory.Source {
	case "file":
		if c.Inventory.File == "" {
			errs = append(errs, errors.New("inventory.file is required when inventory.source is \"file\""))
		}
	case "postgres":
	default:
		errs = append(errs, fmt.Errorf("inventory.source must be \"file\" or \"postgres\", got %q", c.Inventory.Source))
	}
	switch c.Preferences.Backend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("preferences.backend must be \"redis\" or \"memory\", got %q", c.Preferences.Backend))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rateLimit must not be negative"))
	}
	if c.Search.DefaultLimit <= 0 {
		errs = append(errs, errors.New("search.defaultLimit must be positive"))
	}
	if c.Search.MaxResults < c.Search.DefaultLimit {
		errs = append(errs, errors.New("search.maxResults must be at least search.defaultLimit"))
	}
	if c.Search.RecencyWindow < 0 {
		errs = append(errs, errors.New("search.recencyWindow must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       600,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "inventory",
			User:            "inventory",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectAttempts: 3,
			ConnectTimeout:  5 * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled:       true,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "inventory-search-group",
			Topics: KafkaTopics{
				AnalyticsEvents:  "inventory-search-events",
				InventoryChanges: "inventory-changes",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Inventory: InventoryConfig{
			Source:          "file",
			File:            "configs/items.yaml",
			RefreshInterval: 5 * time.Minute,
			LoadTimeout:     10 * time.Second,
			RetryAttempts:   3,
			RetryBaseDelay:  200 * time.Millisecond,
		},
		Search: SearchConfig{
			MaxResults:      500,
			DefaultLimit:    50,
			RecencyWindow:   7 * 24 * time.Hour,
			HistorySize:     50,
			SuggestionLimit: 5,
		},
		Preferences: PreferencesConfig{
			Backend:   "redis",
			KeyPrefix: "inventory:prefs:",
		},
		Analytics: AnalyticsConfig{
			BufferSize:       10000,
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// envOverride binds one INV_* variable to a config field.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string) error
}

func envString(field func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		*field(cfg) = v
		return nil
	}
}

func envInt(field func(*Config) *int) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}
}

func envBool(field func(*Config) *bool) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(cfg) = b
		return nil
	}
}

func envDuration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(cfg) = d
		return nil
	}
}

func envList(field func(*Config) *[]string) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		var list []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		*field(cfg) = list
		return nil
	}
}

var envOverrides = []envOverride{
	{"INV_SERVER_PORT", envInt(func(c *Config) *int { return &c.Server.Port })},
	{"INV_SERVER_RATE_LIMIT", envInt(func(c *Config) *int { return &c.Server.RateLimit })},
	{"INV_SERVER_CORS_ORIGINS", envList(func(c *Config) *[]string { return &c.Server.CORSOrigins })},
	{"INV_POSTGRES_HOST", envString(func(c *Config) *string { return &c.Postgres.Host })},
	{"INV_POSTGRES_PORT", envInt(func(c *Config) *int { return &c.Postgres.Port })},
	{"INV_POSTGRES_DATABASE", envString(func(c *Config) *string { return &c.Postgres.Database })},
	{"INV_POSTGRES_USER", envString(func(c *Config) *string { return &c.Postgres.User })},
	{"INV_POSTGRES_PASSWORD", envString(func(c *Config) *string { return &c.Postgres.Password })},
	{"INV_POSTGRES_SSLMODE", envString(func(c *Config) *string { return &c.Postgres.SSLMode })},
	{"INV_KAFKA_ENABLED", envBool(func(c *Config) *bool { return &c.Kafka.Enabled })},
	{"INV_KAFKA_BROKERS", envList(func(c *Config) *[]string { return &c.Kafka.Brokers })},
	{"INV_REDIS_ADDR", envString(func(c *Config) *string { return &c.Redis.Addr })},
	{"INV_REDIS_PASSWORD", envString(func(c *Config) *string { return &c.Redis.Password })},
	{"INV_INVENTORY_SOURCE", envString(func(c *Config) *string { return &c.Inventory.Source })},
	{"INV_INVENTORY_FILE", envString(func(c *Config) *string { return &c.Inventory.File })},
	{"INV_INVENTORY_REFRESH_INTERVAL", envDuration(func(c *Config) *time.Duration { return &c.Inventory.RefreshInterval })},
	{"INV_SEARCH_RECENCY_WINDOW", envDuration(func(c *Config) *time.Duration { return &c.Search.RecencyWindow })},
	{"INV_PREFERENCES_BACKEND", envString(func(c *Config) *string { return &c.Preferences.Backend })},
	{"INV_LOGGING_LEVEL", envString(func(c *Config) *string { return &c.Logging.Level })},
	{"INV_LOGGING_FORMAT", envString(func(c *Config) *string { return &c.Logging.Format })},
	{"INV_METRICS_PORT", envInt(func(c *Config) *int { return &c.Metrics.Port })},
}

// applyEnvOverrides applies every set INV_* variable. Unparsable values are
// reported together rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", o.name, v, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("environment overrides: %w", errors.Join(errs...))
	}
	return nil
}
