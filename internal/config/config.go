// Package config loads service configuration from config.yaml, .env and
// MATCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	corenumerator "matcat/internal/core/numerator"
	"matcat/internal/infrastructure/storage/postgres"
	"matcat/pkg/logger"
	pkgnumerator "matcat/pkg/numerator"
)

// EnvPrefix prefixes every environment override, e.g. MATCAT_DATABASE_URL.
const EnvPrefix = "MATCAT"

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Log       LogConfig
	Numerator NumeratorConfig
	Seed      SeedConfig
	Metrics   MetricsConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxPageSize     int // upper bound for the size query parameter
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool // apply migrations on server start
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// NumeratorConfig selects how material codes are allocated.
type NumeratorConfig struct {
	Strategy string // lenient or serialized
	PadWidth int
}

// SeedConfig controls the CSV import.
type SeedConfig struct {
	Enabled          bool
	File             string
	DefaultPrefix    string
	CategoryPrefixes map[int64]string // source category id -> prefix
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// DefaultCategoryPrefixes is the prefix table used when none is configured.
func DefaultCategoryPrefixes() map[int64]string {
	return map[int64]string{
		1: "MTL",
		2: "PLS",
		3: "ELC",
		4: "CHM",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "matcat")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("http.max_page_size", 100)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.health_check_period", time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("numerator.strategy", "lenient")
	v.SetDefault("numerator.pad_width", pkgnumerator.DefaultPadWidth)

	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.file", "data/materials.csv")
	v.SetDefault("seed.default_prefix", "CAT")
	v.SetDefault("seed.category_prefixes", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "matcat")
}

// Load loads configuration.
// Priority (highest to lowest):
// 1. Environment variables with MATCAT_ prefix (e.g., MATCAT_DATABASE_URL)
// 2. .env in the working directory
// 3. configFile, or config.yaml in ., ./config or /etc/matcat
// 4. Built-in defaults
func Load(configFile string) (*Config, error) {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/matcat")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	prefixes, err := parseCategoryPrefixes(v.Get("seed.category_prefixes"))
	if err != nil {
		return nil, err
	}
	if len(prefixes) == 0 {
		prefixes = DefaultCategoryPrefixes()
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxPageSize:     v.GetInt("http.max_page_size"),
		},
		Database: DatabaseConfig{
			URL:               v.GetString("database.url"),
			MaxConns:          v.GetInt32("database.max_conns"),
			MinConns:          v.GetInt32("database.min_conns"),
			MaxConnLifetime:   v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:   v.GetDuration("database.max_conn_idle_time"),
			HealthCheckPeriod: v.GetDuration("database.health_check_period"),
			AutoMigrate:       v.GetBool("database.auto_migrate"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Numerator: NumeratorConfig{
			Strategy: v.GetString("numerator.strategy"),
			PadWidth: v.GetInt("numerator.pad_width"),
		},
		Seed: SeedConfig{
			Enabled:          v.GetBool("seed.enabled"),
			File:             v.GetString("seed.file"),
			DefaultPrefix:    v.GetString("seed.default_prefix"),
			CategoryPrefixes: prefixes,
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("metrics.enabled"),
			Path:      v.GetString("metrics.path"),
			Namespace: v.GetString("metrics.namespace"),
		},
	}

	return cfg, nil
}

// Validate checks settings every binary needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database.url is required (MATCAT_DATABASE_URL)")
	}
	if _, err := corenumerator.ParseStrategy(c.Numerator.Strategy); err != nil {
		return err
	}
	if c.Numerator.PadWidth < 1 {
		return fmt.Errorf("numerator.pad_width must be positive, got %d", c.Numerator.PadWidth)
	}
	if c.HTTP.MaxPageSize < 1 {
		return fmt.Errorf("http.max_page_size must be positive, got %d", c.HTTP.MaxPageSize)
	}
	return nil
}

// NumeratorOptions converts the numerator section to generator options.
func (c *Config) NumeratorOptions() (corenumerator.Options, error) {
	strategy, err := corenumerator.ParseStrategy(c.Numerator.Strategy)
	if err != nil {
		return corenumerator.Options{}, err
	}
	return corenumerator.Options{
		Strategy: strategy,
		PadWidth: c.Numerator.PadWidth,
	}, nil
}

// LoggerConfig converts the log section to logger settings.
// Development mode follows app.env unless log.development forces it.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development || c.IsDevelopment(),
	}
}

// PoolConfig converts the database section to pool settings.
func (c *Config) PoolConfig() postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(c.Database.URL)
	pc.ApplicationName = c.App.Name
	pc.MaxConns = c.Database.MaxConns
	pc.MinConns = c.Database.MinConns
	pc.MaxConnLifetime = c.Database.MaxConnLifetime
	pc.MaxConnIdleTime = c.Database.MaxConnIdleTime
	pc.HealthCheckPeriod = c.Database.HealthCheckPeriod
	return pc
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// parseCategoryPrefixes accepts a YAML map ({1: MTL}) or the env form "1:MTL,2:PLS".
func parseCategoryPrefixes(raw any) (map[int64]string, error) {
	out := make(map[int64]string)

	add := func(key, prefix string) error {
		categoryID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return fmt.Errorf("seed.category_prefixes: invalid category id %q", key)
		}
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return fmt.Errorf("seed.category_prefixes: empty prefix for category %d", categoryID)
		}
		out[categoryID] = prefix
		return nil
	}

	switch val := raw.(type) {
	case nil:
	case string:
		for _, pair := range strings.Split(val, ",") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			key, prefix, ok := strings.Cut(pair, ":")
			if !ok {
				return nil, fmt.Errorf("seed.category_prefixes: expected id:prefix, got %q", pair)
			}
			if err := add(key, prefix); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for key, prefix := range val {
			if err := add(key, fmt.Sprint(prefix)); err != nil {
				return nil, err
			}
		}
	case map[string]string:
		for key, prefix := range val {
			if err := add(key, prefix); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("seed.category_prefixes: unsupported value %T", raw)
	}

	return out, nil
}
