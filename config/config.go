// Package config loads process configuration: built-in defaults, then an
// optional YAML file, then environment variables.
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

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	HTTP          HTTPConfig          `yaml:"http"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `yaml:"name"`
	Environment Environment `yaml:"environment"`
	Debug       bool        `yaml:"debug"`
	Version     string      `yaml:"version"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the store.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `yaml:"driver"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`

	// Connection pool settings
	MaxConns        int           `yaml:"max_conns"`
	MinConns        int           `yaml:"min_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// RedisConfig holds Redis connection settings for the shared session store.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CatalogConfig points at the remote GraphQL catalog.
type CatalogConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`

	// SyncOnStart runs the replica sync before serving.
	SyncOnStart bool `yaml:"sync_on_start"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// SessionConfig configures login sessions and password hashing.
type SessionConfig struct {
	// Store is "memory" or "redis".
	Store string        `yaml:"store"`
	TTL   time.Duration `yaml:"ttl"`

	BcryptCost int `yaml:"bcrypt_cost"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, text
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:            "exam-room-scheduler",
			Environment:     EnvDevelopment,
			Version:         "0.1.0",
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "examhub",
			SSLMode:         "disable",
			SQLitePath:      "examhub.db",
			MaxConns:        10,
			MinConns:        1,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			ConnectTimeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Catalog: CatalogConfig{
			RequestTimeout: 30 * time.Second,
			MaxAttempts:    3,
			RetryDelay:     250 * time.Millisecond,
			SyncOnStart:    true,
		},
		HTTP: HTTPConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			RequestTimeout: 20 * time.Second,
			MaxBodyBytes:   64 << 10,
			AllowedOrigins: []string{"*"},
		},
		Session: SessionConfig{
			Store:      SessionStoreMemory,
			TTL:        12 * time.Hour,
			BcryptCost: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Load builds the configuration. When path is not empty the YAML file is
// read on top of the defaults; environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Environment = Environment(getEnv("APP_ENV", string(c.App.Environment)))
	c.App.Debug = getEnvBool("APP_DEBUG", c.App.Debug)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
	c.App.ShutdownTimeout = getEnvDuration("APP_SHUTDOWN_TIMEOUT", c.App.ShutdownTimeout)

	d := &c.Database
	d.Driver = getEnv("DB_DRIVER", d.Driver)
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnvInt("DB_PORT", d.Port)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)
	d.Name = getEnv("DB_NAME", d.Name)
	d.SSLMode = getEnv("DB_SSLMODE", d.SSLMode)
	d.SQLitePath = getEnv("DB_SQLITE_PATH", d.SQLitePath)
	d.MaxConns = getEnvInt("DB_MAX_CONNS", d.MaxConns)
	d.MinConns = getEnvInt("DB_MIN_CONNS", d.MinConns)
	d.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime)
	d.ConnMaxIdleTime = getEnvDuration("DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime)
	d.ConnectTimeout = getEnvDuration("DB_CONNECT_TIMEOUT", d.ConnectTimeout)

	r := &c.Redis
	r.Host = getEnv("REDIS_HOST", r.Host)
	r.Port = getEnvInt("REDIS_PORT", r.Port)
	r.Password = getEnv("REDIS_PASSWORD", r.Password)
	r.DB = getEnvInt("REDIS_DB", r.DB)
	r.PoolSize = getEnvInt("REDIS_POOL_SIZE", r.PoolSize)
	r.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", r.MinIdleConns)
	r.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", r.DialTimeout)
	r.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", r.ReadTimeout)
	r.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", r.WriteTimeout)

	cat := &c.Catalog
	cat.URL = getEnv("CATALOG_URL", cat.URL)
	cat.Token = getEnv("CATALOG_TOKEN", cat.Token)
	cat.RequestTimeout = getEnvDuration("CATALOG_REQUEST_TIMEOUT", cat.RequestTimeout)
	cat.MaxAttempts = getEnvInt("CATALOG_MAX_ATTEMPTS", cat.MaxAttempts)
	cat.RetryDelay = getEnvDuration("CATALOG_RETRY_DELAY", cat.RetryDelay)
	cat.SyncOnStart = getEnvBool("CATALOG_SYNC_ON_START", cat.SyncOnStart)

	h := &c.HTTP
	h.Host = getEnv("HTTP_HOST", h.Host)
	h.Port = getEnvInt("HTTP_PORT", h.Port)
	h.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", h.ReadTimeout)
	h.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", h.WriteTimeout)
	h.IdleTimeout = getEnvDuration("HTTP_IDLE_TIMEOUT", h.IdleTimeout)
	h.RequestTimeout = getEnvDuration("HTTP_REQUEST_TIMEOUT", h.RequestTimeout)
	h.MaxBodyBytes = int64(getEnvInt("HTTP_MAX_BODY_BYTES", int(h.MaxBodyBytes)))
	h.AllowedOrigins = getEnvStringSlice("HTTP_ALLOWED_ORIGINS", h.AllowedOrigins)

	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.TTL = getEnvDuration("SESSION_TTL", c.Session.TTL)
	c.Session.BcryptCost = getEnvInt("BCRYPT_COST", c.Session.BcryptCost)

	c.Observability.LogLevel = getEnv("LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("LOG_FORMAT", c.Observability.LogFormat)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, "DB_HOST, DB_USER and DB_NAME are required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, "DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}

	if c.Catalog.SyncOnStart && c.Catalog.URL == "" {
		errs = append(errs, "CATALOG_URL is required when CATALOG_SYNC_ON_START is set")
	}
	if c.Catalog.MaxAttempts < 1 {
		errs = append(errs, "CATALOG_MAX_ATTEMPTS must be at least 1")
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		errs = append(errs, fmt.Sprintf("SESSION_STORE must be %q or %q", SessionStoreMemory, SessionStoreRedis))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
