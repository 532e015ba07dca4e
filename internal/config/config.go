package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/logger"
)

const envPrefix = "STOREFRONT_"

// Config holds all configuration for the storefront service
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver          string        `yaml:"driver"` // sqlite | postgres
		Path            string        `yaml:"path"`   // sqlite database file
		DSN             string        `yaml:"dsn"`    // postgres connection string
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	Log struct {
		Env   string `yaml:"env"` // dev | prod
		Level string `yaml:"level"`
	} `yaml:"log"`

	Cache struct {
		Kind  string        `yaml:"kind"` // memory | redis | none
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Pagination struct {
		DefaultSize int `yaml:"default_size"`
		MaxSize     int `yaml:"max_size"`
	} `yaml:"pagination"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.IdleTimeout = 2 * time.Minute
	c.Server.ShutdownTimeout = 15 * time.Second

	c.Storage.Driver = datastore.DriverSQLite
	c.Storage.Path = "~/storefront/data/storefront.db"
	c.Storage.MaxOpenConns = 10
	c.Storage.MaxIdleConns = 5
	c.Storage.ConnMaxLifetime = 5 * time.Minute

	c.Log.Env = "dev"
	c.Log.Level = "info"

	c.Cache.Kind = "memory"
	c.Cache.TTL = 2 * time.Minute
	c.Cache.Redis.Addr = "localhost:6379"
	c.Cache.Redis.Prefix = "storefront"

	c.Pagination.DefaultSize = 5
	c.Pagination.MaxSize = 100
	return c
}

// Load builds the configuration from defaults, the optional YAML file at
// path and STOREFRONT_* environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	c := NewConfig()

	if path != "" {
		b, err := os.ReadFile(c.expandPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks the values the service cannot start without
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case datastore.DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for sqlite")
		}
	case datastore.DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unsupported cache.kind %q", c.Cache.Kind)
	}

	if c.Pagination.DefaultSize < 1 || c.Pagination.MaxSize < c.Pagination.DefaultSize {
		return fmt.Errorf("pagination sizes must satisfy 1 <= default_size (%d) <= max_size (%d)",
			c.Pagination.DefaultSize, c.Pagination.MaxSize)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Storage.Driver == datastore.DriverPostgres {
		return c.Storage.DSN
	}
	return "file:" + c.expandPath(c.Storage.Path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// LoggerConfig maps the log section onto the logger package.
func (c *Config) LoggerConfig(version string) logger.Config {
	return logger.Config{
		Env:         c.Log.Env,
		Level:       c.Log.Level,
		ServiceName: "storefront",
		Version:     version,
	}
}

// CacheConfig maps the cache section onto the cache package.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Kind:          c.Cache.Kind,
		TTL:           c.Cache.TTL,
		RedisAddr:     c.Cache.Redis.Addr,
		RedisPassword: c.Cache.Redis.Password,
		RedisDB:       c.Cache.Redis.DB,
		Prefix:        c.Cache.Redis.Prefix,
	}
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"SERVER_ADDR":    &c.Server.Addr,
		"STORAGE_DRIVER": &c.Storage.Driver,
		"STORAGE_PATH":   &c.Storage.Path,
		"STORAGE_DSN":    &c.Storage.DSN,
		"LOG_ENV":        &c.Log.Env,
		"LOG_LEVEL":      &c.Log.Level,
		"CACHE_KIND":     &c.Cache.Kind,
		"REDIS_ADDR":     &c.Cache.Redis.Addr,
		"REDIS_PASSWORD": &c.Cache.Redis.Password,
		"REDIS_PREFIX":   &c.Cache.Redis.Prefix,
	}
	for key, dst := range strs {
		if v, ok := getEnvStr(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"STORAGE_MAX_OPEN_CONNS": &c.Storage.MaxOpenConns,
		"STORAGE_MAX_IDLE_CONNS": &c.Storage.MaxIdleConns,
		"REDIS_DB":               &c.Cache.Redis.DB,
		"PAGE_SIZE":              &c.Pagination.DefaultSize,
		"MAX_PAGE_SIZE":          &c.Pagination.MaxSize,
	}
	for key, dst := range ints {
		if v, ok := getEnvStr(key); ok {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
			}
			*dst = i
		}
	}

	durs := map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":       &c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":      &c.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":       &c.Server.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT":   &c.Server.ShutdownTimeout,
		"STORAGE_CONN_MAX_LIFETIME": &c.Storage.ConnMaxLifetime,
		"CACHE_TTL":                 &c.Cache.TTL,
	}
	for key, dst := range durs {
		if v, ok := getEnvStr(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
			}
			*dst = d
		}
	}
	return nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(envPrefix + key)
	return v, v != ""
}
