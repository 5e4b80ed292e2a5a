// Package config loads tend settings from defaults, an optional YAML file and
// TEND_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/adapters/redis"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given. It may be absent.
const DefaultPath = "tend.yaml"

// Supported repository backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full runtime configuration.
type Config struct {
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
	Redis    RedisConfig   `yaml:"redis" mapstructure:"redis"`
	SQLite   SQLiteConfig  `yaml:"sqlite" mapstructure:"sqlite"`
	HTTP     HTTPConfig    `yaml:"http" mapstructure:"http"`
	Servers  ServersConfig `yaml:"servers" mapstructure:"servers"`

	// Seed replaces the default items loaded into an empty repository.
	// nil means the default five items; an empty list disables seeding.
	Seed []SeedItem `yaml:"seed" mapstructure:"seed"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

type SQLiteConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type ServersConfig struct {
	Region  string `yaml:"region" mapstructure:"region"`
	Initial int    `yaml:"initial" mapstructure:"initial"`
}

// SeedItem is one entry of the configured seed list.
type SeedItem struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Completed bool   `yaml:"completed" mapstructure:"completed"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Backend:  BackendMemory,
		LogLevel: "info",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: redis.DefaultPrefix,
		},
		SQLite: SQLiteConfig{DSN: "tend.db"},
		HTTP:   HTTPConfig{Addr: ":8080"},
		Servers: ServersConfig{
			Region: domain.DefaultRegion,
		},
	}
}

// envKeys maps environment variables to config paths.
var envKeys = map[string]string{
	"TEND_BACKEND":         "backend",
	"TEND_LOG_LEVEL":       "log_level",
	"TEND_REDIS_ADDR":      "redis.addr",
	"TEND_REDIS_PASSWORD":  "redis.password",
	"TEND_REDIS_DB":        "redis.db",
	"TEND_REDIS_PREFIX":    "redis.prefix",
	"TEND_SQLITE_DSN":      "sqlite.dsn",
	"TEND_HTTP_ADDR":       "http.addr",
	"TEND_SERVERS_REGION":  "servers.region",
	"TEND_SERVERS_INITIAL": "servers.initial",
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads path (or DefaultPath when empty) and the process environment.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
// A missing file is only an error when path was given explicitly.
func LoadWith(path string, lookup LookupFunc) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw := map[string]any{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case os.IsNotExist(err) && !explicit:
		// No file is fine; defaults and env still apply.
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if lookup != nil {
		for env, key := range envKeys {
			if val, ok := lookup(env); ok {
				setPath(raw, key, val)
			}
		}
	}

	cfg := Defaults()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// setPath stores val under a dotted key, creating intermediate maps.
func setPath(m map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis.db must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for i, it := range c.Seed {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: seed[%d] has an empty name", ErrInvalidConfig, i)
		}
	}
	return nil
}

// SeedItems returns the items to load into an empty repository.
func (c Config) SeedItems() []domain.Item {
	if c.Seed == nil {
		return domain.SeedItems()
	}
	items := make([]domain.Item, len(c.Seed))
	for i, it := range c.Seed {
		items[i] = domain.Item{
			ID:          domain.FirstID + i,
			Name:        it.Name,
			IsCompleted: it.Completed,
		}
	}
	return items
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
