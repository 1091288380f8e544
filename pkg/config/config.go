// Package config loads and saves the CLI configuration file.
//
// Values are resolved in order: built-in defaults, the JSON config file
// (comments and trailing commas are tolerated), then environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"

	"github.com/Sternrassler/ovh-cli/pkg/cache"
	"github.com/Sternrassler/ovh-cli/pkg/client"
)

// FileName is the config file name inside the home directory.
const FileName = ".ovh-cli.config.json"

// DefaultCacheTTL is one day.
const DefaultCacheTTL Seconds = 86400

var (
	// ErrInvalidConfig is returned by Validate
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound is returned by LoadFile when the file does not exist
	ErrNotFound = errors.New("configuration file not found")
)

// Config is the persisted CLI configuration.
type Config struct {
	ApplicationKey    string  `json:"applicationKey" env:"OVH_APPLICATION_KEY"`
	ApplicationSecret string  `json:"applicationSecret" env:"OVH_APPLICATION_SECRET"`
	ConsumerKey       string  `json:"consumerKey" env:"OVH_CONSUMER_KEY"`
	Endpoint          string  `json:"endpoint" env:"OVH_ENDPOINT"`
	CacheTTL          Seconds `json:"cache_ttl" env:"OVH_CACHE_TTL"`

	// CacheBackend is "file" or "redis"
	CacheBackend string `json:"cache_backend,omitempty" env:"OVHCLI_CACHE_BACKEND"`
	CacheDir     string `json:"cache_dir,omitempty" env:"OVHCLI_CACHE_DIR"`
	RedisAddr    string `json:"redis_addr,omitempty" env:"OVHCLI_REDIS_ADDR"`

	// Editor is used to compose ticket replies
	Editor string `json:"editor,omitempty" env:"EDITOR"`
}

// Default returns a configuration with defaults and no credentials.
func Default() *Config {
	return &Config{
		Endpoint:     client.DefaultEndpoint,
		CacheTTL:     DefaultCacheTTL,
		CacheBackend: cache.BackendFile,
		RedisAddr:    "localhost:6379",
	}
}

// DefaultPath returns ~/.ovh-cli.config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load resolves the configuration from defaults, path and the environment.
// A missing file is not an error; Validate reports missing credentials.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.LoadFile(path); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// LoadFile merges the JSON file at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks credentials, endpoint and cache settings.
func (c *Config) Validate() error {
	var missing []string
	if c.ApplicationKey == "" {
		missing = append(missing, "applicationKey")
	}
	if c.ApplicationSecret == "" {
		missing = append(missing, "applicationSecret")
	}
	if c.ConsumerKey == "" {
		missing = append(missing, "consumerKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if _, err := client.ResolveEndpoint(c.Endpoint); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}

	switch c.CacheBackend {
	case "", cache.BackendFile:
	case cache.BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis cache backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}

	return nil
}

// Save writes the configuration to path with owner-only permissions.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}

// CacheOptions returns the cache backend options.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.CacheBackend,
		Dir:       c.CacheDir,
		RedisAddr: c.RedisAddr,
	}
}
