package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "tally.yaml"

// Config represents tally.yaml.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend"` // memory, file, redis or postgres
	Path     string         `yaml:"path,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Username  string `yaml:"username,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN   string `yaml:"dsn,omitempty"`
	Table string `yaml:"table,omitempty"`
}

// DisplayConfig controls CLI rendering.
type DisplayConfig struct {
	Currency    string `yaml:"currency"`
	RecentLimit int    `yaml:"recent_limit"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SessionConfig holds the active user. It only selects a namespace.
type SessionConfig struct {
	User string `yaml:"user,omitempty"`
}

// Backend names.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads a config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Update rewrites the config file at path after applying fn to its
// unresolved contents.
func Update(path string, fn func(*Config)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	fn(cfg)
	return Save(path, cfg)
}

// Default returns a Config using a JSON snapshot file under .tally.
func Default() *Config {
	return &Config{
		DataDir: ".tally",
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(".tally", "store.json"),
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "tally:",
			},
			Postgres: PostgresConfig{
				Table: "tally_kv",
			},
		},
		Display: DisplayConfig{
			Currency:    "USD",
			RecentLimit: 5,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// resolve makes relative paths relative to the config file's directory.
func (c *Config) resolve(base string) {
	if c.DataDir != "" && !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(base, c.DataDir)
	}
	if c.Storage.Path != "" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(base, c.Storage.Path)
	}
}
