package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the srdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds list cache settings.
type CacheConfig struct {
	Driver       string            `yaml:"driver"` // redis, memory (default: redis)
	TTLSec       int               `yaml:"ttl_sec"`
	KeyPrefix    string            `yaml:"key_prefix"`
	Codec        string            `yaml:"codec"` // json, msgpack, cbor (default: json)
	FlushOnStart bool              `yaml:"flush_on_start"`
	Memory       MemoryCacheConfig `yaml:"memory"`
}

// MemoryCacheConfig sizes the in-process cache.
type MemoryCacheConfig struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCostMB   int64 `yaml:"max_cost_mb"`
	BufferItems int64 `yaml:"buffer_items"`
}

// StorageConfig holds document key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// TTL returns the list cache expiry.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "redis"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "srdex:cache:"
	}
	if c.Cache.Codec == "" {
		c.Cache.Codec = "json"
	}
	if c.Cache.Memory.NumCounters <= 0 {
		c.Cache.Memory.NumCounters = 100_000
	}
	if c.Cache.Memory.MaxCostMB <= 0 {
		c.Cache.Memory.MaxCostMB = 64
	}
	if c.Cache.Memory.BufferItems <= 0 {
		c.Cache.Memory.BufferItems = 64
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "srdex:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Cache.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache.driver must be \"redis\" or \"memory\", got %q", c.Cache.Driver)
	}
	switch c.Cache.Codec {
	case "json", "msgpack", "cbor":
	default:
		return fmt.Errorf("cache.codec must be one of json, msgpack, cbor, got %q", c.Cache.Codec)
	}
	// Flushing must never reach document keys.
	if c.Cache.Driver == "redis" && strings.HasPrefix(c.Storage.KeyPrefix, c.Cache.KeyPrefix) {
		return fmt.Errorf("cache.key_prefix %q must not be a prefix of storage.key_prefix %q",
			c.Cache.KeyPrefix, c.Storage.KeyPrefix)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
