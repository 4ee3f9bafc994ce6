package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	for _, driver := range []string{"redis", "memory"} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache.Driver = driver
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for driver %q: %v", driver, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Cache.Driver = "memcached"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `cache.driver must be "redis" or "memory", got "memcached"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_CacheCodec(t *testing.T) {
	for _, codec := range []string{"json", "msgpack", "cbor"} {
		t.Run("codec="+codec, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache.Codec = codec
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for codec %q: %v", codec, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Cache.Codec = "gob"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown codec")
	}
}

func TestValidate_CachePrefixCoversDocuments(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.KeyPrefix = "srdex:"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when cache flush could reach document keys")
	}

	// The memory driver never scans the database.
	cfg.Cache.Driver = "memory"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Cache.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTL() != time.Hour {
		t.Errorf("expected TTL=1h, got %v", cfg.Cache.TTL())
	}
	if cfg.Cache.Codec != "json" {
		t.Errorf("expected Codec=json, got %q", cfg.Cache.Codec)
	}
	if cfg.Cache.KeyPrefix != "srdex:cache:" {
		t.Errorf("expected cache KeyPrefix='srdex:cache:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.Memory.MaxCostMB != 64 {
		t.Errorf("expected MaxCostMB=64, got %d", cfg.Cache.Memory.MaxCostMB)
	}
	if cfg.Storage.KeyPrefix != "srdex:" {
		t.Errorf("expected KeyPrefix='srdex:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Cache:    CacheConfig{Driver: "memory", TTLSec: 60, Codec: "cbor", KeyPrefix: "c:"},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.Driver != "memory" || cfg.Cache.Codec != "cbor" || cfg.Cache.KeyPrefix != "c:" {
		t.Errorf("cache settings overridden: %+v", cfg.Cache)
	}
	if cfg.Cache.TTL() != time.Minute {
		t.Errorf("expected TTL=1m, got %v", cfg.Cache.TTL())
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SRDEX_TEST_ADDR", "redis:6379")
	t.Setenv("SRDEX_TEST_EMPTY", "")

	in := "a: ${SRDEX_TEST_ADDR}\nb: ${SRDEX_TEST_EMPTY:-fallback}\nc: ${SRDEX_TEST_UNSET:-x}\nd: ${SRDEX_TEST_UNSET}\n"
	got := string(expandEnvVars([]byte(in)))
	want := "a: redis:6379\nb: fallback\nc: x\nd: \n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("REDIS_ADDR", "db.internal:6379")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if len(cfg.Database.Addrs) == 0 || !strings.Contains(cfg.Database.Addrs[0], "db.internal") {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
