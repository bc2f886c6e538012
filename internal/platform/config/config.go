// Package config assembles runtime configuration. A YAML file supplies the
// base (when NAMEWATCH_CONFIG points at one) and environment variables
// override individual values, so main stays lean and containers can tweak
// single knobs without shipping a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Lookup  Lookup  `yaml:"lookup"`
	Cache   Cache   `yaml:"cache"`
	Monitor Monitor `yaml:"monitor"`
	Cleanup Cleanup `yaml:"cleanup"`
}

type Server struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

type Storage struct {
	// PostgresURL selects the Postgres stores; empty means in-memory.
	PostgresURL string `yaml:"postgres_url"`
	// RedisURL selects the Redis result cache; empty means in-memory.
	RedisURL string `yaml:"redis_url"`
}

type Lookup struct {
	Timeout   Duration `yaml:"timeout"`
	DNSServer string   `yaml:"dns_server"`
}

type Cache struct {
	AvailableTTL  Duration `yaml:"available_ttl"`
	RegisteredTTL Duration `yaml:"registered_ttl"`
	UnknownTTL    Duration `yaml:"unknown_ttl"`
}

type Monitor struct {
	CycleInterval Duration `yaml:"cycle_interval"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	ExpiryHorizon Duration `yaml:"expiry_horizon"`
	ErrorBackoff  Duration `yaml:"error_backoff"`
}

type Cleanup struct {
	// Schedule is a cron expression for the maintenance sweep.
	Schedule       string   `yaml:"schedule"`
	EventRetention Duration `yaml:"event_retention"`
}

func defaults() Config {
	return Config{
		Server: Server{Addr: ":8080", LogLevel: "info"},
		Lookup: Lookup{Timeout: Duration(10 * time.Second), DNSServer: "8.8.8.8:53"},
		Cache: Cache{
			AvailableTTL:  Duration(time.Hour),
			RegisteredTTL: Duration(24 * time.Hour),
			UnknownTTL:    Duration(time.Hour),
		},
		Monitor: Monitor{
			CycleInterval: Duration(time.Minute),
			MaxConcurrent: 5,
			ExpiryHorizon: Duration(30 * 24 * time.Hour),
			ErrorBackoff:  Duration(time.Minute),
		},
		Cleanup: Cleanup{
			Schedule:       "0 3 * * *",
			EventRetention: Duration(90 * 24 * time.Hour),
		},
	}
}

// Load builds the config: defaults, then the YAML file named by
// NAMEWATCH_CONFIG (if any), then environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("NAMEWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NAMEWATCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("NAMEWATCH_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("NAMEWATCH_POSTGRES_URL"); v != "" {
		cfg.Storage.PostgresURL = v
	}
	if v := os.Getenv("NAMEWATCH_REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("NAMEWATCH_LOOKUP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Lookup.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("NAMEWATCH_DNS_SERVER"); v != "" {
		cfg.Lookup.DNSServer = v
	}
	if v := os.Getenv("NAMEWATCH_MONITOR_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.CycleInterval = Duration(d)
		}
	}
}
