package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"monitor-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Endpoint and timing constants used when nothing overrides them
const (
	DefaultRealtimeEndpoint = "wss://monitor.jeremiz.com/ws"
	DefaultHistoryEndpoint  = "https://monitor.jeremiz.com/api"
	DefaultReconnectDelayMs = 3000
	DefaultCacheTTLMs       = 60000
	DefaultAggregateKey     = "totalMem"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "monitor-dashboard",
		Host:     "127.0.0.1",
		Port:     8090,
		LogLevel: "INFO",
		GrpcHost: "127.0.0.1",
		GrpcPort: 50061,
		Realtime: models.MRealtimeConfig{
			Endpoint:                DefaultRealtimeEndpoint,
			ReconnectDelayMs:        DefaultReconnectDelayMs,
			HandshakeTimeoutSeconds: 10,
			ReadLimitBytes:          1024 * 1024,
		},
		History: models.MHistoryConfig{
			Endpoint:     DefaultHistoryEndpoint,
			CacheTTLMs:   DefaultCacheTTLMs,
			AggregateKey: DefaultAggregateKey,
			Timezone:     "Local",
			CacheBackend: "memory",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 0,
			MaxRetries:     0,
			UserAgent:      "monitor-dashboard/1.0",
		},
		Redis: models.MRedisConfig{
			Addr:      "127.0.0.1:6379",
			KeyPrefix: "monitor",
		},
		Storage: models.MStorageConfig{
			DBType:        "none",
			DBPath:        "monitor.db",
			RetentionDays: 7,
		},
		NATS: models.MNATSConfig{
			Servers:               []string{"nats://127.0.0.1:4222"},
			ClientID:              "monitor-dashboard",
			SubjectPrefix:         "monitor.metrics",
			ConnectTimeoutSeconds: 5,
			ReconnectWaitSeconds:  2,
			MaxReconnects:         -1,
		},
		LiveSeries: models.MLiveSeriesConfig{
			Capacity: 720,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig builds the configuration: defaults, then .env, then the YAML file
// (when present), then MONITOR_* environment overrides.
func NewConfig(configPath string) (*Config, error) {
	// 1. Pick up a local .env if there is one
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := DefaultConfig()

	// 2. Overlay the YAML file content
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config.MConfig); err != nil {
				return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		default:
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
	}

	// 3. Environment overrides
	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid gRPC port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Realtime
	if !strings.HasPrefix(c.Realtime.Endpoint, "ws://") && !strings.HasPrefix(c.Realtime.Endpoint, "wss://") {
		return fmt.Errorf("realtime endpoint must be a ws:// or wss:// URL: %q", c.Realtime.Endpoint)
	}
	if c.Realtime.ReconnectDelayMs <= 0 {
		return fmt.Errorf("reconnect delay must be greater than 0")
	}

	// History
	if !strings.HasPrefix(c.History.Endpoint, "http://") && !strings.HasPrefix(c.History.Endpoint, "https://") {
		return fmt.Errorf("history endpoint must be an http(s) URL: %q", c.History.Endpoint)
	}
	if c.History.CacheTTLMs <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	if c.History.AggregateKey == "" {
		return fmt.Errorf("aggregate key cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.History.CacheBackend {
	case "memory", "":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address cannot be empty for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s", c.History.CacheBackend)
	}

	// Network
	if c.Network.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Storage
	switch c.Storage.DBType {
	case "none", "":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
	}
	if c.Storage.DBType != "none" && c.Storage.DBType != "" && c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be greater than 0")
	}

	// NATS
	if c.NATS.Enabled {
		if len(c.NATS.Servers) == 0 {
			return fmt.Errorf("NATS servers list cannot be empty")
		}
		if c.NATS.SubjectPrefix == "" {
			return fmt.Errorf("NATS subject prefix cannot be empty")
		}
	}

	if c.LiveSeries.Capacity < 0 {
		return fmt.Errorf("live series capacity cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------
// Derived values
// -----------------------------------------------------------------------------

// GetLogLevel lets the logger read the level from a *Config
func (c *Config) GetLogLevel() string {
	return c.LogLevel
}

// ReconnectDelay is the fixed delay between a close and the next dial
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Realtime.ReconnectDelayMs) * time.Millisecond
}

// CacheTTL is the history cache validity window
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.History.CacheTTLMs) * time.Millisecond
}

// Location resolves the zone history labels are rendered in
func (c *Config) Location() (*time.Location, error) {
	switch c.History.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.History.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid history timezone %q: %w", c.History.Timezone, err)
	}
	return loc, nil
}
