package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides applies MONITOR_* environment variables to the config.
func applyEnvOverrides(c *Config) error {
	if val := os.Getenv("MONITOR_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("MONITOR_HOST"); val != "" {
		c.Host = val
	}
	if err := envInt("MONITOR_PORT", &c.Port); err != nil {
		return err
	}
	if err := envInt("MONITOR_GRPC_PORT", &c.GrpcPort); err != nil {
		return err
	}

	// Realtime
	if val := os.Getenv("MONITOR_WS_URL"); val != "" {
		c.Realtime.Endpoint = val
	}
	if err := envInt("MONITOR_RECONNECT_DELAY_MS", &c.Realtime.ReconnectDelayMs); err != nil {
		return err
	}

	// History
	if val := os.Getenv("MONITOR_API_URL"); val != "" {
		c.History.Endpoint = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("MONITOR_HISTORY_WARMUP_ENTITY"); val != "" {
		c.History.WarmupEntity = val
	}
	if err := envInt("MONITOR_CACHE_TTL_MS", &c.History.CacheTTLMs); err != nil {
		return err
	}
	if val := os.Getenv("MONITOR_TIMEZONE"); val != "" {
		c.History.Timezone = val
	}
	if val := os.Getenv("MONITOR_CACHE_BACKEND"); val != "" {
		c.History.CacheBackend = val
	}

	// Redis
	if val := os.Getenv("MONITOR_REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("MONITOR_REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Storage
	if val := os.Getenv("MONITOR_DB_TYPE"); val != "" {
		c.Storage.DBType = val
	}
	if val := os.Getenv("MONITOR_DB_PATH"); val != "" {
		c.Storage.DBPath = val
	}
	if val := os.Getenv("MONITOR_DB_DSN"); val != "" {
		c.Storage.DBConnectionString = val
	}

	// NATS
	if val := os.Getenv("MONITOR_NATS_URL"); val != "" {
		c.NATS.Servers = strings.Split(val, ",")
		c.NATS.Enabled = true
	}

	return nil
}

// -----------------------------------------------------------------------------

func envInt(key string, dst *int) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}
