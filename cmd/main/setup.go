package main

import (
	"context"
	"time"

	"monitor-dashboard/src/config"
	"monitor-dashboard/src/history"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/network"
	"monitor-dashboard/src/publishers"
	"monitor-dashboard/src/serializers"
	"monitor-dashboard/src/storage"
	"monitor-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// setupDatabase initializes the sample recorder. It returns nil when
// recording is disabled.
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	db, err := storage.NewDatabase(config, logger.NewLogger(config, "SampleRecorder"))
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return nil, err
	}
	if db == nil {
		appLogger.Info("Sample recording disabled")
		return nil, nil
	}
	if err := db.Initialize(); err != nil {
		appLogger.Error("Failed to migrate db: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewAsyncNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupCacheBackend picks the history cache store. Redis falls back to
// memory when unreachable at startup.
func setupCacheBackend(conf *config.Config, appLogger *logger.Logger) (interfaces.ICacheStore, func()) {
	if conf.History.CacheBackend != "redis" {
		return history.NewMemoryStore(), func() {}
	}

	rs := history.NewRedisStore(conf.MConfig, conf.CacheTTL(), logger.NewLogger(conf, "RedisCache"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		appLogger.Warning("Redis cache unavailable (%v), using in-memory cache", err)
		rs.Close()
		return history.NewMemoryStore(), func() {}
	}

	appLogger.Info("History cache backed by Redis at %s", conf.Redis.Addr)
	return rs, func() { rs.Close() }
}

// -----------------------------------------------------------------------------

// setupHistory builds the history cache
func setupHistory(config *models.MConfig, loc *time.Location, nm interfaces.INetworkManager, backend interfaces.ICacheStore, clock utils.Clock) *history.Cache {
	return history.NewCache(config, loc, nm, backend, clock, logger.NewLogger(config, "HistoryCache"))
}

// -----------------------------------------------------------------------------

// setupPublisher connects the NATS republisher when enabled
func setupPublisher(config *models.MConfig, appLogger *logger.Logger) interfaces.IPublisher {
	if !config.NATS.Enabled {
		return nil
	}

	publisher := publishers.NewNATSPublisher(&config.NATS, logger.NewLogger(config, "NATSPublisher"), serializers.NewJSONSerializer())
	if err := publisher.Connect(); err != nil {
		appLogger.Error("NATS publisher disabled: %v", err)
		return nil
	}
	return publisher
}
