package main

import (
	"context"
	"time"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"
)

const (
	cleanupInterval     = time.Hour
	memoryCheckInterval = time.Minute
	updateBuffer        = 256
)

// dataSinks receive every store update. Database and Publisher may be nil.
type dataSinks struct {
	Series    *utils.SeriesManager
	Database  interfaces.IDatabase
	Publisher interfaces.IPublisher
	Exchanger interfaces.IDataExchanger
}

// -----------------------------------------------------------------------------

// runDataLoop fans store updates out to the sinks until ctx is done
func runDataLoop(
	ctx context.Context,
	rtStore *store.RealtimeStore,
	sinks dataSinks,
	errHandler *helpers.ErrorHandler,
	appLogger *logger.Logger,
) {
	updates, unsubscribe := rtStore.Subscribe(updateBuffer)
	defer unsubscribe()

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()
	memCheck := time.NewTicker(memoryCheckInterval)
	defer memCheck.Stop()

	appLogger.Info("Starting data loop (Push Model)...")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				appLogger.Info("Store subscription closed.")
				return
			}

			samples := sinks.Series.AddUpdate(update)

			if sinks.Database != nil && len(samples) > 0 {
				errHandler.Handle(sinks.Database.SaveSamples(samples), "sample recorder")
			}
			if sinks.Publisher != nil && sinks.Publisher.IsConnected() {
				errHandler.Handle(sinks.Publisher.OnUpdate(update), "publisher")
			}

			sinks.Exchanger.BroadcastUpdate(update)

		case <-cleanup.C:
			if sinks.Database != nil {
				errHandler.Handle(sinks.Database.CleanupOldData(), "retention cleanup")
			}

		case <-memCheck.C:
			sinks.Series.CheckMemoryLimits()

		case <-ctx.Done():
			return
		}
	}
}
