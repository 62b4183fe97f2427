package main

import (
	"context"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/utils"
)

// performInitialLoad warms the history cache and refills the live series
// from recorded samples so charts have data before the first push frame.
func performInitialLoad(
	ctx context.Context,
	historyFetcher interfaces.IHistoryFetcher,
	db interfaces.IDatabase,
	series *utils.SeriesManager,
	config *models.MConfig,
	appLogger *logger.Logger,
) {
	// Asking for the aggregate key fills the shared aggregate slot
	entity, key := config.History.WarmupEntity, config.History.AggregateKey
	if entity != "" && key != "" {
		appLogger.Info("Fetching initial %s history via %s...", key, entity)
		if _, ok := historyFetcher.Fetch(ctx, entity, key); !ok {
			appLogger.Warning("Initial %s history fetch via %s returned nothing", key, entity)
		}
	}

	if db == nil {
		return
	}

	metrics, err := db.ListMetrics()
	if err != nil {
		appLogger.Warning("Could not list recorded metrics: %v", err)
		return
	}

	restored := 0
	for _, metric := range metrics {
		samples, err := db.QuerySamples(metric, 0, series.MaxDataPoints)
		if err != nil {
			appLogger.Warning("Could not restore %s: %v", metric, err)
			continue
		}
		for _, s := range samples {
			series.AddSample(s)
		}
		restored += len(samples)
	}

	appLogger.Info("Initialization complete. Restored %d samples across %d metrics.", restored, len(metrics))
}
