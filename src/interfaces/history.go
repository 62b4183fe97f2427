package interfaces

import (
	"context"

	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ICacheStore persists history cache entries. Freshness is decided by the
// caller from MCacheEntry.FetchedAt; backends may expire entries on their own.
// -----------------------------------------------------------------------------

type ICacheStore interface {
	// GetEntity returns the per-entity entry, if any.
	GetEntity(ctx context.Context, entityID string) (*models.MCacheEntry, bool)

	// SetEntity replaces the per-entity entry wholesale.
	SetEntity(ctx context.Context, entityID string, entry models.MCacheEntry) error

	// GetAggregate returns the reserved aggregate slot, if any.
	GetAggregate(ctx context.Context) (*models.MCacheEntry, bool)

	// SetAggregate replaces the aggregate slot.
	SetAggregate(ctx context.Context, entry models.MCacheEntry) error
}

// -----------------------------------------------------------------------------
// IHistoryFetcher returns one timeframe of historical data for an entity.
// -----------------------------------------------------------------------------

type IHistoryFetcher interface {
	Fetch(ctx context.Context, entityID, timeframe string) (*models.MHistorySeries, bool)
}
