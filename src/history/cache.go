package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Cache serves historical series per entity from a TTL cache backed by the
// remote history endpoint. A reserved aggregate slot holds the series named by
// the aggregate key, independent of the entity it was fetched for.
// -----------------------------------------------------------------------------

type Cache struct {
	endpoint     string
	aggregateKey string
	ttl          time.Duration
	loc          *time.Location

	network interfaces.INetworkManager
	store   interfaces.ICacheStore
	clock   utils.Clock
	Logger  *logger.Logger

	requests atomic.Int64
	hits     atomic.Int64
	failures atomic.Int64
}

// CacheStats counts cache activity since start
type CacheStats struct {
	Requests int64 `json:"requests"`
	Hits     int64 `json:"hits"`
	Failures int64 `json:"failures"`
}

// -----------------------------------------------------------------------------

func NewCache(cfg *models.MConfig, loc *time.Location, nm interfaces.INetworkManager, backend interfaces.ICacheStore, clock utils.Clock, log *logger.Logger) *Cache {
	if loc == nil {
		loc = time.Local
	}
	if backend == nil {
		backend = NewMemoryStore()
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	if log == nil {
		log = logger.NewLogger(cfg, "History")
	}

	return &Cache{
		endpoint:     strings.TrimRight(cfg.History.Endpoint, "/"),
		aggregateKey: cfg.History.AggregateKey,
		ttl:          time.Duration(cfg.History.CacheTTLMs) * time.Millisecond,
		loc:          loc,
		network:      nm,
		store:        backend,
		clock:        clock,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// Fetch returns one timeframe of history for entityID. The second result is
// false when the data is unavailable; failures are logged, never returned.
func (c *Cache) Fetch(ctx context.Context, entityID, timeframe string) (*models.MHistorySeries, bool) {
	now := c.clock.Now()

	// 1. Aggregate slot answers for any entity
	if timeframe == c.aggregateKey {
		if entry, ok := c.store.GetAggregate(ctx); ok && c.fresh(entry, now) {
			c.hits.Add(1)
			return seriesOf(entry, timeframe)
		}
	}

	// 2. Fresh per-entity entry answers even when the timeframe is missing
	if entry, ok := c.store.GetEntity(ctx, entityID); ok && c.fresh(entry, now) {
		c.hits.Add(1)
		return seriesOf(entry, timeframe)
	}

	// 3. Remote fetch
	c.requests.Add(1)
	resp, err := c.download(ctx, entityID)
	if err != nil {
		c.failures.Add(1)
		c.Logger.Error("Failed to fetch historical data for %s: %v", entityID, err)
		return nil, false
	}

	// 4. Aggregate short-circuit, stored as received
	if timeframe == c.aggregateKey {
		if agg, ok := resp[c.aggregateKey]; ok {
			entry := models.MCacheEntry{
				Series:    map[string]models.MHistorySeries{c.aggregateKey: agg},
				FetchedAt: now,
			}
			if err := c.store.SetAggregate(ctx, entry); err != nil {
				c.Logger.Warning("Failed to cache aggregate series: %v", err)
			}
			return seriesOf(&entry, timeframe)
		}
	}

	processed := make(map[string]models.MHistorySeries, len(resp))
	for key, series := range resp {
		if key == c.aggregateKey {
			continue
		}
		labels, err := NormalizeLabels(series.Labels, c.loc)
		if err != nil {
			c.failures.Add(1)
			c.Logger.Error("Failed to fetch historical data for %s: %s: %v", entityID, key, err)
			return nil, false
		}
		processed[key] = models.MHistorySeries{Labels: labels, Data: series.Data}
	}

	// 5. Replace the entity entry wholesale
	entry := models.MCacheEntry{Series: processed, FetchedAt: now}
	if err := c.store.SetEntity(ctx, entityID, entry); err != nil {
		c.Logger.Warning("Failed to cache history for %s: %v", entityID, err)
	}

	return seriesOf(&entry, timeframe)
}

// -----------------------------------------------------------------------------

func (c *Cache) fresh(entry *models.MCacheEntry, now time.Time) bool {
	return now.Sub(entry.FetchedAt) < c.ttl
}

// -----------------------------------------------------------------------------

func (c *Cache) download(ctx context.Context, entityID string) (models.MHistoryResponse, error) {
	if c.network == nil {
		return nil, fmt.Errorf("no network manager configured")
	}

	body, err := c.network.Get(ctx, c.endpoint+"/"+url.PathEscape(entityID), nil)
	if err != nil {
		return nil, err
	}

	var resp models.MHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewDecodeError("invalid history payload", err)
	}
	if resp == nil {
		return nil, helpers.NewDecodeError("history payload is not an object", nil)
	}
	return resp, nil
}

// -----------------------------------------------------------------------------

// seriesOf copies one timeframe out of an entry so callers cannot mutate the cache
func seriesOf(entry *models.MCacheEntry, timeframe string) (*models.MHistorySeries, bool) {
	s, ok := entry.Series[timeframe]
	if !ok {
		return nil, false
	}
	out := models.MHistorySeries{
		Labels: append([]string(nil), s.Labels...),
		Data:   append([]float64(nil), s.Data...),
	}
	return &out, true
}

// -----------------------------------------------------------------------------

// Location is the zone labels are rendered in
func (c *Cache) Location() *time.Location {
	return c.loc
}

// -----------------------------------------------------------------------------

// AggregateKey is the reserved timeframe label of the aggregate slot
func (c *Cache) AggregateKey() string {
	return c.aggregateKey
}

// -----------------------------------------------------------------------------

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Requests: c.requests.Load(),
		Hits:     c.hits.Load(),
		Failures: c.failures.Load(),
	}
}

var _ interfaces.IHistoryFetcher = (*Cache)(nil)
