package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cache entries between dashboard instances. Entries are
// written as JSON with an expiry equal to the cache TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisStore(cfg *models.MConfig, ttl time.Duration, log *logger.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return NewRedisStoreWithClient(rdb, cfg.Redis.KeyPrefix, ttl, log)
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(rdb *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *RedisStore {
	if log == nil {
		log = logger.NewLogger(nil, "RedisCache")
	}
	if prefix == "" {
		prefix = "monitor"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl, Logger: log}
}

// -----------------------------------------------------------------------------

// Ping checks connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", s.rdb.Options().Addr, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// -----------------------------------------------------------------------------

func (s *RedisStore) entityKey(entityID string) string {
	return fmt.Sprintf("%s:history:entity:%s", s.prefix, entityID)
}

func (s *RedisStore) aggregateKey() string {
	return fmt.Sprintf("%s:history:aggregate", s.prefix)
}

// -----------------------------------------------------------------------------

func (s *RedisStore) get(ctx context.Context, key string) (*models.MCacheEntry, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.Logger.Warning("Redis GET %s failed: %v", key, err)
		return nil, false
	}

	var entry models.MCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.Logger.Warning("Discarding unreadable cache entry %s: %v", key, err)
		return nil, false
	}
	return &entry, true
}

// -----------------------------------------------------------------------------

func (s *RedisStore) set(ctx context.Context, key string, entry models.MCacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) GetEntity(ctx context.Context, entityID string) (*models.MCacheEntry, bool) {
	return s.get(ctx, s.entityKey(entityID))
}

func (s *RedisStore) SetEntity(ctx context.Context, entityID string, entry models.MCacheEntry) error {
	return s.set(ctx, s.entityKey(entityID), entry)
}

func (s *RedisStore) GetAggregate(ctx context.Context) (*models.MCacheEntry, bool) {
	return s.get(ctx, s.aggregateKey())
}

func (s *RedisStore) SetAggregate(ctx context.Context, entry models.MCacheEntry) error {
	return s.set(ctx, s.aggregateKey(), entry)
}

var _ interfaces.ICacheStore = (*RedisStore)(nil)
