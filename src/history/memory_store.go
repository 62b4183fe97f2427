package history

import (
	"context"
	"sync"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/models"
)

// MemoryStore keeps cache entries in process. It has no size bound.
type MemoryStore struct {
	mu        sync.RWMutex
	entities  map[string]models.MCacheEntry
	aggregate *models.MCacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[string]models.MCacheEntry)}
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) GetEntity(_ context.Context, entityID string) (*models.MCacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[entityID]
	if !ok {
		return nil, false
	}
	return &e, true
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) SetEntity(_ context.Context, entityID string, entry models.MCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[entityID] = entry
	return nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) GetAggregate(_ context.Context) (*models.MCacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aggregate == nil {
		return nil, false
	}
	e := *s.aggregate
	return &e, true
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) SetAggregate(_ context.Context, entry models.MCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aggregate = &entry
	return nil
}

var _ interfaces.ICacheStore = (*MemoryStore)(nil)
