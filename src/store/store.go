package store

import (
	"sync"
	"time"

	"monitor-dashboard/src/models"
	"monitor-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// RealtimeStore holds the latest value of every realtime metric key.
// It is shared by pointer: the channel writes it, the server and chart
// binding read it. Entries are never removed.
// -----------------------------------------------------------------------------

type RealtimeStore struct {
	mu          sync.RWMutex
	values      map[string]any
	updatedAt   time.Time
	clock       utils.Clock
	subscribers map[int]chan models.MRealtimeUpdate
	nextSubID   int
}

// -----------------------------------------------------------------------------

// NewRealtimeStore creates an empty store. clock may be nil.
func NewRealtimeStore(clock utils.Clock) *RealtimeStore {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &RealtimeStore{
		values:      make(map[string]any),
		clock:       clock,
		subscribers: make(map[int]chan models.MRealtimeUpdate),
	}
}

// -----------------------------------------------------------------------------

// Merge writes every key of the frame into the store, last write wins,
// and notifies subscribers with the changed keys.
func (s *RealtimeStore) Merge(frame models.MRealtimeFrame) models.MRealtimeUpdate {
	now := s.clock.Now()
	update := models.MRealtimeUpdate{
		Values:    make(map[string]any, len(frame)),
		Timestamp: now.UnixMilli(),
	}

	s.mu.Lock()
	for k, v := range frame {
		s.values[k] = v
		update.Values[k] = v
	}
	s.updatedAt = now

	// Slow subscribers lose updates rather than blocking the feed
	for _, ch := range s.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
	s.mu.Unlock()

	return update
}

// -----------------------------------------------------------------------------

// Set writes a single key
func (s *RealtimeStore) Set(key string, value any) {
	s.Merge(models.MRealtimeFrame{key: value})
}

// -----------------------------------------------------------------------------

// Get reads a single key
func (s *RealtimeStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of all values
func (s *RealtimeStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// Len returns the number of keys held
func (s *RealtimeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// -----------------------------------------------------------------------------

// UpdatedAt is the time of the last merge (zero before the first one)
func (s *RealtimeStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// -----------------------------------------------------------------------------

// Subscribe registers for change notifications. The returned cancel func
// unregisters and closes the channel; calling it twice is safe.
func (s *RealtimeStore) Subscribe(buffer int) (<-chan models.MRealtimeUpdate, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan models.MRealtimeUpdate, buffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
