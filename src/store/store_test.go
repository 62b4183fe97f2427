package store

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"monitor-dashboard/src/models"
	"monitor-dashboard/src/utils"
)

func TestMergeIsLastWriteWins(t *testing.T) {
	s := NewRealtimeStore(nil)

	s.Merge(models.MRealtimeFrame{"a": 1.0, "b": 2.0})
	s.Merge(models.MRealtimeFrame{"b": 3.0, "c": 4.0})

	want := map[string]any{"a": 1.0, "b": 3.0, "c": 4.0}
	if got := s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewRealtimeStore(nil)
	s.Set("a", 1.0)

	snap := s.Snapshot()
	snap["a"] = 99.0
	snap["z"] = 1.0

	if v, _ := s.Get("a"); v != 1.0 {
		t.Errorf("Get(a) = %v after mutating snapshot, want 1", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestEmptyFrameKeepsState(t *testing.T) {
	s := NewRealtimeStore(nil)
	s.Set("a", "x")
	s.Merge(models.MRealtimeFrame{})

	if v, ok := s.Get("a"); !ok || v != "x" {
		t.Errorf("Get(a) = %v, %v; want x, true", v, ok)
	}
}

func TestSubscribeReceivesChangedKeysOnly(t *testing.T) {
	clock := utils.NewManualClock(time.UnixMilli(5000))
	s := NewRealtimeStore(clock)
	s.Set("a", 1.0)

	updates, cancel := s.Subscribe(4)
	defer cancel()

	s.Merge(models.MRealtimeFrame{"b": 2.0})

	select {
	case u := <-updates:
		if !reflect.DeepEqual(u.Values, map[string]any{"b": 2.0}) {
			t.Errorf("update values = %v, want only b", u.Values)
		}
		if u.Timestamp != 5000 {
			t.Errorf("update timestamp = %d, want 5000", u.Timestamp)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestSlowSubscriberDoesNotBlockMerge(t *testing.T) {
	s := NewRealtimeStore(nil)
	_, cancel := s.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.Set("k", float64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Merge blocked on a full subscriber")
	}
	if v, _ := s.Get("k"); v != 9.0 {
		t.Errorf("Get(k) = %v, want 9", v)
	}
}

func TestCancelClosesChannelOnce(t *testing.T) {
	s := NewRealtimeStore(nil)
	updates, cancel := s.Subscribe(1)

	cancel()
	cancel()

	if _, ok := <-updates; ok {
		t.Error("channel still open after cancel")
	}
	// Merging after cancel must not panic on the closed channel
	s.Set("a", 1.0)
}

func TestConcurrentMerges(t *testing.T) {
	s := NewRealtimeStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Merge(models.MRealtimeFrame{"shared": float64(j), "own": float64(i)})
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
