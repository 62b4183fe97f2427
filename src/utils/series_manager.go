package utils

import (
	"runtime"
	"runtime/debug"
	"sort"
	"sync"

	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// SeriesManager keeps the live tail of every numeric realtime metric in
// per-metric ring buffers.
// -----------------------------------------------------------------------------

type SeriesManager struct {
	Streams       map[string]*RingBuffer
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewSeriesManager(maxDataPoints int, log *logger.Logger) *SeriesManager {
	if maxDataPoints <= 0 {
		maxDataPoints = DefaultSeriesCapacity
	}
	if log == nil {
		log = logger.NewLogger(nil, "LiveSeries")
	}
	return &SeriesManager{
		Streams:       make(map[string]*RingBuffer),
		MaxMemoryMB:   256,
		MaxDataPoints: maxDataPoints,
		Logger:        log,
	}
}

// -----------------------------------------------------------------------------

// AddSample appends one sample to the buffer of its metric
func (sm *SeriesManager) AddSample(sample models.MMetricSample) {
	sm.mu.Lock()
	buffer, ok := sm.Streams[sample.Metric]
	if !ok {
		buffer = NewRingBuffer(sm.MaxDataPoints)
		sm.Streams[sample.Metric] = buffer
	}
	buffer.Append(sample)
	check := buffer.Size()%100 == 0
	sm.mu.Unlock()

	// Periodic memory check
	if check {
		sm.CheckMemoryLimits()
	}
}

// -----------------------------------------------------------------------------

// AddUpdate records every numeric value of a store update and returns the
// samples it produced. Non-numeric values are skipped.
func (sm *SeriesManager) AddUpdate(update models.MRealtimeUpdate) []models.MMetricSample {
	keys := make([]string, 0, len(update.Values))
	for k := range update.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	samples := make([]models.MMetricSample, 0, len(keys))
	for _, k := range keys {
		v, ok := NumericValue(update.Values[k])
		if !ok {
			continue
		}
		s := models.MMetricSample{Metric: k, Value: v, Timestamp: update.Timestamp}
		sm.AddSample(s)
		samples = append(samples, s)
	}
	return samples
}

// -----------------------------------------------------------------------------

// GetSeries returns the full live tail of a metric, oldest first
func (sm *SeriesManager) GetSeries(metric string) []models.MMetricSample {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	buffer, ok := sm.Streams[metric]
	if !ok {
		return []models.MMetricSample{}
	}
	return buffer.GetAll(metric)
}

// -----------------------------------------------------------------------------

// GetSince returns samples of a metric strictly newer than sinceMs
func (sm *SeriesManager) GetSince(metric string, sinceMs int64) []models.MMetricSample {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	buffer, ok := sm.Streams[metric]
	if !ok {
		return []models.MMetricSample{}
	}
	return buffer.GetSince(metric, sinceMs)
}

// -----------------------------------------------------------------------------

// GetLatest returns the newest sample of every metric
func (sm *SeriesManager) GetLatest() map[string]models.MMetricSample {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make(map[string]models.MMetricSample, len(sm.Streams))
	for metric, buffer := range sm.Streams {
		latest := buffer.GetLatest(metric, 1)
		if len(latest) > 0 {
			result[metric] = latest[0]
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits halves buffer capacities when the heap grows past the limit
func (sm *SeriesManager) CheckMemoryLimits() {
	currentMemory := sm.GetProcessMemoryMB()
	if currentMemory <= float64(sm.MaxMemoryMB) {
		return
	}

	sm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Shrinking live series.",
		currentMemory, sm.MaxMemoryMB)

	sm.mu.Lock()
	for _, buffer := range sm.Streams {
		if buffer.Capacity() > 100 {
			newCapacity := buffer.Capacity() / 2
			if newCapacity < 50 {
				newCapacity = 50
			}
			buffer.Resize(newCapacity)
		}
	}
	sm.mu.Unlock()

	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB reports the current heap allocation in MB
func (sm *SeriesManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup clears all data
func (sm *SeriesManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.Streams = make(map[string]*RingBuffer)
}

// -----------------------------------------------------------------------------

// MetricCount returns number of metrics with data
func (sm *SeriesManager) MetricCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.Streams)
}
