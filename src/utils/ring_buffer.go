package utils

import (
	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of metric samples.
// Rows are stored as flat feature arrays; the metric name lives on the owner.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     [][models.RB_NUM_FEATURES]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}

	return &RingBuffer{
		data:     make([][models.RB_NUM_FEATURES]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a sample, overwriting the oldest one when full
func (rb *RingBuffer) Append(sample models.MMetricSample) {
	rb.data[rb.index] = [models.RB_NUM_FEATURES]float64{
		float64(sample.Timestamp),
		sample.Value,
	}

	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest samples, oldest first
func (rb *RingBuffer) GetLatest(metric string, n int) []models.MMetricSample {
	if rb.size == 0 || n <= 0 {
		return []models.MMetricSample{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MMetricSample, count)
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		result[i] = rb.rowToSample(metric, (startIdx+i)%rb.capacity)
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all samples in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll(metric string) []models.MMetricSample {
	return rb.GetLatest(metric, rb.size)
}

// -----------------------------------------------------------------------------

// GetSince returns samples strictly newer than the given unix millis, oldest first
func (rb *RingBuffer) GetSince(metric string, sinceMs int64) []models.MMetricSample {
	all := rb.GetAll(metric)
	for i, s := range all {
		if s.Timestamp > sinceMs {
			return all[i:]
		}
	}
	return []models.MMetricSample{}
}

// -----------------------------------------------------------------------------

// GetSnapshot returns data as raw feature rows
func (rb *RingBuffer) GetSnapshot() [][models.RB_NUM_FEATURES]float64 {
	result := make([][models.RB_NUM_FEATURES]float64, rb.size)

	startIdx := 0
	if rb.size == rb.capacity {
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) rowToSample(metric string, idx int) models.MMetricSample {
	row := rb.data[idx]
	return models.MMetricSample{
		Metric:    metric,
		Timestamp: int64(row[models.RB_IDX_TIMESTAMP]),
		Value:     row[models.RB_IDX_VALUE],
	}
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer.
// If newCapacity < size, oldest data is dropped.
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	newData := make([][models.RB_NUM_FEATURES]float64, newCapacity)

	count := rb.size
	if count > newCapacity {
		count = newCapacity
	}

	// Keep the newest 'count' rows
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		newData[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}

// -----------------------------------------------------------------------------
// Helper function
// -----------------------------------------------------------------------------

// NumericValue converts a decoded JSON value into a float when it is numeric.
// Strings are not coerced.
func NumericValue(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}
