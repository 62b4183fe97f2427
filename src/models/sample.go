package models

// MMetricSample is one numeric observation of a realtime metric.
type MMetricSample struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"` // unix millis
}

// RingBuffer indices and constants
const (
	RB_IDX_TIMESTAMP = 0
	RB_IDX_VALUE     = 1
	RB_NUM_FEATURES  = 2
)

// MPublishedValue is the bus payload for one realtime key.
type MPublishedValue struct {
	Key       string `json:"key"`
	Value     any    `json:"value"`
	Timestamp int64  `json:"timestamp"` // unix millis
}
