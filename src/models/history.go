package models

import "time"

// MHistorySeries is one timeframe of historical data.
type MHistorySeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// MHistoryResponse is the history endpoint payload keyed by timeframe label.
type MHistoryResponse map[string]MHistorySeries

// MCacheEntry is one cached fetch result. Entries are replaced, never merged.
type MCacheEntry struct {
	Series    map[string]MHistorySeries `json:"series"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// Timeframe labels served by the history endpoint.
const (
	TimeframeLastHour  = "lastHour"
	TimeframeLastDay   = "lastDay"
	TimeframeLastWeek  = "lastWeek"
	TimeframeLastMonth = "lastMonth"
)
