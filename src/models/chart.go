package models

// MChartView describes how the browser wants a chart bound.
type MChartView struct {
	Width       int    `json:"width"`
	DarkMode    bool   `json:"dark_mode"`
	Color       string `json:"color"`
	ZoomEnabled bool   `json:"zoom_enabled"`
	Metric      string `json:"metric"` // live metric appended after history, optional
}

type MResizeParams struct {
	AspectRatio     float64 `json:"aspect_ratio"`
	AutoSkipPadding int     `json:"auto_skip_padding"`
}

type MZoomOptions struct {
	PanEnabled   bool  `json:"pan_enabled"`
	WheelEnabled bool  `json:"wheel_enabled"`
	PinchEnabled bool  `json:"pinch_enabled"`
	MinRangeMs   int64 `json:"min_range_ms"`
}

// MChartDataset is everything a chart card needs to render one timeframe.
type MChartDataset struct {
	EntityID  string        `json:"entity_id"`
	Timeframe string        `json:"timeframe"`
	Labels    []string      `json:"labels"`
	Data      []float64     `json:"data"`
	LiveCount int           `json:"live_count"`
	Current   any           `json:"current,omitempty"`
	Color     string        `json:"color"`
	Resize    MResizeParams `json:"resize"`
	Zoom      MZoomOptions  `json:"zoom"`
}
