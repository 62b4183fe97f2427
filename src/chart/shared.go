package chart

import (
	"fmt"
	"regexp"

	"monitor-dashboard/src/models"
)

// Zoom lower bounds per timeframe, in milliseconds
const (
	minRangeLastHour  = 120000
	minRangeLastDay   = 1800000
	minRangeLastWeek  = 7200000
	minRangeLastMonth = 28800000
)

// Layout breakpoint for narrow screens
const narrowWidth = 500

var colorPattern = regexp.MustCompile(`rgba?\((\d+),\s*(\d+),\s*(\d+)(?:,\s*[0-9.]+)?\)`)

// -----------------------------------------------------------------------------

// MinZoomRange is the smallest x span a chart may be zoomed to
func MinZoomRange(timeframe string) int64 {
	switch timeframe {
	case models.TimeframeLastDay:
		return minRangeLastDay
	case models.TimeframeLastWeek:
		return minRangeLastWeek
	case models.TimeframeLastMonth:
		return minRangeLastMonth
	default:
		return minRangeLastHour
	}
}

// -----------------------------------------------------------------------------

// AdjustColorAlpha rewrites an rgb()/rgba() color with the alpha used for the
// current theme.
func AdjustColorAlpha(darkMode bool, color string) (string, error) {
	alpha := "1"
	if darkMode {
		alpha = "0.8"
	}

	m := colorPattern.FindStringSubmatch(color)
	if m == nil {
		return "", fmt.Errorf("unsupported color %q: want rgb(r, g, b) or rgba(r, g, b, a)", color)
	}
	return fmt.Sprintf("rgba(%s, %s, %s, %s)", m[1], m[2], m[3], alpha), nil
}

// -----------------------------------------------------------------------------

func ResizeParams(width int) models.MResizeParams {
	if width < narrowWidth {
		return models.MResizeParams{AspectRatio: 3.0 / 2.0, AutoSkipPadding: 25}
	}
	return models.MResizeParams{AspectRatio: 2, AutoSkipPadding: 40}
}

// -----------------------------------------------------------------------------

// ZoomOptions toggles pan, wheel and pinch together
func ZoomOptions(enabled bool, timeframe string) models.MZoomOptions {
	return models.MZoomOptions{
		PanEnabled:   enabled,
		WheelEnabled: enabled,
		PinchEnabled: enabled,
		MinRangeMs:   MinZoomRange(timeframe),
	}
}
