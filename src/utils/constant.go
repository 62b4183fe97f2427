package utils

import "math"

// -----------------------------------------------------------------------------

// Defaults for the live series buffers.
// The realtime feed pushes roughly every 5 seconds, so 720 points cover an hour.
const (
	DefaultSeriesCapacity = 720
	DefaultPushInterval   = 5
)

// -----------------------------------------------------------------------------

// CalculateSeriesCapacity returns how many points are needed to cover the given minutes
func CalculateSeriesCapacity(minutes int, pushIntervalSeconds int) int {
	if pushIntervalSeconds <= 0 {
		pushIntervalSeconds = DefaultPushInterval
	}
	return int(math.Ceil(float64(minutes*60) / float64(pushIntervalSeconds)))
}
