package history

import (
	"fmt"
	"time"
)

// LabelLayout is the format of history labels, both on the wire (UTC) and
// after normalization (configured zone).
const LabelLayout = "2006-01-02 15:04:05"

// NormalizeLabel re-renders a UTC label in loc.
func NormalizeLabel(label string, loc *time.Location) (string, error) {
	t, err := time.ParseInLocation(LabelLayout, label, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid history label %q: %w", label, err)
	}
	return t.In(loc).Format(LabelLayout), nil
}

// NormalizeLabels converts every label or fails on the first bad one.
func NormalizeLabels(labels []string, loc *time.Location) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		n, err := NormalizeLabel(l, loc)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// ParseLocalLabel parses a normalized label back into an instant.
func ParseLocalLabel(label string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(LabelLayout, label, loc)
}
