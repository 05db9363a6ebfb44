package util

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a duration for people, e.g. "1 hour", "1 hour 30 minutes", "45 seconds".
// Zero components are omitted and the value is rounded to the second.
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration <= 0 {
		return "0 seconds"
	}

	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60
	s := int(duration.Seconds()) % 60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 {
		parts = append(parts, plural(s, "second"))
	}

	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
