package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatRemaining renders d as its two largest units, e.g. "2 days, 3 hours".
// Anything under a second reads "less than a second" and negative
// durations read "expired".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	if d < time.Second {
		return "less than a second"
	}

	units := []struct {
		name  string
		value int
	}{
		{"day", int(d.Hours()) / 24},
		{"hour", int(d.Hours()) % 24},
		{"minute", int(d.Minutes()) % 60},
		{"second", int(d.Seconds()) % 60},
	}

	var parts []string
	for _, unit := range units {
		if unit.value == 0 {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if unit.value == 1 {
			parts = append(parts, "1 "+unit.name)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", unit.value, unit.name))
		}
		if len(parts) == 2 {
			break
		}
	}

	return strings.Join(parts, ", ")
}
