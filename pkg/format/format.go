// Package format renders sizes, durations, and labels for human eyes.
package format

import (
	"fmt"
	"strings"
	"time"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

// Size formats a byte count with 1024-based units. Values under 1 KB print
// as whole bytes; larger values carry one decimal from 10 upward and two
// below, so "9.77 MB" and "10.2 MB" line up at four significant digits.
func Size(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit+1 < len(sizeUnits) {
		value /= 1024
		unit++
	}

	if value >= 10 {
		return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[unit])
}

// DurationCompact formats a duration as "1h 02m 03s", dropping leading zero
// units: "4m 05s", "12s".
func DurationCompact(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// TruncateLabel shortens text to at most maxChars runes, ending in "..."
// when anything was cut. Budgets of three or fewer return the bare ellipsis.
func TruncateLabel(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	if maxChars <= 3 {
		return "..."
	}

	var b strings.Builder
	for i, r := range runes {
		if i+3 >= maxChars {
			break
		}
		b.WriteRune(r)
	}
	b.WriteString("...")
	return b.String()
}
