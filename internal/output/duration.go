package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// FormatMillis renders a millisecond count for humans: 850ms, 2.3s, 1m 5s,
// 1d 2h. Seconds keep one floored decimal, dropped when it is zero, and
// zero-valued units are omitted.
func FormatMillis(ms int64) string {
	if ms < 0 {
		return "-" + FormatMillis(-ms)
	}
	if ms < msPerSecond {
		return fmt.Sprintf("%dms", ms)
	}

	var parts []string
	if days := ms / msPerDay; days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours := ms / msPerHour % 24; hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes := ms / msPerMinute % 60; minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	tenths := ms % msPerMinute / 100
	switch {
	case tenths == 0:
	case tenths%10 == 0:
		parts = append(parts, fmt.Sprintf("%ds", tenths/10))
	default:
		parts = append(parts, fmt.Sprintf("%d.%ds", tenths/10, tenths%10))
	}

	return strings.Join(parts, " ")
}

// FormatDuration is FormatMillis for a time.Duration
func FormatDuration(d time.Duration) string {
	return FormatMillis(d.Milliseconds())
}

// VisibleWidth returns the number of runes in s once ANSI escape codes are
// removed
func VisibleWidth(s string) int {
	return len([]rune(stripansi.Strip(s)))
}

// PadRight pads s with spaces up to width visible runes
func PadRight(s string, width int) string {
	if n := VisibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
