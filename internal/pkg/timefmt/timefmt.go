// Package timefmt holds the timestamp and duration formats shared by the
// postmortem synthesizer and the export pipeline.
package timefmt

import (
	"fmt"
	"time"
)

// Timestamp renders a time as "2006-01-02 15:04:05 UTC".
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// Clock renders only the wall-clock part, "15:04".
func Clock(t time.Time) string {
	return t.UTC().Format("15:04")
}

// Date renders only the date part, "2006-01-02".
func Date(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Duration renders a duration as "{d}d {h}h {m}m", "{h}h {m}m" or "{m}m"
// depending on its magnitude. Components are truncated, not rounded, so a
// 26h30m59s incident still reads "1d 2h 30m".
func Duration(d time.Duration) string {
	totalMinutes := int(d.Minutes())
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	if days >= 1 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if totalMinutes >= 60 {
		return fmt.Sprintf("%dh %dm", totalMinutes/60, minutes)
	}
	return fmt.Sprintf("%dm", totalMinutes)
}
