// internal/schedule/shift.go

// Package schedule decides when polling the inverter is worthwhile.
// A solar inverter only produces inside the configured shift window, so the
// monitor sleeps outside it instead of hammering a dark device.
package schedule

import "time"

// Window is a daily active window [Start, Stop) in local hours of the day.
type Window struct {
	Start int // 0-23
	Stop  int // 1-24, Start < Stop
}

// Evaluate reports whether now falls inside the window. When it does not,
// it returns how long the caller should sleep before re-evaluating.
// Evaluate never sleeps itself.
func (w Window) Evaluate(now time.Time) (active bool, sleep time.Duration) {
	hour := now.Hour()
	minute := now.Minute()

	if w.Start <= hour && hour < w.Stop {
		return true, 0
	}

	var minutes int
	switch {
	case hour >= w.Stop && hour < 24:
		// evening: wrap past midnight to tomorrow's start
		minutes = ((w.Start-hour)+24)*60 - minute
	case hour >= 0 && hour < w.Start:
		// early morning: same-day start
		minutes = (w.Start-hour)*60 - minute
	default:
		// unreachable with a valid window; recheck shortly anyway
		minutes = 1
	}

	return false, time.Duration(minutes) * time.Minute
}
