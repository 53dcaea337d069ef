package portfolio

import (
	"fmt"
	"strings"
	"time"
)

// TimeWindow is a trailing filter applied to the timeline.
type TimeWindow string

const (
	Window7D  TimeWindow = "7d"
	Window1M  TimeWindow = "1m"
	Window3M  TimeWindow = "3m"
	WindowYTD TimeWindow = "ytd"
	Window1Y  TimeWindow = "1y"
	WindowAll TimeWindow = "all"
)

// TimeWindows lists the supported windows, shortest first.
var TimeWindows = []TimeWindow{Window7D, Window1M, Window3M, WindowYTD, Window1Y, WindowAll}

// ParseTimeWindow parses a window name case-insensitively. An empty string
// means WindowAll.
func ParseTimeWindow(s string) (TimeWindow, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return WindowAll, nil
	}
	for _, w := range TimeWindows {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown time window %q", s)
}

// Cutoff returns the earliest instant kept by w relative to now. ok is false
// for WindowAll and unknown windows, which keep everything.
func (w TimeWindow) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch w {
	case Window7D:
		return now.AddDate(0, 0, -7), true
	case Window1M:
		return now.AddDate(0, -1, 0), true
	case Window3M:
		return now.AddDate(0, -3, 0), true
	case WindowYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	case Window1Y:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}
