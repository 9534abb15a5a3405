package utils

import (
	"fmt"
	"math"
	"time"
)

// Iso8601 formats t in its own location, or "" for the zero time.
func Iso8601(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Iso8601In formats t in loc. A nil loc keeps t's location.
func Iso8601In(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return Iso8601(t)
}

// ClockTime returns HH:MM of t in loc.
func ClockTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "--:--"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04")
}

// FormatDelay renders a delay as "on time", "+3m" or "-1m". Delays under a
// minute count as on time.
func FormatDelay(d time.Duration) string {
	minutes := int(d / time.Minute)
	switch {
	case minutes == 0:
		return "on time"
	case minutes > 0:
		return fmt.Sprintf("+%dm", minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// MinutesUntil returns whole minutes from now to t, rounded to nearest.
func MinutesUntil(t, now time.Time) int {
	return int(math.Round(t.Sub(now).Minutes()))
}
