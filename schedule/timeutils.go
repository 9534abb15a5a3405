package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServiceDateLayout is the calendar_dates.txt date format.
const ServiceDateLayout = "20060102"

// Day returns midnight of t's calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseServiceDate parses an 8-digit YYYYMMDD string in loc.
func ParseServiceDate(s string, loc *time.Location) (time.Time, error) {
	if len(s) != 8 || !allDigits(s) {
		return time.Time{}, fmt.Errorf("invalid service date %q", s)
	}
	d, err := time.ParseInLocation(ServiceDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid service date %q: %w", s, err)
	}
	return d, nil
}

// FormatServiceDate renders day as YYYYMMDD.
func FormatServiceDate(day time.Time) string {
	return day.Format(ServiceDateLayout)
}

// ParseArrivalTime parses a GTFS HH:MM:SS time into the elapsed duration
// since midnight of the service day. Hours may exceed 23.
func ParseArrivalTime(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid arrival time %q", s)
	}
	h, m, sec := parts[0], parts[1], parts[2]
	if h == "" || !allDigits(h) || len(m) != 2 || !allDigits(m) || len(sec) != 2 || !allDigits(sec) {
		return 0, fmt.Errorf("invalid arrival time %q", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid arrival time %q: %w", s, err)
	}
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(sec)
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("invalid arrival time %q", s)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
