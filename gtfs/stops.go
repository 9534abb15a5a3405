package gtfs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStopNotFound is returned when no stop matches the requested name.
var ErrStopNotFound = errors.New("stop not found")

// FindStopID resolves a station name such as "Mamaroneck" to its stop_id.
// An exact match wins over a case-insensitive one.
func FindStopID(stops []Stop, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrStopNotFound)
	}
	folded := ""
	for _, s := range stops {
		if s.StopName == name {
			return s.StopID, nil
		}
		if folded == "" && strings.EqualFold(s.StopName, name) {
			folded = s.StopID
		}
	}
	if folded != "" {
		return folded, nil
	}
	return "", fmt.Errorf("%w: %q", ErrStopNotFound, name)
}

// SearchStops returns the stops whose name contains query, case-insensitively.
func SearchStops(stops []Stop, query string) []Stop {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Stop{}
	for _, s := range stops {
		if q == "" || strings.Contains(strings.ToLower(s.StopName), q) {
			out = append(out, s)
		}
	}
	return out
}

// StopByID returns the stop with the given id.
func StopByID(stops []Stop, id string) (Stop, bool) {
	for _, s := range stops {
		if s.StopID == id {
			return s, true
		}
	}
	return Stop{}, false
}
