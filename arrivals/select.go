package arrivals

import (
	"slices"
	"time"
)

// SelectNext returns at most n trips ordered by their first listed arrival,
// skipping trips whose first arrival is before now. Trips without updates
// have no first arrival and are skipped too. The input is not reordered.
func SelectNext(updates []TripUpdate, n int, now time.Time) []TripUpdate {
	if n <= 0 {
		return []TripUpdate{}
	}
	upcoming := make([]TripUpdate, 0, len(updates))
	for _, u := range updates {
		first, ok := u.FirstArrival()
		if !ok || first.Before(now) {
			continue
		}
		upcoming = append(upcoming, u)
	}
	slices.SortStableFunc(upcoming, func(a, b TripUpdate) int {
		return a.Updates[0].Arrival.Compare(b.Updates[0].Arrival)
	})
	if len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return upcoming
}
