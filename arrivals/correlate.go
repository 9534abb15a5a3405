package arrivals

import (
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfsrt"
)

// Correlate returns one TripUpdate per usable entity that has at least one
// stop-time update for stopID. Entity order and the feed order of the
// matching updates are preserved. The snapshot is not modified.
func Correlate(snap *gtfsrt.Snapshot, stopID string) []TripUpdate {
	out := []TripUpdate{}
	if snap == nil {
		return out
	}
	for _, e := range snap.Entities {
		if !e.Usable() {
			continue
		}
		tu := e.TripUpdate
		var updates []ArrivalUpdate
		for _, stu := range tu.StopTimeUpdates {
			if stu.StopID != stopID {
				continue
			}
			updates = append(updates, ArrivalUpdate{
				Arrival: time.Unix(stu.ArrivalTime, 0),
				Delay:   time.Duration(stu.ArrivalDelay) * time.Second,
			})
		}
		if len(updates) == 0 {
			continue
		}
		out = append(out, TripUpdate{
			TripID:               tu.TripID,
			RouteID:              tu.RouteID,
			DirectionID:          tu.DirectionID,
			StartTime:            tu.StartTime,
			StartDate:            tu.StartDate,
			ScheduleRelationship: tu.ScheduleRelationship,
			VehicleLabel:         e.Vehicle.Label,
			Updates:              updates,
		})
	}
	return out
}
