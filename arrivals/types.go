package arrivals

import (
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"
)

// ArrivalUpdate is one predicted arrival at the target stop.
type ArrivalUpdate struct {
	Arrival time.Time
	Delay   time.Duration
}

// TripUpdate is a realtime trip reduced to the predictions for one stop.
// VehicleLabel is the value broadcast by the train; on Metro-North it equals
// the static trip_short_name, not the trip_id.
type TripUpdate struct {
	TripID               string
	RouteID              string
	DirectionID          uint32
	StartTime            string
	StartDate            string
	ScheduleRelationship string
	VehicleLabel         string
	Updates              []ArrivalUpdate
}

// FirstArrival returns the arrival of the first listed update. This is the
// selection key; it is not a minimum over Updates.
func (u TripUpdate) FirstArrival() (time.Time, bool) {
	if len(u.Updates) == 0 {
		return time.Time{}, false
	}
	return u.Updates[0].Arrival, true
}

// CombinedRecord pairs a selected realtime trip with the schedule rows whose
// trip_short_name equals its vehicle label. Matches is empty, never nil, when
// the trip is not in the timetable.
type CombinedRecord struct {
	Update  TripUpdate
	Matches []schedule.Row
}

// Scheduled returns the first matching schedule row.
func (r CombinedRecord) Scheduled() (schedule.Row, bool) {
	if len(r.Matches) == 0 {
		return schedule.Row{}, false
	}
	return r.Matches[0], true
}

// Board is the result of one combine pass for a stop.
type Board struct {
	StopID        string
	Now           time.Time
	FeedTimestamp time.Time
	Records       []CombinedRecord
	Schedule      *schedule.Schedule
	Warnings      *warnings.Aggregator
}

// Untracked returns the schedule rows at or after cutoff that no selected
// realtime trip claimed.
func (b *Board) Untracked(cutoff time.Time) []schedule.Row {
	claimed := make(map[string]bool, len(b.Records))
	for _, r := range b.Records {
		if r.Update.VehicleLabel != "" {
			claimed[r.Update.VehicleLabel] = true
		}
	}
	out := []schedule.Row{}
	for _, row := range b.Schedule.Since(cutoff) {
		if !claimed[row.TripShortName] {
			out = append(out, row)
		}
	}
	return out
}
