package arrivals

import (
	"context"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfsrt"
	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"
)

// Combine decodes feed, selects the next n trips due at stopID after now and
// attaches to each the schedule rows of the service day of now whose
// trip_short_name equals the trip's vehicle label.
//
// A malformed feed returns a *gtfsrt.DecodeError and no board. Trips with no
// schedule match are kept with an empty match set.
func Combine(ctx context.Context, stopID string, feed []byte, src schedule.Source, now time.Time, n int) (*Board, error) {
	snap, err := gtfsrt.Decode(feed)
	if err != nil {
		return nil, err
	}
	selected := SelectNext(Correlate(snap, stopID), n, now)

	sched, err := src.ScheduleFor(ctx, stopID, schedule.Day(now))
	if err != nil {
		return nil, fmt.Errorf("schedule for stop %s: %w", stopID, err)
	}

	w := warnings.New()
	w.Merge(sched.Warnings)

	records := make([]CombinedRecord, 0, len(selected))
	for _, u := range selected {
		// The realtime vehicle label is the static trip_short_name.
		matches := sched.ByLabel(u.VehicleLabel)
		switch {
		case u.VehicleLabel == "":
			w.Add(warnings.MissingVehicleLabel, u.TripID)
		case len(matches) == 0:
			w.Add(warnings.NoScheduleMatch, u.VehicleLabel)
		}
		records = append(records, CombinedRecord{Update: u, Matches: matches})
	}

	return &Board{
		StopID:        stopID,
		Now:           now,
		FeedTimestamp: snap.Header.Timestamp,
		Records:       records,
		Schedule:      sched,
		Warnings:      w,
	}, nil
}

// CombineTables runs Combine against in-memory static tables.
func CombineTables(stopID string, feed []byte, tables *gtfs.Tables, now time.Time, n int) (*Board, error) {
	return Combine(context.Background(), stopID, feed, schedule.NewIndex(tables), now, n)
}
