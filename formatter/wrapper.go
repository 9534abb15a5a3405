package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/arrivals"
	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
	"github.com/theoremus-urban-solutions/mnr-arrivals/utils"
)

// Options controls how a board is rendered.
type Options struct {
	// Location for all timestamps. Nil keeps the board's own locations.
	Location *time.Location
	StopName string
	// ScheduleCutoff lists untracked scheduled trains from Now minus the
	// cutoff. Zero leaves Scheduled empty.
	ScheduleCutoff time.Duration
}

// BuildBoard converts a combined board into its presentation document.
func BuildBoard(b *arrivals.Board, opts Options) ArrivalBoard {
	ab := ArrivalBoard{
		StopID:            b.StopID,
		StopName:          opts.StopName,
		ResponseTimestamp: utils.Iso8601In(b.Now, opts.Location),
		FeedTimestamp:     utils.Iso8601In(b.FeedTimestamp, opts.Location),
		Arrivals:          make([]Arrival, 0, len(b.Records)),
	}
	if b.Schedule != nil {
		ab.ServiceDate = schedule.FormatServiceDate(b.Schedule.Date)
	}

	for _, rec := range b.Records {
		u := rec.Update
		a := Arrival{
			Train:                u.VehicleLabel,
			TripID:               u.TripID,
			RouteID:              u.RouteID,
			DirectionID:          u.DirectionID,
			ScheduleRelationship: u.ScheduleRelationship,
			Updates:              make([]StopUpdate, 0, len(u.Updates)),
			MatchCount:           len(rec.Matches),
		}
		for _, su := range u.Updates {
			a.Updates = append(a.Updates, StopUpdate{
				ExpectedArrival: utils.Iso8601In(su.Arrival, opts.Location),
				DelaySeconds:    int64(su.Delay / time.Second),
			})
		}
		if first, ok := u.FirstArrival(); ok {
			a.ExpectedArrival = utils.Iso8601In(first, opts.Location)
			a.DelaySeconds = int64(u.Updates[0].Delay / time.Second)
			a.MinutesAway = utils.MinutesUntil(first, b.Now)
		}
		if row, ok := rec.Scheduled(); ok {
			call := scheduledCall(row, opts.Location)
			a.Scheduled = &call
		}
		ab.Arrivals = append(ab.Arrivals, a)
	}

	if opts.ScheduleCutoff > 0 && b.Schedule != nil {
		for _, row := range b.Untracked(b.Now.Add(-opts.ScheduleCutoff)) {
			ab.Scheduled = append(ab.Scheduled, scheduledCall(row, opts.Location))
		}
	}
	if b.Warnings != nil {
		ab.Warnings = b.Warnings.Summaries()
	}
	return ab
}

func scheduledCall(row schedule.Row, loc *time.Location) ScheduledCall {
	return ScheduledCall{
		Train:            row.TripShortName,
		TripID:           row.TripID,
		Track:            row.Track,
		Headsign:         row.Headsign,
		ScheduledArrival: utils.Iso8601In(row.ScheduledArrival, loc),
	}
}

// FilterArrivals keeps arrivals on routeID and directionID. Empty filters
// match everything; comparisons ignore case and surrounding space.
func FilterArrivals(ab ArrivalBoard, routeID, directionID string) ArrivalBoard {
	routeID = strings.ToLower(strings.TrimSpace(routeID))
	directionID = strings.TrimSpace(directionID)
	if routeID == "" && directionID == "" {
		return ab
	}

	filtered := ab
	filtered.Arrivals = make([]Arrival, 0, len(ab.Arrivals))
	for _, a := range ab.Arrivals {
		if routeID != "" && strings.ToLower(a.RouteID) != routeID {
			continue
		}
		if directionID != "" && strconv.FormatUint(uint64(a.DirectionID), 10) != directionID {
			continue
		}
		filtered.Arrivals = append(filtered.Arrivals, a)
	}
	return filtered
}
