package schedule

import (
	"context"
	"iter"
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"
)

// Row is one scheduled call at a stop on a service day.
type Row struct {
	TripID           string    `json:"trip_id"`
	TripShortName    string    `json:"trip_short_name"`
	StopID           string    `json:"stop_id"`
	Date             time.Time `json:"date"`
	Track            string    `json:"track"`
	Headsign         string    `json:"headsign"`
	ArrivalTime      string    `json:"arrival_time"`
	ScheduledArrival time.Time `json:"scheduled_arrival"`
}

// Schedule is the ordered timetable of one stop for one service day together
// with the data-quality warnings raised while building it.
type Schedule struct {
	StopID   string
	Date     time.Time
	Rows     []Row
	Warnings *warnings.Aggregator
}

// ByLabel returns the rows whose trip_short_name equals label.
func (s *Schedule) ByLabel(label string) []Row {
	out := []Row{}
	if s == nil || label == "" {
		return out
	}
	for _, r := range s.Rows {
		if r.TripShortName == label {
			out = append(out, r)
		}
	}
	return out
}

// Since returns the rows scheduled at or after cutoff, keeping order.
func (s *Schedule) Since(cutoff time.Time) []Row {
	out := []Row{}
	if s == nil {
		return out
	}
	for _, r := range s.Rows {
		if !r.ScheduledArrival.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Source yields the schedule of a stop for a service day.
type Source interface {
	ScheduleFor(ctx context.Context, stopID string, date time.Time) (*Schedule, error)
}

// Index answers ScheduleFor from in-memory tables. Every call runs the full
// pipeline; nothing is cached between calls.
type Index struct {
	tables *gtfs.Tables
}

// NewIndex wraps tables.
func NewIndex(tables *gtfs.Tables) *Index {
	return &Index{tables: tables}
}

// ScheduleFor implements Source.
func (i *Index) ScheduleFor(_ context.Context, stopID string, date time.Time) (*Schedule, error) {
	return For(stopID, date, i.tables.Trips, i.tables.StopTimes, i.tables.CalendarDates), nil
}

// candidate is a joined stop_times/trips row for the requested stop and day,
// before its arrival time has been parsed.
type candidate struct {
	TripID      string
	Label       string
	StopID      string
	ArrivalTime string
	Track       string
	Headsign    string
}

// For builds the schedule of stopID on the calendar date of date. The
// pipeline is stop_times filtered by stop, joined to trips on trip_id, joined
// to the calendar_dates active on that day on service_id, then parsed and
// sorted by scheduled arrival. Rows with a bad date or arrival time are left
// out and counted in the returned warnings.
func For(stopID string, date time.Time, trips []gtfs.Trip, stopTimes []gtfs.StopTime, calendarDates []gtfs.CalendarDate) *Schedule {
	day := Day(date)
	w := warnings.New()

	seenService := map[string]bool{}
	active := FilterMap(From(calendarDates), func(cd gtfs.CalendarDate) (gtfs.CalendarDate, bool) {
		d, err := ParseServiceDate(cd.Date, day.Location())
		if err != nil {
			w.Add(warnings.BadServiceDate, cd.ServiceID+"@"+cd.Date)
			return cd, false
		}
		if !gtfs.ValidExceptionType(cd.ExceptionType) {
			w.Add(warnings.BadExceptionType, cd.ServiceID+"@"+cd.Date)
			return cd, false
		}
		if !d.Equal(day) || cd.ExceptionType == gtfs.ServiceRemoved || seenService[cd.ServiceID] {
			return cd, false
		}
		seenService[cd.ServiceID] = true
		return cd, true
	})

	type stopTrip struct {
		st   gtfs.StopTime
		trip gtfs.Trip
	}
	atStop := From(stopTimes).Where(func(st gtfs.StopTime) bool { return st.StopID == stopID })
	withTrip := Join(atStop, From(trips),
		func(st gtfs.StopTime) string { return st.TripID },
		func(t gtfs.Trip) string { return t.TripID },
		func(st gtfs.StopTime, t gtfs.Trip) stopTrip { return stopTrip{st: st, trip: t} },
	)
	served := Join(withTrip, active,
		func(j stopTrip) string { return j.trip.ServiceID },
		func(cd gtfs.CalendarDate) string { return cd.ServiceID },
		func(j stopTrip, _ gtfs.CalendarDate) candidate {
			return candidate{
				TripID:      j.st.TripID,
				Label:       j.trip.TripShortName,
				StopID:      j.st.StopID,
				ArrivalTime: j.st.ArrivalTime,
				Track:       j.st.Track,
				Headsign:    j.trip.TripHeadsign,
			}
		},
	)
	return materialize(stopID, day, served.All(), w)
}

// materialize parses arrival times, sorts and checks label uniqueness.
func materialize(stopID string, day time.Time, cands iter.Seq[candidate], w *warnings.Aggregator) *Schedule {
	// Arrival times are wall-clock on the service day, including across DST
	// changes, so they are applied to calendar fields rather than added to midnight.
	y, m, d := day.Date()
	rows := FilterMap(FromSeq(cands), func(c candidate) (Row, bool) {
		elapsed, err := ParseArrivalTime(c.ArrivalTime)
		if err != nil {
			w.Add(warnings.BadArrivalTime, c.TripID+"@"+c.StopID)
			return Row{}, false
		}
		return Row{
			TripID:           c.TripID,
			TripShortName:    c.Label,
			StopID:           c.StopID,
			Date:             day,
			Track:            c.Track,
			Headsign:         c.Headsign,
			ArrivalTime:      c.ArrivalTime,
			ScheduledArrival: time.Date(y, m, d, 0, 0, int(elapsed/time.Second), 0, day.Location()),
		}, true
	}).SortedBy(func(a, b Row) int { return a.ScheduledArrival.Compare(b.ScheduledArrival) })

	labels := make(map[string]int, len(rows))
	for _, r := range rows {
		labels[r.TripShortName]++
		if r.TripShortName != "" && labels[r.TripShortName] == 2 {
			w.Add(warnings.DuplicateTripLabel, r.TripShortName)
		}
	}

	return &Schedule{StopID: stopID, Date: day, Rows: rows, Warnings: w}
}

// Stops returns the stops of the wrapped tables.
func (i *Index) Stops(_ context.Context) ([]gtfs.Stop, error) {
	return i.tables.Stops, nil
}
