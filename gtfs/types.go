package gtfs

// Trip is a row of trips.txt.
type Trip struct {
	TripID        string
	RouteID       string
	ServiceID     string
	TripShortName string
	TripHeadsign  string
	DirectionID   string
}

// StopTime is a row of stop_times.txt. ArrivalTime is kept verbatim; it may
// use hours past 23 for service after midnight. Track is the MNR extension
// column and is empty for feeds that do not publish it.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
	Track         string
}

// CalendarDate is a row of calendar_dates.txt. Date is the raw YYYYMMDD value.
type CalendarDate struct {
	ServiceID     string
	Date          string
	ExceptionType int
}

// ExceptionType values from calendar_dates.txt. ExceptionInvalid marks a
// value that did not parse as either.
const (
	ExceptionInvalid = -1
	ServiceAdded     = 1
	ServiceRemoved   = 2
)

// ValidExceptionType reports whether v is ServiceAdded or ServiceRemoved.
func ValidExceptionType(v int) bool {
	return v == ServiceAdded || v == ServiceRemoved
}

// Stop is a row of stops.txt.
type Stop struct {
	StopID   string
	StopName string
	StopCode string
	Lat      float64
	Lon      float64
}

// Tables holds the static relations the schedule index is built from.
type Tables struct {
	Trips         []Trip
	StopTimes     []StopTime
	CalendarDates []CalendarDate
	Stops         []Stop
}
