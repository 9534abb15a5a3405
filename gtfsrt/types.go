package gtfsrt

import "time"

// Snapshot is a decoded GTFS-Realtime feed. It is built once per fetch and
// never mutated afterwards.
type Snapshot struct {
	Header   Header
	Entities []Entity
}

// Header carries the feed metadata. Only its presence is required.
type Header struct {
	Version        string
	Incrementality string
	Timestamp      time.Time
}

// Entity is one realtime assertion. TripUpdate and Vehicle are nil when the
// entity does not carry them.
type Entity struct {
	ID         string
	TripUpdate *TripUpdate
	Vehicle    *Vehicle
}

// TripUpdate holds the trip descriptor fields and the stop-level predictions.
type TripUpdate struct {
	TripID               string
	RouteID              string
	DirectionID          uint32
	StartTime            string
	StartDate            string
	ScheduleRelationship string
	StopTimeUpdates      []StopTimeUpdate
}

// StopTimeUpdate is a single stop prediction. ArrivalTime is the epoch second
// reported by the feed, zero when the feed omits the arrival event.
type StopTimeUpdate struct {
	StopID       string
	ArrivalTime  int64
	ArrivalDelay int32
}

// Vehicle is the subset of a VehiclePosition needed to correlate a trip with
// the static schedule.
type Vehicle struct {
	ID        string
	Label     string
	Timestamp time.Time
}

// Usable reports whether the entity carries both a trip update and a vehicle.
func (e Entity) Usable() bool {
	return e.TripUpdate != nil && e.Vehicle != nil
}
