// Package fixtures builds GTFS-Realtime feeds and static tables for tests.
package fixtures

import (
	"fmt"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
)

const (
	// StopID is Mamaroneck in the scenario tables.
	StopID     = "111"
	TripID     = "T1"
	Label      = "1234"
	ServiceID  = "S1"
	ServiceDay = "20240315"
	Arrival    = "08:15:00"
)

// Location is the service timezone of the scenario.
func Location(t testing.TB) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// At returns 2024-03-15 hh:mm in the scenario timezone.
func At(t testing.TB, hh, mm int) time.Time {
	t.Helper()
	return time.Date(2024, time.March, 15, hh, mm, 0, 0, Location(t))
}

// Call is one stop-time update of a Train.
type Call struct {
	StopID  string
	Arrival time.Time
	Delay   int32
}

// Train describes one realtime entity.
type Train struct {
	EntityID  string
	TripID    string
	RouteID   string
	Label     string
	Calls     []Call
	NoVehicle bool
	NoTrip    bool
}

// Feed encodes trains into FeedMessage bytes with a header stamped at ts.
func Feed(t testing.TB, ts time.Time, trains ...Train) []byte {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(ts.Unix())),
		},
	}
	for i, tr := range trains {
		id := tr.EntityID
		if id == "" {
			id = tr.TripID
		}
		if id == "" {
			id = fmt.Sprintf("e%d", i)
		}
		ent := &gtfsrtpb.FeedEntity{Id: proto.String(id)}
		if !tr.NoTrip {
			tu := &gtfsrtpb.TripUpdate{
				Trip: &gtfsrtpb.TripDescriptor{
					TripId:  proto.String(tr.TripID),
					RouteId: proto.String(tr.RouteID),
				},
			}
			for _, c := range tr.Calls {
				tu.StopTimeUpdate = append(tu.StopTimeUpdate, &gtfsrtpb.TripUpdate_StopTimeUpdate{
					StopId: proto.String(c.StopID),
					Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{
						Time:  proto.Int64(c.Arrival.Unix()),
						Delay: proto.Int32(c.Delay),
					},
				})
			}
			ent.TripUpdate = tu
		}
		if !tr.NoVehicle {
			ent.Vehicle = &gtfsrtpb.VehiclePosition{
				Vehicle:   &gtfsrtpb.VehicleDescriptor{Id: proto.String(tr.Label), Label: proto.String(tr.Label)},
				Timestamp: proto.Uint64(uint64(ts.Unix())),
			}
		}
		fm.Entity = append(fm.Entity, ent)
	}
	data, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	return data
}

// ScenarioTrain is train 1234 due at Mamaroneck at 08:15 on 2024-03-15.
func ScenarioTrain(t testing.TB) Train {
	t.Helper()
	return Train{
		TripID:  TripID,
		RouteID: "1",
		Label:   Label,
		Calls:   []Call{{StopID: StopID, Arrival: At(t, 8, 15)}},
	}
}

// Tables returns the static tables of the scenario: one trip with short
// name 1234 serving stop 111 at 08:15 on service S1, active 2024-03-15.
func Tables() *gtfs.Tables {
	return &gtfs.Tables{
		Trips: []gtfs.Trip{
			{TripID: TripID, RouteID: "1", ServiceID: ServiceID, TripShortName: Label, TripHeadsign: "Grand Central", DirectionID: "1"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: TripID, StopID: "110", StopSequence: 1, ArrivalTime: "08:05:00", DepartureTime: "08:05:00", Track: "3"},
			{TripID: TripID, StopID: StopID, StopSequence: 2, ArrivalTime: Arrival, DepartureTime: Arrival, Track: "2"},
		},
		CalendarDates: []gtfs.CalendarDate{
			{ServiceID: ServiceID, Date: ServiceDay, ExceptionType: gtfs.ServiceAdded},
		},
		Stops: []gtfs.Stop{
			{StopID: "110", StopName: "Larchmont"},
			{StopID: StopID, StopName: "Mamaroneck"},
		},
	}
}
