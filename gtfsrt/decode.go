package gtfsrt

import (
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeError is returned when feed bytes are not a well-formed FeedMessage.
type DecodeError struct {
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode gtfs-rt feed (%d bytes): %v", e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses raw protobuf bytes into a Snapshot.
func Decode(body []byte) (*Snapshot, error) {
	fm := &gtfsrtpb.FeedMessage{}
	if err := proto.Unmarshal(body, fm); err != nil {
		return nil, &DecodeError{Size: len(body), Err: err}
	}
	if fm.Header == nil {
		return nil, &DecodeError{Size: len(body), Err: fmt.Errorf("feed header missing")}
	}

	snap := &Snapshot{
		Header:   decodeHeader(fm.Header),
		Entities: make([]Entity, 0, len(fm.Entity)),
	}
	for _, e := range fm.Entity {
		if e == nil {
			continue
		}
		ent := Entity{ID: e.GetId()}
		if e.TripUpdate != nil {
			ent.TripUpdate = decodeTripUpdate(e.TripUpdate)
		}
		if e.Vehicle != nil {
			ent.Vehicle = decodeVehicle(e.Vehicle)
		}
		snap.Entities = append(snap.Entities, ent)
	}
	return snap, nil
}

func decodeHeader(h *gtfsrtpb.FeedHeader) Header {
	out := Header{
		Version:        h.GetGtfsRealtimeVersion(),
		Incrementality: h.GetIncrementality().String(),
	}
	if h.Timestamp != nil {
		out.Timestamp = time.Unix(int64(*h.Timestamp), 0)
	}
	return out
}

func decodeTripUpdate(tu *gtfsrtpb.TripUpdate) *TripUpdate {
	trip := tu.GetTrip()
	out := &TripUpdate{
		TripID:               trip.GetTripId(),
		RouteID:              trip.GetRouteId(),
		DirectionID:          trip.GetDirectionId(),
		StartTime:            trip.GetStartTime(),
		StartDate:            trip.GetStartDate(),
		ScheduleRelationship: trip.GetScheduleRelationship().String(),
		StopTimeUpdates:      make([]StopTimeUpdate, 0, len(tu.StopTimeUpdate)),
	}
	for _, stu := range tu.StopTimeUpdate {
		if stu == nil {
			continue
		}
		out.StopTimeUpdates = append(out.StopTimeUpdates, StopTimeUpdate{
			StopID:       stu.GetStopId(),
			ArrivalTime:  stu.GetArrival().GetTime(),
			ArrivalDelay: stu.GetArrival().GetDelay(),
		})
	}
	return out
}

func decodeVehicle(vp *gtfsrtpb.VehiclePosition) *Vehicle {
	out := &Vehicle{
		ID:    vp.GetVehicle().GetId(),
		Label: vp.GetVehicle().GetLabel(),
	}
	if vp.Timestamp != nil {
		out.Timestamp = time.Unix(int64(*vp.Timestamp), 0)
	}
	return out
}
