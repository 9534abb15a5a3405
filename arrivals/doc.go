// Package arrivals turns a realtime feed and a static timetable into the next
// arrivals at one stop.
//
// The steps are exposed separately so each can be tested on its own:
//
//	snap, err := gtfsrt.Decode(feedBytes)
//	trips := arrivals.Correlate(snap, "111")
//	next := arrivals.SelectNext(trips, 3, now)
//
// Combine runs all of them and joins each selected trip to the schedule by
// vehicle label == trip_short_name. Metro-North does not share trip_id
// between the realtime and static feeds, so the label is the only usable key.
//
// Every function takes now as a parameter and none read the wall clock.
package arrivals
