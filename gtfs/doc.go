// Package gtfs loads the static GTFS tables the arrival board needs:
// trips, stop_times, calendar_dates and, optionally, stops.
//
// A bundle can be a zip (in memory or on disk), an unpacked directory or a
// gob snapshot written by SerializeTablesToFile. Columns are matched by
// header name, so extra feed-specific columns are ignored and Metro-North's
// stop_times "track" column is picked up when present.
//
// Example:
//
//	tables, err := gtfs.LoadFile("google_transit.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stopID, err := gtfs.FindStopID(tables.Stops, "Mamaroneck")
package gtfs
