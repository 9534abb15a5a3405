// Package gtfsrt decodes GTFS-Realtime protobuf feeds into immutable snapshots.
//
// Decode accepts raw bytes from any source and returns a Snapshot whose
// entities keep the feed order. Each entity optionally carries a trip update
// and a vehicle; both are plain Go structs with the protobuf presence
// flattened into nil pointers.
//
// Client is a small HTTP helper that injects the MTA API key header. It makes
// exactly one request per call.
package gtfsrt
