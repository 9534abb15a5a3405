// Package server exposes arrival boards over HTTP.
//
// Routes:
//
//	GET /api/health
//	GET /api/stops?name=Mamaroneck
//	GET /api/stops/{stopID}/arrivals?count=3&format=json|xml|text&route=&direction=&scheduled=
//	GET /metrics
//
// Each arrivals request fetches the realtime feed once and recomputes the
// board; a failed fetch or malformed feed answers 502 and the client retries
// on its own schedule.
package server
