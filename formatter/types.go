package formatter

import "github.com/theoremus-urban-solutions/mnr-arrivals/warnings"

// ArrivalBoard is the presentation document for one stop.
type ArrivalBoard struct {
	StopID            string             `json:"stop_id"`
	StopName          string             `json:"stop_name,omitempty"`
	ResponseTimestamp string             `json:"response_timestamp"`
	FeedTimestamp     string             `json:"feed_timestamp,omitempty"`
	ServiceDate       string             `json:"service_date"`
	Arrivals          []Arrival          `json:"arrivals"`
	Scheduled         []ScheduledCall    `json:"scheduled,omitempty"`
	Warnings          []warnings.Summary `json:"warnings,omitempty"`
}

// Arrival is one live train due at the stop.
type Arrival struct {
	Train                string         `json:"train"`
	TripID               string         `json:"trip_id"`
	RouteID              string         `json:"route_id"`
	DirectionID          uint32         `json:"direction_id"`
	ScheduleRelationship string         `json:"schedule_relationship"`
	ExpectedArrival      string         `json:"expected_arrival"`
	DelaySeconds         int64          `json:"delay_seconds"`
	MinutesAway          int            `json:"minutes_away"`
	Updates              []StopUpdate   `json:"updates"`
	Scheduled            *ScheduledCall `json:"scheduled,omitempty"`
	MatchCount           int            `json:"match_count"`
}

// StopUpdate is one realtime prediction for the stop.
type StopUpdate struct {
	ExpectedArrival string `json:"expected_arrival"`
	DelaySeconds    int64  `json:"delay_seconds"`
}

// ScheduledCall is a timetable entry.
type ScheduledCall struct {
	Train            string `json:"train"`
	TripID           string `json:"trip_id"`
	Track            string `json:"track"`
	Headsign         string `json:"headsign"`
	ScheduledArrival string `json:"scheduled_arrival"`
}
