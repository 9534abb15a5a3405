package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status                  string    `json:"status"`
	Static                  string    `json:"static"`
	LatestGTFSRealtimeEpoch int64     `json:"latest_gtfsrt_epoch"`
	Timestamp               time.Time `json:"timestamp"`
	Error                   string    `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:                  "ok",
		Static:                  "memory",
		LatestGTFSRealtimeEpoch: s.latestFeedEpoch.Load(),
		Timestamp:               s.opts.Now().UTC(),
	}
	status := http.StatusOK

	if p, ok := s.source.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Static = "connected"
		if err := p.Ping(ctx); err != nil {
			resp.Status = "error"
			resp.Static = "disconnected"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = map[string]any{"internal": err.Error()}
	}
	writeJSON(w, status, resp)
}
