package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theoremus-urban-solutions/mnr-arrivals/arrivals"
	"github.com/theoremus-urban-solutions/mnr-arrivals/formatter"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfsrt"
	"github.com/theoremus-urban-solutions/mnr-arrivals/metrics"
)

// StopsResponse is the JSON body of GET /api/stops.
type StopsResponse struct {
	Stops []gtfs.Stop `json:"stops"`
	Count int         `json:"count"`
}

// handleStops handles GET /api/stops?name=
func (s *Server) handleStops(w http.ResponseWriter, r *http.Request) {
	stops, err := s.stops.Stops(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load stops", err)
		return
	}
	found := gtfs.SearchStops(stops, r.URL.Query().Get("name"))
	writeJSON(w, http.StatusOK, StopsResponse{Stops: found, Count: len(found)})
}

// handleArrivals handles GET /api/stops/{stopID}/arrivals
func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r)
	stopID := chi.URLParam(r, "stopID")

	q, err := parseArrivalsQuery(flattenQuery(r.URL.Query()), s.opts.Count, s.opts.MaxCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	stops, err := s.stops.Stops(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load stops", err)
		return
	}
	var stopName string
	if len(stops) > 0 {
		st, ok := gtfs.StopByID(stops, stopID)
		if !ok {
			writeError(w, http.StatusNotFound, "No such stop: "+stopID, nil)
			return
		}
		stopName = st.StopName
	}

	fetchStart := time.Now()
	feed, err := s.fetcher.Fetch(r.Context(), s.opts.FeedURL)
	s.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		s.metrics.ObserveCycle(metrics.OutcomeFetchError)
		log.Error().Err(err).Str("stop_id", stopID).Msg("feed fetch failed")
		writeError(w, http.StatusBadGateway, "Failed to fetch realtime feed", err)
		return
	}

	now := s.opts.Now().In(s.opts.Location)
	combineStart := time.Now()
	board, err := arrivals.Combine(r.Context(), stopID, feed, s.source, now, q.count)
	s.metrics.CombineDuration.Observe(time.Since(combineStart).Seconds())
	if err != nil {
		var decodeErr *gtfsrt.DecodeError
		if errors.As(err, &decodeErr) {
			s.metrics.ObserveCycle(metrics.OutcomeDecodeError)
			log.Error().Err(err).Str("stop_id", stopID).Msg("skipping cycle: malformed feed")
			writeError(w, http.StatusBadGateway, "Malformed realtime feed", err)
			return
		}
		s.metrics.ObserveCycle(metrics.OutcomeStaticError)
		log.Error().Err(err).Str("stop_id", stopID).Msg("schedule lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to build schedule", err)
		return
	}

	if !board.FeedTimestamp.IsZero() {
		s.latestFeedEpoch.Store(board.FeedTimestamp.Unix())
	}
	board.Warnings.LogAll(log, s.opts.FeedName, stopID)
	s.metrics.ObserveCycle(metrics.OutcomeOK)
	s.metrics.ObserveWarnings(board.Warnings)
	s.metrics.ObserveFeedAge(board.FeedTimestamp, now)
	s.metrics.Records.Set(float64(len(board.Records)))

	opts := formatter.Options{Location: s.opts.Location, StopName: stopName}
	if q.scheduled {
		opts.ScheduleCutoff = s.opts.ScheduleCutoff
		s.metrics.Untracked.Set(float64(len(board.Untracked(now.Add(-s.opts.ScheduleCutoff)))))
	}
	ab := formatter.FilterArrivals(formatter.BuildBoard(board, opts), q.route, q.direction)

	log.Debug().
		Str("stop_id", stopID).
		Int("records", len(ab.Arrivals)).
		Int("warnings", board.Warnings.Total()).
		Msg("arrival board built")

	rb := formatter.NewResponseBuilder()
	switch q.format {
	case "xml":
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(rb.BuildXML(ab))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(rb.BuildText(ab, s.opts.Location))
	default:
		body, err := rb.BuildJSON(ab)
		if err != nil {
			log.Error().Err(err).Str("stop_id", stopID).Msg("failed to encode arrival board")
			writeError(w, http.StatusInternalServerError, "Failed to encode arrival board", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

