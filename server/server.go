package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/metrics"
	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
)

// FeedFetcher returns the raw realtime feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StopDirectory lists the stops of the static bundle.
type StopDirectory interface {
	Stops(ctx context.Context) ([]gtfs.Stop, error)
}

// pinger is implemented by schedule sources backed by a database.
type pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the handlers.
type Options struct {
	FeedName       string
	FeedURL        string
	Count          int
	MaxCount       int
	Location       *time.Location
	ScheduleCutoff time.Duration
	AllowedOrigins []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server serves arrival boards over HTTP.
type Server struct {
	fetcher FeedFetcher
	source  schedule.Source
	stops   StopDirectory
	metrics *metrics.Collector
	log     zerolog.Logger
	opts    Options

	latestFeedEpoch atomic.Int64
	httpServer      *http.Server
}

// New wires a server. metrics may be nil.
func New(fetcher FeedFetcher, source schedule.Source, stops StopDirectory, m *metrics.Collector, log zerolog.Logger, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Count <= 0 {
		opts.Count = 3
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = 50
	}
	if m == nil {
		m = metrics.NewCollector()
	}
	return &Server{
		fetcher: fetcher,
		source:  source,
		stops:   stops,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/stops", s.handleStops)
	r.Get("/api/stops/{stopID}/arrivals", s.handleArrivals)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

type ctxKey struct{}

// requestID tags each request with a uuid, echoed in X-Request-ID and
// attached to the request logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		logger := s.log.With().Str("request_id", id).Logger()
		ctx := context.WithValue(r.Context(), ctxKey{}, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logger(r *http.Request) zerolog.Logger {
	if l, ok := r.Context().Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return s.log
}

// Start listens on port in the background.
func (s *Server) Start(port int) {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatal().Err(err).Msg("server error")
		}
	}()
	s.log.Info().Str("addr", addr).Msg("server listening")
}

// Shutdown stops the listener, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, then shuts down.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	s.log.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("server shutdown error")
		return
	}
	s.log.Info().Msg("server shut down successfully")
}
