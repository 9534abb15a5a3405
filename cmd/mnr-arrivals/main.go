package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/mnr-arrivals/arrivals"
	"github.com/theoremus-urban-solutions/mnr-arrivals/config"
	"github.com/theoremus-urban-solutions/mnr-arrivals/formatter"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfsrt"
	"github.com/theoremus-urban-solutions/mnr-arrivals/internal/logging"
	"github.com/theoremus-urban-solutions/mnr-arrivals/metrics"
	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
	"github.com/theoremus-urban-solutions/mnr-arrivals/server"
)

type flags struct {
	configPath string
	mode       string
	stopID     string
	stopName   string
	count      int
	feed       string
	static     string
	format     string
	db         string
	snapshot   string
	now        string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "config file (default: search config.yml)")
	flag.StringVar(&f.mode, "mode", "oneshot", "oneshot|serve|import|stops")
	flag.StringVar(&f.stopID, "stop", "", "stop_id (overrides config)")
	flag.StringVar(&f.stopName, "stopName", "", "station name resolved through stops.txt (overrides config)")
	flag.IntVar(&f.count, "count", 0, "number of arrivals (overrides config)")
	flag.StringVar(&f.feed, "feed", "", "realtime feed URL or .pb file (overrides config)")
	flag.StringVar(&f.static, "static", "", "static bundle: .zip, directory, .gob or URL (overrides config)")
	flag.StringVar(&f.format, "format", "text", "text|json|xml")
	flag.StringVar(&f.db, "db", "", "SQLite schedule store path (overrides config)")
	flag.StringVar(&f.snapshot, "snapshot", "", "import mode: also write a .gob tables snapshot here")
	flag.StringVar(&f.now, "now", "", "RFC3339 time to evaluate the board at (default: current time)")
	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.NewWithWriter(cfg.Logging, os.Stderr).With().Str("feed", cfg.Feed.Name).Logger()

	if err := run(context.Background(), f, cfg, log); err != nil {
		log.Fatal().Err(err).Str("mode", f.mode).Msg("failed")
	}
}

func loadConfig(f flags) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	if f.configPath != "" {
		c, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		if err := config.LoadAppConfig(); err != nil {
			return nil, err
		}
		c := config.Config
		cfg = &c
	}

	if f.stopID != "" {
		cfg.Stop = config.StopConfig{ID: f.stopID}
	}
	if f.stopName != "" {
		cfg.Stop = config.StopConfig{Name: f.stopName}
	}
	if f.count > 0 {
		cfg.Arrivals.Count = f.count
	}
	if f.feed != "" {
		cfg.Feed.RealtimeURL = f.feed
	}
	if f.static != "" {
		if isURL(f.static) {
			cfg.Feed.StaticURL, cfg.Feed.StaticPath = f.static, ""
		} else {
			cfg.Feed.StaticPath = f.static
		}
	}
	if f.db != "" {
		cfg.Storage.SQLitePath = f.db
	}
	return cfg, nil
}

func run(ctx context.Context, f flags, cfg *config.AppConfig, log zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	client := gtfsrt.NewClient(
		gtfsrt.WithAPIKey(cfg.Feed.APIKeyHeader, cfg.Feed.APIKey),
		gtfsrt.WithTimeout(cfg.Timeout()),
	)
	fetch := newFetcher(client)
	if cfg.Feed.APIKey == "" && isURL(cfg.Feed.RealtimeURL) {
		log.Warn().Str("env", cfg.Feed.APIKeyEnv).Msg("no API key set; the feed endpoint may reject requests")
	}

	switch f.mode {
	case "import":
		return runImport(ctx, f, cfg, fetch, log)
	case "stops":
		return runStops(ctx, f, cfg, fetch)
	case "oneshot", "serve":
	default:
		return fmt.Errorf("unknown mode %q", f.mode)
	}

	source, stops, closeFn, err := openSource(ctx, cfg, fetch, log)
	if err != nil {
		return err
	}
	defer closeFn()

	if f.mode == "serve" {
		srv := server.New(fetch, source, stops, metrics.NewCollector(), log, server.Options{
			FeedName:       cfg.Feed.Name,
			FeedURL:        cfg.Feed.RealtimeURL,
			Count:          cfg.Arrivals.Count,
			Location:       loc,
			ScheduleCutoff: cfg.ScheduleCutoff(),
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		srv.Start(cfg.Server.Port)
		srv.HandleGracefulShutdown()
		return nil
	}

	now := time.Now().In(loc)
	if f.now != "" {
		t, err := time.Parse(time.RFC3339, f.now)
		if err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
		now = t.In(loc)
	}

	allStops, err := stops.Stops(ctx)
	if err != nil {
		return err
	}
	stopID, stopName, err := resolveStop(cfg.Stop, allStops)
	if err != nil {
		return err
	}

	feed, err := fetch.Fetch(ctx, cfg.Feed.RealtimeURL)
	if err != nil {
		return fmt.Errorf("realtime feed: %w", err)
	}
	board, err := arrivals.Combine(ctx, stopID, feed, source, now, cfg.Arrivals.Count)
	if err != nil {
		return err
	}
	board.Warnings.LogAll(log, cfg.Feed.Name, stopID)

	ab := formatter.BuildBoard(board, formatter.Options{
		Location:       loc,
		StopName:       stopName,
		ScheduleCutoff: cfg.ScheduleCutoff(),
	})
	rb := formatter.NewResponseBuilder()
	var out []byte
	switch f.format {
	case "json":
		if out, err = rb.BuildJSON(ab); err != nil {
			return err
		}
	case "xml":
		out = rb.BuildXML(ab)
	default:
		out = rb.BuildText(ab, loc)
	}
	fmt.Println(string(out))
	return nil
}

// sourceWithStops is a schedule source that can also list stops.
type sourceWithStops interface {
	schedule.Source
	server.StopDirectory
}

// openSource returns the SQLite store when configured, importing the static
// bundle into it if it is empty, and the in-memory index otherwise.
func openSource(ctx context.Context, cfg *config.AppConfig, fetch *fetcher, log zerolog.Logger) (sourceWithStops, server.StopDirectory, func(), error) {
	if cfg.Storage.SQLitePath == "" {
		tables, err := loadStatic(ctx, cfg, fetch)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().
			Int("trips", len(tables.Trips)).
			Int("stop_times", len(tables.StopTimes)).
			Int("calendar_dates", len(tables.CalendarDates)).
			Msg("static tables loaded")
		idx := schedule.NewIndex(tables)
		return idx, idx, func() {}, nil
	}

	store, err := openStore(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	latest, err := store.LatestImport(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	if latest == nil {
		tables, err := loadStatic(ctx, cfg, fetch)
		if err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		if latest, err = store.Import(ctx, tables); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
	}
	log.Info().
		Str("import_id", latest.ID).
		Time("imported_at", latest.ImportedAt).
		Int("trips", latest.Trips).
		Msg("using sqlite schedule store")
	return store, store, func() { _ = store.Close() }, nil
}

func openStore(ctx context.Context, path string) (*schedule.SQLStore, error) {
	store, err := schedule.OpenSQLStore(path)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func loadStatic(ctx context.Context, cfg *config.AppConfig, fetch *fetcher) (*gtfs.Tables, error) {
	if cfg.Feed.StaticPath != "" {
		return gtfs.LoadFile(cfg.Feed.StaticPath)
	}
	if cfg.Feed.StaticURL == "" {
		return nil, errors.New("no static bundle configured: set feed.staticPath or feed.staticURL")
	}
	data, err := fetch.Fetch(ctx, cfg.Feed.StaticURL)
	if err != nil {
		return nil, fmt.Errorf("static bundle: %w", err)
	}
	return gtfs.LoadZip(data)
}

func resolveStop(sc config.StopConfig, stops []gtfs.Stop) (id, name string, err error) {
	switch {
	case sc.ID != "":
		if s, ok := gtfs.StopByID(stops, sc.ID); ok {
			return s.StopID, s.StopName, nil
		}
		return sc.ID, "", nil
	case sc.Name != "":
		id, err := gtfs.FindStopID(stops, sc.Name)
		if err != nil {
			return "", "", err
		}
		return id, sc.Name, nil
	}
	return "", "", config.ErrNoStop
}

func runImport(ctx context.Context, f flags, cfg *config.AppConfig, fetch *fetcher, log zerolog.Logger) error {
	if cfg.Storage.SQLitePath == "" && f.snapshot == "" {
		return errors.New("import needs -db (or storage.sqlitePath) or -snapshot")
	}
	tables, err := loadStatic(ctx, cfg, fetch)
	if err != nil {
		return err
	}
	if f.snapshot != "" {
		if err := gtfs.SerializeTablesToFile(tables, f.snapshot); err != nil {
			return err
		}
		log.Info().Str("path", f.snapshot).Msg("tables snapshot written")
	}
	if cfg.Storage.SQLitePath == "" {
		return nil
	}
	store, err := openStore(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()
	res, err := store.Import(ctx, tables)
	if err != nil {
		return err
	}
	log.Info().
		Str("import_id", res.ID).
		Int("trips", res.Trips).
		Int("stop_times", res.StopTimes).
		Int("calendar_dates", res.CalendarDates).
		Int("stops", res.Stops).
		Msg("static bundle imported")
	return nil
}

func runStops(ctx context.Context, f flags, cfg *config.AppConfig, fetch *fetcher) error {
	var stops []gtfs.Stop
	if cfg.Storage.SQLitePath != "" {
		store, err := openStore(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if stops, err = store.Stops(ctx); err != nil {
			return err
		}
	} else {
		tables, err := loadStatic(ctx, cfg, fetch)
		if err != nil {
			return err
		}
		stops = tables.Stops
	}
	for _, s := range gtfs.SearchStops(stops, f.stopName) {
		fmt.Printf("%s\t%s\n", s.StopID, s.StopName)
	}
	return nil
}
