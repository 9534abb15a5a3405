package schedule

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ImportResult describes one static bundle import.
type ImportResult struct {
	ID            string
	ImportedAt    time.Time
	Trips         int
	StopTimes     int
	CalendarDates int
	Stops         int
}

// SQLStore keeps the static tables in SQLite and answers ScheduleFor with the
// stop and date filters and both joins pushed into the query.
type SQLStore struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// OpenSQLStore opens (or creates) the database at path. Use ":memory:" for a
// throwaway store.
func OpenSQLStore(path string) (*SQLStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection so ":memory:" databases are shared across calls.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLStore{conn: conn}, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// EnsureSchema creates tables if they don't exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Import replaces the stored tables with t inside a single transaction.
func (s *SQLStore) Import(ctx context.Context, t *gtfs.Tables) (*ImportResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"stop_times", "trips", "calendar_dates", "stops"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx,
		`INSERT INTO trips (trip_id, route_id, service_id, trip_short_name, trip_headsign, direction_id) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Trips, func(r gtfs.Trip) []any {
			return []any{r.TripID, r.RouteID, r.ServiceID, r.TripShortName, r.TripHeadsign, r.DirectionID}
		}); err != nil {
		return nil, fmt.Errorf("trips: %w", err)
	}
	if err := insertAll(ctx, tx,
		`INSERT INTO stop_times (trip_id, stop_id, stop_sequence, arrival_time, departure_time, track) VALUES (?, ?, ?, ?, ?, ?)`,
		t.StopTimes, func(r gtfs.StopTime) []any {
			return []any{r.TripID, r.StopID, r.StopSequence, r.ArrivalTime, r.DepartureTime, r.Track}
		}); err != nil {
		return nil, fmt.Errorf("stop_times: %w", err)
	}
	if err := insertAll(ctx, tx,
		`INSERT INTO calendar_dates (service_id, date, exception_type) VALUES (?, ?, ?)`,
		t.CalendarDates, func(r gtfs.CalendarDate) []any {
			return []any{r.ServiceID, r.Date, r.ExceptionType}
		}); err != nil {
		return nil, fmt.Errorf("calendar_dates: %w", err)
	}
	if err := insertAll(ctx, tx,
		`INSERT OR REPLACE INTO stops (stop_id, stop_name, stop_code, stop_lat, stop_lon) VALUES (?, ?, ?, ?, ?)`,
		t.Stops, func(r gtfs.Stop) []any {
			return []any{r.StopID, r.StopName, r.StopCode, r.Lat, r.Lon}
		}); err != nil {
		return nil, fmt.Errorf("stops: %w", err)
	}

	res := &ImportResult{
		ID:            uuid.New().String(),
		ImportedAt:    time.Now().UTC(),
		Trips:         len(t.Trips),
		StopTimes:     len(t.StopTimes),
		CalendarDates: len(t.CalendarDates),
		Stops:         len(t.Stops),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (import_id, imported_at, trips, stop_times, calendar_dates, stops) VALUES (?, ?, ?, ?, ?, ?)`,
		res.ID, res.ImportedAt.Unix(), res.Trips, res.StopTimes, res.CalendarDates, res.Stops); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return res, nil
}

func insertAll[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, args func(T) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, args(r)...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return nil
}

// LatestImport returns the most recent import, or nil when the store is empty.
func (s *SQLStore) LatestImport(ctx context.Context) (*ImportResult, error) {
	var (
		res ImportResult
		ts  int64
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT import_id, imported_at, trips, stop_times, calendar_dates, stops
		 FROM imports ORDER BY imported_at DESC, rowid DESC LIMIT 1`).
		Scan(&res.ID, &ts, &res.Trips, &res.StopTimes, &res.CalendarDates, &res.Stops)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest import: %w", err)
	}
	res.ImportedAt = time.Unix(ts, 0).UTC()
	return &res, nil
}

const scheduleQuery = `
SELECT st.trip_id, t.trip_short_name, st.stop_id, st.arrival_time, st.track, t.trip_headsign
FROM stop_times st
JOIN trips t ON t.trip_id = st.trip_id
JOIN (
    SELECT DISTINCT service_id FROM calendar_dates
    WHERE date = ? AND exception_type = 1
) cd ON cd.service_id = t.service_id
WHERE st.stop_id = ?`

// ScheduleFor implements Source.
func (s *SQLStore) ScheduleFor(ctx context.Context, stopID string, date time.Time) (*Schedule, error) {
	day := Day(date)
	w := warnings.New()
	if err := s.checkCalendarDates(ctx, day.Location(), w); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, scheduleQuery, FormatServiceDate(day), stopID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var cands []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.TripID, &c.Label, &c.StopID, &c.ArrivalTime, &c.Track, &c.Headsign); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule rows: %w", err)
	}

	return materialize(stopID, day, From(cands).All(), w), nil
}

// checkCalendarDates reports calendar_dates rows that can never match a
// service day. Malformed rows drop out of scheduleQuery on their own, so
// only the warnings are produced here.
func (s *SQLStore) checkCalendarDates(ctx context.Context, loc *time.Location, w *warnings.Aggregator) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT service_id, date, exception_type FROM calendar_dates ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("failed to check service dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cd gtfs.CalendarDate
		if err := rows.Scan(&cd.ServiceID, &cd.Date, &cd.ExceptionType); err != nil {
			return fmt.Errorf("failed to scan service date: %w", err)
		}
		if _, err := ParseServiceDate(cd.Date, loc); err != nil {
			w.Add(warnings.BadServiceDate, cd.ServiceID+"@"+cd.Date)
			continue
		}
		if !gtfs.ValidExceptionType(cd.ExceptionType) {
			w.Add(warnings.BadExceptionType, cd.ServiceID+"@"+cd.Date)
		}
	}
	return rows.Err()
}

// Stops returns every stored stop.
func (s *SQLStore) Stops(ctx context.Context) ([]gtfs.Stop, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT stop_id, stop_name, stop_code, stop_lat, stop_lon FROM stops ORDER BY stop_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	out := []gtfs.Stop{}
	for rows.Next() {
		var st gtfs.Stop
		if err := rows.Scan(&st.StopID, &st.StopName, &st.StopCode, &st.Lat, &st.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
