package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingTable is returned when a bundle lacks one of the required tables.
var ErrMissingTable = errors.New("gtfs table missing")

// requiredTables must be present in every bundle. stops.txt is optional.
var requiredTables = []string{"trips.txt", "stop_times.txt", "calendar_dates.txt"}

// LoadZip parses a GTFS zip held in memory.
func LoadZip(data []byte) (*Tables, error) {
	return LoadZipReader(bytes.NewReader(data), int64(len(data)))
}

// LoadZipReader parses a GTFS zip from any io.ReaderAt.
func LoadZipReader(r io.ReaderAt, size int64) (*Tables, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open gtfs zip: %w", err)
	}
	return loadZipFiles(zr.File)
}

// LoadZipFile opens a local GTFS zip file.
func LoadZipFile(path string) (*Tables, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()
	return loadZipFiles(zr.File)
}

func loadZipFiles(files []*zip.File) (*Tables, error) {
	t := &Tables{}
	seen := map[string]bool{}
	for _, f := range files {
		name := strings.ToLower(filepath.Base(f.Name))
		if !isKnownTable(name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		err = t.consumeCSV(name, rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		seen[name] = true
	}
	if err := checkRequired(seen); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadDir reads the tables from an unpacked bundle directory.
func LoadDir(dir string) (*Tables, error) {
	t := &Tables{}
	seen := map[string]bool{}
	for _, name := range append(append([]string{}, requiredTables...), "stops.txt") {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		err = t.consumeCSV(name, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		seen[name] = true
	}
	if err := checkRequired(seen); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile loads a bundle from a directory, a .zip file or a .gob snapshot
// written by SerializeTablesToFile.
func LoadFile(path string) (*Tables, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	switch {
	case info.IsDir():
		return LoadDir(path)
	case strings.EqualFold(filepath.Ext(path), ".gob"):
		return DeserializeTablesFromFile(path)
	default:
		return LoadZipFile(path)
	}
}

func isKnownTable(name string) bool {
	switch name {
	case "trips.txt", "stop_times.txt", "calendar_dates.txt", "stops.txt":
		return true
	}
	return false
}

func checkRequired(seen map[string]bool) error {
	for _, name := range requiredTables {
		if !seen[name] {
			return fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
	}
	return nil
}

// consumeCSV streams one table into t. Columns are looked up by header name.
func (t *Tables) consumeCSV(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.ReuseRecord = true

	head, err := csvr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s header: %w", name, err)
	}
	cols := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := func(col string) int {
		if i, ok := cols[col]; ok {
			return i
		}
		return -1
	}

	var rowFn func(get func(int) string)
	switch name {
	case "trips.txt":
		tID, rID, sID := idx("trip_id"), idx("route_id"), idx("service_id")
		sn, hs, dir := idx("trip_short_name"), idx("trip_headsign"), idx("direction_id")
		rowFn = func(get func(int) string) {
			t.Trips = append(t.Trips, Trip{
				TripID:        get(tID),
				RouteID:       get(rID),
				ServiceID:     get(sID),
				TripShortName: get(sn),
				TripHeadsign:  get(hs),
				DirectionID:   get(dir),
			})
		}
	case "stop_times.txt":
		tID, sID, sq := idx("trip_id"), idx("stop_id"), idx("stop_sequence")
		arr, dep, trk := idx("arrival_time"), idx("departure_time"), idx("track")
		rowFn = func(get func(int) string) {
			seq, _ := strconv.Atoi(get(sq))
			t.StopTimes = append(t.StopTimes, StopTime{
				TripID:        get(tID),
				StopID:        get(sID),
				StopSequence:  seq,
				ArrivalTime:   get(arr),
				DepartureTime: get(dep),
				Track:         get(trk),
			})
		}
	case "calendar_dates.txt":
		sID, d, ex := idx("service_id"), idx("date"), idx("exception_type")
		rowFn = func(get func(int) string) {
			exType := ServiceAdded
			if v := get(ex); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || !ValidExceptionType(n) {
					n = ExceptionInvalid
				}
				exType = n
			}
			t.CalendarDates = append(t.CalendarDates, CalendarDate{
				ServiceID:     get(sID),
				Date:          get(d),
				ExceptionType: exType,
			})
		}
	case "stops.txt":
		sID, sN, sC := idx("stop_id"), idx("stop_name"), idx("stop_code")
		sLat, sLon := idx("stop_lat"), idx("stop_lon")
		rowFn = func(get func(int) string) {
			lat, _ := strconv.ParseFloat(get(sLat), 64)
			lon, _ := strconv.ParseFloat(get(sLon), 64)
			t.Stops = append(t.Stops, Stop{
				StopID:   get(sID),
				StopName: get(sN),
				StopCode: get(sC),
				Lat:      lat,
				Lon:      lon,
			})
		}
	default:
		return nil
	}

	for {
		row, err := csvr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		rowFn(func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		})
	}
}
