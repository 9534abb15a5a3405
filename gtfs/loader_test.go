package gtfs_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfs"
)

const testBundle = "testdata/mnr"

func zipBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readBundle(t *testing.T) map[string]string {
	t.Helper()
	files := map[string]string{}
	for _, name := range []string{"trips.txt", "stop_times.txt", "calendar_dates.txt", "stops.txt"} {
		data, err := os.ReadFile(filepath.Join(testBundle, name))
		require.NoError(t, err)
		files[name] = string(data)
	}
	return files
}

func TestLoadDir(t *testing.T) {
	tables, err := gtfs.LoadDir(testBundle)
	require.NoError(t, err)

	require.Len(t, tables.Trips, 3)
	assert.Equal(t, gtfs.Trip{
		TripID:        "T1",
		RouteID:       "1",
		ServiceID:     "S1",
		TripShortName: "1234",
		TripHeadsign:  "Grand Central",
		DirectionID:   "1",
	}, tables.Trips[0])

	require.Len(t, tables.StopTimes, 4)
	assert.Equal(t, "111", tables.StopTimes[1].StopID)
	assert.Equal(t, "08:15:00", tables.StopTimes[1].ArrivalTime)
	assert.Equal(t, "2", tables.StopTimes[1].Track)
	assert.Equal(t, 2, tables.StopTimes[1].StopSequence)

	require.Len(t, tables.CalendarDates, 5)
	assert.Equal(t, gtfs.ServiceRemoved, tables.CalendarDates[1].ExceptionType)
	assert.Equal(t, "20241340", tables.CalendarDates[3].Date)
	assert.Equal(t, gtfs.ExceptionInvalid, tables.CalendarDates[4].ExceptionType)

	require.Len(t, tables.Stops, 3)
	assert.Equal(t, "MAM", tables.Stops[1].StopCode)
	assert.InDelta(t, 40.954008, tables.Stops[1].Lat, 1e-9)
}

func TestLoadZip(t *testing.T) {
	files := readBundle(t)
	// Bundles are often nested one directory deep.
	nested := map[string]string{}
	for name, body := range files {
		nested["google_transit/"+name] = body
	}
	nested["agency.txt"] = "agency_id,agency_name\n1,MNR\n"

	tables, err := gtfs.LoadZip(zipBundle(t, nested))
	require.NoError(t, err)
	assert.Len(t, tables.Trips, 3)
	assert.Len(t, tables.StopTimes, 4)
	assert.Len(t, tables.CalendarDates, 5)
	assert.Len(t, tables.Stops, 3)
}

func TestLoadZip_Errors(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		wantErr error
	}{
		{name: "no trips", drop: "trips.txt", wantErr: gtfs.ErrMissingTable},
		{name: "no stop_times", drop: "stop_times.txt", wantErr: gtfs.ErrMissingTable},
		{name: "no calendar_dates", drop: "calendar_dates.txt", wantErr: gtfs.ErrMissingTable},
		{name: "no stops is fine", drop: "stops.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := readBundle(t)
			delete(files, tt.drop)
			_, err := gtfs.LoadZip(zipBundle(t, files))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.drop)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := gtfs.LoadZip([]byte("not a zip"))
	assert.Error(t, err)
}

func TestLoadZip_HeaderHandling(t *testing.T) {
	files := map[string]string{
		// BOM, reordered columns, padding and a missing exception_type.
		"trips.txt":          "\ufefftrip_id , trip_short_name,service_id\nT9, 9999 ,S9\n",
		"stop_times.txt":     "stop_id,trip_id,arrival_time\n111,T9,7:05:00\n",
		"calendar_dates.txt": "date,service_id,exception_type\n20240315,S9,\n",
	}
	tables, err := gtfs.LoadZip(zipBundle(t, files))
	require.NoError(t, err)

	require.Len(t, tables.Trips, 1)
	assert.Equal(t, "T9", tables.Trips[0].TripID)
	assert.Equal(t, "9999", tables.Trips[0].TripShortName)
	assert.Equal(t, "", tables.Trips[0].TripHeadsign)
	assert.Equal(t, "", tables.StopTimes[0].Track)
	assert.Equal(t, "7:05:00", tables.StopTimes[0].ArrivalTime)
	assert.Equal(t, gtfs.ServiceAdded, tables.CalendarDates[0].ExceptionType)
	assert.Empty(t, tables.Stops)
}

func TestLoadZip_ExceptionType(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "1", want: gtfs.ServiceAdded},
		{raw: "2", want: gtfs.ServiceRemoved},
		{raw: "", want: gtfs.ServiceAdded},
		{raw: "x", want: gtfs.ExceptionInvalid},
		{raw: "0", want: gtfs.ExceptionInvalid},
		{raw: "3", want: gtfs.ExceptionInvalid},
	}
	for _, tt := range tests {
		t.Run("value "+tt.raw, func(t *testing.T) {
			files := map[string]string{
				"trips.txt":          "trip_id,service_id\nT9,S9\n",
				"stop_times.txt":     "trip_id,stop_id,arrival_time\nT9,111,07:05:00\n",
				"calendar_dates.txt": "service_id,date,exception_type\nS9,20240315," + tt.raw + "\n",
			}
			tables, err := gtfs.LoadZip(zipBundle(t, files))
			require.NoError(t, err)
			require.Len(t, tables.CalendarDates, 1)
			assert.Equal(t, tt.want, tables.CalendarDates[0].ExceptionType)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "gtfs.zip")
	require.NoError(t, os.WriteFile(zipPath, zipBundle(t, readBundle(t)), 0o644))

	fromDir, err := gtfs.LoadFile(testBundle)
	require.NoError(t, err)

	fromZip, err := gtfs.LoadFile(zipPath)
	require.NoError(t, err)
	assert.Equal(t, fromDir, fromZip)

	gobPath := filepath.Join(dir, "tables.gob")
	require.NoError(t, gtfs.SerializeTablesToFile(fromDir, gobPath))
	fromGob, err := gtfs.LoadFile(gobPath)
	require.NoError(t, err)
	assert.Equal(t, fromDir, fromGob)

	_, err = gtfs.LoadFile(filepath.Join(dir, "missing.zip"))
	assert.Error(t, err)
}
