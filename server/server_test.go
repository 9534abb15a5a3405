package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/mnr-arrivals/formatter"
	"github.com/theoremus-urban-solutions/mnr-arrivals/internal/fixtures"
	"github.com/theoremus-urban-solutions/mnr-arrivals/metrics"
	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
	"github.com/theoremus-urban-solutions/mnr-arrivals/server"
)

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

type brokenStore struct{ *schedule.Index }

func (brokenStore) Ping(context.Context) error { return errors.New("database is closed") }

func newTestServer(t *testing.T, fetcher server.FeedFetcher, now time.Time) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	idx := schedule.NewIndex(fixtures.Tables())
	m := metrics.NewCollector()
	srv := server.New(fetcher, idx, idx, m, zerolog.Nop(), server.Options{
		FeedName:       "mnr",
		FeedURL:        "http://feed.invalid/mnr",
		Count:          3,
		MaxCount:       10,
		Location:       fixtures.Location(t),
		ScheduleCutoff: 30 * time.Minute,
		AllowedOrigins: []string{"http://localhost:3000"},
		Now:            func() time.Time { return now },
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, m
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestArrivals_JSON(t *testing.T) {
	feed := fixtures.Feed(t, fixtures.At(t, 7, 59), fixtures.ScenarioTrain(t))
	ts, _ := newTestServer(t, &fakeFetcher{body: feed}, fixtures.At(t, 8, 0))

	resp, body := get(t, ts.URL+"/api/stops/111/arrivals")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var ab formatter.ArrivalBoard
	require.NoError(t, json.Unmarshal([]byte(body), &ab))
	assert.Equal(t, "Mamaroneck", ab.StopName)
	require.Len(t, ab.Arrivals, 1)
	assert.Equal(t, "1234", ab.Arrivals[0].Train)
	require.NotNil(t, ab.Arrivals[0].Scheduled)
	assert.Equal(t, "2", ab.Arrivals[0].Scheduled.Track)
}

func TestArrivals_Formats(t *testing.T) {
	feed := fixtures.Feed(t, fixtures.At(t, 7, 59), fixtures.ScenarioTrain(t))
	ts, _ := newTestServer(t, &fakeFetcher{body: feed}, fixtures.At(t, 8, 0))

	resp, body := get(t, ts.URL+"/api/stops/111/arrivals?format=xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<Train>1234</Train>")

	resp, body = get(t, ts.URL+"/api/stops/111/arrivals?FORMAT=text")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Contains(t, body, "08:15")
}

func TestArrivals_ScheduledToggle(t *testing.T) {
	feed := fixtures.Feed(t, fixtures.At(t, 8, 10))
	ts, _ := newTestServer(t, &fakeFetcher{body: feed}, fixtures.At(t, 8, 20))

	_, body := get(t, ts.URL+"/api/stops/111/arrivals")
	var ab formatter.ArrivalBoard
	require.NoError(t, json.Unmarshal([]byte(body), &ab))
	assert.Empty(t, ab.Arrivals)
	require.Len(t, ab.Scheduled, 1)

	_, body = get(t, ts.URL+"/api/stops/111/arrivals?scheduled=false")
	ab = formatter.ArrivalBoard{}
	require.NoError(t, json.Unmarshal([]byte(body), &ab))
	assert.Empty(t, ab.Scheduled)
}

func TestArrivals_Errors(t *testing.T) {
	feed := fixtures.Feed(t, fixtures.At(t, 7, 59), fixtures.ScenarioTrain(t))

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		path    string
		status  int
		outcome string
	}{
		{name: "bad count", fetcher: &fakeFetcher{body: feed}, path: "/api/stops/111/arrivals?count=abc", status: http.StatusBadRequest},
		{name: "count too large", fetcher: &fakeFetcher{body: feed}, path: "/api/stops/111/arrivals?count=11", status: http.StatusBadRequest},
		{name: "bad format", fetcher: &fakeFetcher{body: feed}, path: "/api/stops/111/arrivals?format=csv", status: http.StatusBadRequest},
		{name: "bad direction", fetcher: &fakeFetcher{body: feed}, path: "/api/stops/111/arrivals?direction=2", status: http.StatusBadRequest},
		{name: "unknown stop", fetcher: &fakeFetcher{body: feed}, path: "/api/stops/999/arrivals", status: http.StatusNotFound},
		{name: "fetch failure", fetcher: &fakeFetcher{err: errors.New("connection refused")}, path: "/api/stops/111/arrivals", status: http.StatusBadGateway, outcome: metrics.OutcomeFetchError},
		{name: "malformed feed", fetcher: &fakeFetcher{body: []byte("garbage")}, path: "/api/stops/111/arrivals", status: http.StatusBadGateway, outcome: metrics.OutcomeDecodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, tt.fetcher, fixtures.At(t, 8, 0))
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)

			var er server.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &er))
			assert.NotEmpty(t, er.Error)

			if tt.outcome != "" {
				_, metricsBody := get(t, ts.URL+"/metrics")
				assert.Contains(t, metricsBody, `arrivals_cycles_total{outcome="`+tt.outcome+`"} 1`)
			}
		})
	}
}

func TestArrivals_Filters(t *testing.T) {
	feed := fixtures.Feed(t, fixtures.At(t, 7, 59),
		fixtures.ScenarioTrain(t),
		fixtures.Train{TripID: "X1", RouteID: "2", Label: "8888",
			Calls: []fixtures.Call{{StopID: fixtures.StopID, Arrival: fixtures.At(t, 8, 30)}}},
	)
	ts, _ := newTestServer(t, &fakeFetcher{body: feed}, fixtures.At(t, 8, 0))

	_, body := get(t, ts.URL+"/api/stops/111/arrivals?route=2&count=5")
	var ab formatter.ArrivalBoard
	require.NoError(t, json.Unmarshal([]byte(body), &ab))
	require.Len(t, ab.Arrivals, 1)
	assert.Equal(t, "8888", ab.Arrivals[0].Train)

	_, body = get(t, ts.URL+"/api/stops/111/arrivals?count=1")
	ab = formatter.ArrivalBoard{}
	require.NoError(t, json.Unmarshal([]byte(body), &ab))
	require.Len(t, ab.Arrivals, 1)
	assert.Equal(t, "1234", ab.Arrivals[0].Train)
}

func TestStops(t *testing.T) {
	ts, _ := newTestServer(t, &fakeFetcher{}, fixtures.At(t, 8, 0))

	resp, body := get(t, ts.URL+"/api/stops?name=mamar")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr server.StopsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &sr))
	require.Equal(t, 1, sr.Count)
	assert.Equal(t, "111", sr.Stops[0].StopID)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &fakeFetcher{}, fixtures.At(t, 8, 0))
	resp, body := get(t, ts.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"static":"memory"`)

	idx := schedule.NewIndex(fixtures.Tables())
	broken := brokenStore{idx}
	srv := server.New(&fakeFetcher{}, broken, broken, nil, zerolog.Nop(), server.Options{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is closed")
}

func TestCORS(t *testing.T) {
	ts, _ := newTestServer(t, &fakeFetcher{}, fixtures.At(t, 8, 0))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
