package warnings_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"
)

func TestAggregator(t *testing.T) {
	a := warnings.New()
	for _, ex := range []string{"T1@111", "T2@111", "T3@111", "T4@111"} {
		a.Add(warnings.BadArrivalTime, ex)
	}
	a.Add(warnings.NoScheduleMatch, "8888")

	assert.Equal(t, 4, a.Count(warnings.BadArrivalTime))
	assert.Equal(t, 1, a.Count(warnings.NoScheduleMatch))
	assert.Equal(t, 0, a.Count(warnings.BadServiceDate))
	assert.Equal(t, 5, a.Total())

	sums := a.Summaries()
	require.Len(t, sums, 2)
	assert.Equal(t, warnings.BadArrivalTime, sums[0].Type)
	assert.Equal(t, []string{"T1@111", "T2@111", "T3@111"}, sums[0].Examples)
	assert.NotEqual(t, "unknown issue", sums[0].Description)
	assert.Equal(t, warnings.NoScheduleMatch, sums[1].Type)
}

func TestAggregator_Merge(t *testing.T) {
	a := warnings.New()
	a.Add(warnings.DuplicateTripLabel, "1234")

	b := warnings.New()
	b.Add(warnings.DuplicateTripLabel, "1236")
	b.Add(warnings.BadServiceDate, "S3@2024-03-15")

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 2, a.Count(warnings.DuplicateTripLabel))
	assert.Equal(t, 1, a.Count(warnings.BadServiceDate))
	assert.Equal(t, 1, b.Count(warnings.DuplicateTripLabel), "merge must not modify its argument")
}

func TestAggregator_Nil(t *testing.T) {
	var a *warnings.Aggregator
	assert.Zero(t, a.Total())
	assert.Zero(t, a.Count(warnings.BadArrivalTime))
	assert.Empty(t, a.Summaries())
}

func TestAggregator_LogAll(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	a := warnings.New()
	a.Add(warnings.BadServiceDate, "S3@2024-03-15")
	a.Add(warnings.MissingVehicleLabel, "T5")
	a.LogAll(logger, "mnr", "111")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "warn", ev["level"])
	assert.Equal(t, "mnr", ev["feed"])
	assert.Equal(t, "111", ev["stop_id"])
	assert.Equal(t, warnings.BadServiceDate, ev["warning"])
	assert.Equal(t, float64(1), ev["count"])
	assert.Contains(t, ev["message"], "S3@2024-03-15")

	buf.Reset()
	warnings.New().LogAll(logger, "mnr", "111")
	assert.Empty(t, buf.String())
}
