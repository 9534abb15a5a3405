package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theoremus-urban-solutions/mnr-arrivals/utils"
)

func TestIso8601In(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	ts := time.Unix(1710504900, 0)

	assert.Equal(t, "2024-03-15T08:15:00-04:00", utils.Iso8601In(ts, ny))
	assert.Equal(t, "2024-03-15T12:15:00Z", utils.Iso8601In(ts.UTC(), nil))
	assert.Equal(t, "", utils.Iso8601In(time.Time{}, ny))
	assert.Equal(t, "", utils.Iso8601(time.Time{}))
}

func TestClockTime(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	assert.Equal(t, "08:15", utils.ClockTime(time.Unix(1710504900, 0), ny))
	assert.Equal(t, "--:--", utils.ClockTime(time.Time{}, ny))
}

func TestFormatDelay(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "on time"},
		{45 * time.Second, "on time"},
		{-30 * time.Second, "on time"},
		{3 * time.Minute, "+3m"},
		{3*time.Minute + 59*time.Second, "+3m"},
		{-time.Minute, "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, utils.FormatDelay(tt.input))
		})
	}
}

func TestMinutesUntil(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.Equal(t, 15, utils.MinutesUntil(now.Add(15*time.Minute), now))
	assert.Equal(t, 2, utils.MinutesUntil(now.Add(90*time.Second), now))
	assert.Equal(t, 0, utils.MinutesUntil(now.Add(20*time.Second), now))
	assert.Equal(t, -1, utils.MinutesUntil(now.Add(-time.Minute), now))
}
