package lineage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		raw    string
		want   time.Time
		wantOK bool
	}{
		{name: "rfc3339 utc", raw: "2024-03-01T06:30:00Z", want: want, wantOK: true},
		{name: "rfc3339 offset", raw: "2024-03-01T08:30:00+02:00", want: want, wantOK: true},
		{name: "no zone", raw: "2024-03-01T06:30:00", want: want, wantOK: true},
		{name: "space separated", raw: "2024-03-01 06:30:00+00:00", want: want, wantOK: true},
		{name: "epoch millis", raw: "1709274600000", want: want, wantOK: true},
		{name: "bare date", raw: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", raw: "  "},
		{name: "garbage", raw: "yesterday"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestRunForExecution(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	runs := []Run{
		{CustomProperties: []Property{{Key: RunExecutionDateKey, Value: "2024-02-29T00:00:00Z"}}},
		{CustomProperties: []Property{{Key: RunExecutionDateKey, Value: "not a date"}}},
		{
			ExternalURL: "https://scheduler/run/2",
			CustomProperties: []Property{
				{Key: RunExecutionDateKey, Value: "2024-03-01T00:00:00+00:00"},
				{Key: RunStartDateKey, Value: "2024-03-01T00:05:00Z"},
				{Key: RunStateKey, Value: "Running"},
			},
		},
	}

	run, ok := RunForExecution(runs, at)
	assert.True(t, ok)
	assert.Equal(t, "https://scheduler/run/2", run.ExternalURL)
	assert.Equal(t, "running", run.State())

	start, ok := run.StartDate()
	assert.True(t, ok)
	assert.Equal(t, at.Add(5*time.Minute), start)

	_, ok = run.EndDate()
	assert.False(t, ok)

	_, ok = RunForExecution(runs, at.Add(time.Hour))
	assert.False(t, ok)
}
