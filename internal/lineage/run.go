package lineage

import (
	"strconv"
	"strings"
	"time"
)

// Custom property keys carried by runs.
const (
	RunExecutionDateKey = "executionDate"
	RunStartDateKey     = "startDate"
	RunEndDateKey       = "endDate"
	RunStateKey         = "state"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats found in run properties:
// RFC 3339 with or without zone, a space separated variant, a bare date, or
// integer epoch milliseconds. Timestamps without a zone are taken as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Time returns the run property key parsed as a timestamp. ok is false when
// the property is absent or malformed.
func (r Run) Time(key string) (time.Time, bool) {
	v, ok := r.Property(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseTimestamp(v)
}

// ExecutionDate is the logical instant the run belongs to.
func (r Run) ExecutionDate() (time.Time, bool) { return r.Time(RunExecutionDateKey) }

// StartDate is when the run actually started.
func (r Run) StartDate() (time.Time, bool) { return r.Time(RunStartDateKey) }

// EndDate is when the run finished.
func (r Run) EndDate() (time.Time, bool) { return r.Time(RunEndDateKey) }

// State returns the lower-cased run state property.
func (r Run) State() string {
	v, _ := r.Property(RunStateKey)
	return strings.ToLower(strings.TrimSpace(v))
}

// RunForExecution returns the first run whose execution date equals at.
func RunForExecution(runs []Run, at time.Time) (Run, bool) {
	for _, run := range runs {
		if exec, ok := run.ExecutionDate(); ok && exec.Equal(at) {
			return run, true
		}
	}
	return Run{}, false
}
