package timeliness

import (
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

// RunState is the normalised state of a run.
type RunState string

const (
	NotStarted RunState = "NOT STARTED"
	Running    RunState = "RUNNING"
	Success    RunState = "SUCCESS"
	Failure    RunState = "FAILURE"
	Skipped    RunState = "SKIPPED"
	UpForRetry RunState = "UP_FOR_RETRY"
)

// ParseState maps the state reported by the scheduler onto a RunState. A run
// that reports no state is still running.
func ParseState(raw string) RunState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "running", "queued":
		return Running
	case "success", "succeeded":
		return Success
	case "failure", "failed":
		return Failure
	case "skipped":
		return Skipped
	case "up_for_retry", "up for retry":
		return UpForRetry
	case "not started", "not_started":
		return NotStarted
	default:
		return RunState(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

// Run is one attempt of a job for an execution date.
type Run struct {
	ExecutionDate time.Time  `json:"executionDate"`
	Start         *time.Time `json:"startDate,omitempty"`
	End           *time.Time `json:"endDate,omitempty"`
	State         RunState   `json:"state"`
	ExternalURL   string     `json:"externalUrl,omitempty"`
	Miss          Miss       `json:"slaMiss"`
}

// Finished reports whether the run has an end date.
func (r Run) Finished() bool { return r.End != nil }

// Duration is end minus start for finished runs.
func (r Run) Duration() (time.Duration, bool) {
	if r.Start == nil || r.End == nil {
		return 0, false
	}
	return r.End.Sub(*r.Start), true
}

// LandingTime is the time from the execution date to the end of the run.
func (r Run) LandingTime() (time.Duration, bool) {
	if r.End == nil {
		return 0, false
	}
	return r.End.Sub(r.ExecutionDate), true
}

// FromLineage converts a run of the lineage query. ok is false when the
// execution date is missing or malformed, since such a run cannot be placed.
func FromLineage(run lineage.Run) (Run, bool) {
	exec, ok := run.ExecutionDate()
	if !ok {
		return Run{}, false
	}
	out := Run{ExecutionDate: exec, ExternalURL: run.ExternalURL, State: ParseState(run.State())}
	if start, ok := run.StartDate(); ok {
		out.Start = &start
	}
	if end, ok := run.EndDate(); ok {
		out.End = &end
	}
	return out, true
}

// Runs converts every placeable run of a record.
func Runs(runs []lineage.Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if conv, ok := FromLineage(r); ok {
			out = append(out, conv)
		}
	}
	return out
}

// startKey orders runs by start date; runs that never started sort first.
func startKey(r Run) time.Time {
	if r.Start == nil {
		return time.Time{}
	}
	return *r.Start
}

// latestTry returns the run with the latest start among runs, which is the
// last retry of an execution date.
func latestTry(runs []Run) *Run {
	if len(runs) == 0 {
		return nil
	}
	sorted := append([]Run(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return startKey(sorted[i]).After(startKey(sorted[j]))
	})
	return &sorted[0]
}

// LatestTries keeps only the last try of every execution date, ordered by
// execution date.
func LatestTries(runs []Run) []Run {
	byDate := make(map[time.Time][]Run)
	for _, r := range runs {
		key := r.ExecutionDate.UTC()
		byDate[key] = append(byDate[key], r)
	}
	out := make([]Run, 0, len(byDate))
	for _, tries := range byDate {
		out = append(out, *latestTry(tries))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExecutionDate.Before(out[j].ExecutionDate)
	})
	return out
}
