package timeliness

import (
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/urn"
)

// DefaultPreviousRuns is how many earlier runs a job report lists.
const DefaultPreviousRuns = 7

// UndefinedSegment groups jobs without a segment tag for the report.
const UndefinedSegment = "Segment Undefined"

// Job is the timeliness of one job on the report date.
type Job struct {
	URN     string `json:"urn"`
	JobID   string `json:"jobId"`
	Segment string `json:"segment"`
	SLA     SLA    `json:"sla"`

	// Current is the last try of the run whose execution date is the report
	// date, nil when the job has not run yet.
	Current      *Run     `json:"current,omitempty"`
	CurrentState RunState `json:"currentState"`
	// Previous are the latest runs at or before the report date, newest
	// first, excluding Current.
	Previous            []Run `json:"previous,omitempty"`
	PreviousSameWeekday *Run  `json:"previousSameWeekday,omitempty"`
	PreviousMonthStart  *Run  `json:"previousMonthStart,omitempty"`
	// Latest keeps the last try of every execution date.
	Latest []Run `json:"latest,omitempty"`

	AverageDuration    time.Duration `json:"averageDuration"`
	AverageLandingTime time.Duration `json:"averageLandingTime"`
}

// JobOptions controls how a job report is assembled.
type JobOptions struct {
	ReportName   string
	Date         time.Time
	Now          time.Time
	PreviousRuns int
	// Inherited are the SLA properties handed down from datasets.
	Inherited lineage.SlaProperties
}

// BuildJob assembles the report of one job.
func BuildJob(rec *lineage.Record, opts JobOptions) Job {
	if opts.PreviousRuns <= 0 {
		opts.PreviousRuns = DefaultPreviousRuns
	}
	jobID, ok := rec.Property("jobId")
	if !ok || jobID == "" {
		jobID = urn.ShortName(rec.URN)
	}

	job := Job{
		URN:     rec.URN,
		JobID:   jobID,
		Segment: SegmentOf(rec.Tags, opts.ReportName),
		SLA:     SLAOf(rec, opts.Inherited),
	}

	runs := Runs(rec.Runs)
	for i := range runs {
		runs[i].Miss = Classify(runs[i], job.SLA, opts.Now)
	}

	job.Current = currentRun(runs, opts.Date)
	job.CurrentState = NotStarted
	if job.Current != nil {
		job.CurrentState = job.Current.State
	}
	job.Previous = previousRuns(runs, opts.Date, job.Current, opts.PreviousRuns)
	job.PreviousSameWeekday = currentRun(runs, opts.Date.AddDate(0, 0, -7))
	job.PreviousMonthStart = previousMonthStart(runs, opts.Date)
	job.Latest = LatestTries(runs)
	job.AverageDuration = averageDuration(runs)
	job.AverageLandingTime = averageLandingTime(runs)
	return job
}

// SegmentOf returns the segment named by the first tag of the form
// "<report>: <segment>", or UndefinedSegment.
func SegmentOf(tags []string, reportName string) string {
	prefix := reportName + ":"
	for _, tag := range tags {
		if strings.HasPrefix(tag, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(tag, prefix))
		}
	}
	return UndefinedSegment
}

func currentRun(runs []Run, date time.Time) *Run {
	var matching []Run
	for _, r := range runs {
		if r.ExecutionDate.Equal(date) {
			matching = append(matching, r)
		}
	}
	return latestTry(matching)
}

// previousMonthStart is the last try of the latest run executed on the first
// of a month strictly before date.
func previousMonthStart(runs []Run, date time.Time) *Run {
	var candidates []Run
	for _, r := range runs {
		if r.ExecutionDate.UTC().Day() == 1 && r.ExecutionDate.Before(date) {
			candidates = append(candidates, r)
		}
	}
	return latestTry(candidates)
}

func previousRuns(runs []Run, date time.Time, current *Run, limit int) []Run {
	sorted := append([]Run(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExecutionDate.After(sorted[j].ExecutionDate)
	})

	var out []Run
	for _, r := range sorted {
		if r.ExecutionDate.After(date) || sameRun(r, current) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

func sameRun(r Run, current *Run) bool {
	if current == nil || !r.ExecutionDate.Equal(current.ExecutionDate) {
		return false
	}
	return startKey(r).Equal(startKey(*current)) && r.ExternalURL == current.ExternalURL
}

func averageDuration(runs []Run) time.Duration {
	var total time.Duration
	n := 0
	for _, r := range runs {
		if d, ok := r.Duration(); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func averageLandingTime(runs []Run) time.Duration {
	var total time.Duration
	n := 0
	for _, r := range runs {
		if d, ok := r.LandingTime(); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// EstimatedLanding is when the job's current run lands or is expected to: its
// end when finished, its start plus the average duration when running, or
// the report date plus the average landing time otherwise. ok is false when
// none of these is known.
func (j Job) EstimatedLanding(date time.Time) (landing time.Time, estimated, ok bool) {
	if cur := j.Current; cur != nil {
		if cur.End != nil {
			return *cur.End, false, true
		}
		if j.AverageDuration > 0 && cur.Start != nil {
			return cur.Start.Add(j.AverageDuration), true, true
		}
	}
	if j.AverageLandingTime > 0 {
		return date.Add(j.AverageLandingTime), true, true
	}
	return time.Time{}, false, false
}
