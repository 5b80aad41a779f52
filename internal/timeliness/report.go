package timeliness

import (
	"context"
	"sort"
	"time"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
)

// SegmentState rolls the current states of a segment's jobs up.
type SegmentState string

const (
	SegmentRunning    SegmentState = "in progress"
	SegmentCompleted  SegmentState = "completed"
	SegmentFailed     SegmentState = "failed"
	SegmentNotStarted SegmentState = "not started"
)

// Segment is a group of jobs sharing a segment tag.
type Segment struct {
	Name               string        `json:"name"`
	AverageLandingTime time.Duration `json:"averageLandingTime"`
	State              SegmentState  `json:"state"`
	MissedSLA          bool          `json:"missedSla"`
	// LastLanding is the estimated landing of the job that lands last on
	// average. Zero when unknown.
	LastLanding time.Time `json:"lastLanding,omitempty"`
	// Jobs are ordered by average landing time.
	Jobs []Job `json:"jobs"`
}

// Report is the timeliness report of one report date.
type Report struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Segments []Segment `json:"segments"`
}

// Options controls report generation.
type Options struct {
	Name         string
	Date         time.Time
	Now          time.Time
	PreviousRuns int
	Inherited    lineage.SlaProperties
}

// Build assembles the report for jobs. Segments are ordered by average
// landing time.
func Build(ctx context.Context, jobs []lineage.Record, opts Options) Report {
	logger := ctxlog.FromContext(ctx).With("report", opts.Name)
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	jobOpts := JobOptions{
		ReportName:   opts.Name,
		Date:         opts.Date,
		Now:          opts.Now,
		PreviousRuns: opts.PreviousRuns,
		Inherited:    opts.Inherited,
	}

	grouped := make(map[string][]Job)
	var names []string
	for i := range jobs {
		job := BuildJob(&jobs[i], jobOpts)
		if _, ok := grouped[job.Segment]; !ok {
			names = append(names, job.Segment)
		}
		grouped[job.Segment] = append(grouped[job.Segment], job)
	}

	report := Report{Name: opts.Name, Date: opts.Date}
	for _, name := range names {
		report.Segments = append(report.Segments, buildSegment(name, grouped[name], opts.Date))
	}
	sort.SliceStable(report.Segments, func(i, j int) bool {
		return report.Segments[i].AverageLandingTime < report.Segments[j].AverageLandingTime
	})

	logger.Debug("Build: Timeliness report assembled.", "jobs", len(jobs), "segments", len(report.Segments))
	return report
}

func buildSegment(name string, jobs []Job, date time.Time) Segment {
	ordered := append([]Job(nil), jobs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AverageLandingTime < ordered[j].AverageLandingTime
	})

	seg := Segment{Name: name, Jobs: ordered, State: segmentState(ordered)}
	var total time.Duration
	for _, j := range ordered {
		total += j.AverageLandingTime
		if j.Current != nil && j.Current.Miss.Missed {
			seg.MissedSLA = true
		}
	}
	if len(ordered) > 0 {
		seg.AverageLandingTime = total / time.Duration(len(ordered))
		if landing, _, ok := ordered[len(ordered)-1].EstimatedLanding(date); ok {
			seg.LastLanding = landing
		}
	}
	return seg
}

func segmentState(jobs []Job) SegmentState {
	anyIn := func(states ...RunState) bool {
		for _, j := range jobs {
			for _, s := range states {
				if j.CurrentState == s {
					return true
				}
			}
		}
		return false
	}
	allIn := func(states ...RunState) bool {
		for _, j := range jobs {
			matched := false
			for _, s := range states {
				if j.CurrentState == s {
					matched = true
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}

	switch {
	case anyIn(Running):
		return SegmentRunning
	case anyIn(Failure):
		return SegmentFailed
	case allIn(Success, Skipped):
		return SegmentCompleted
	case allIn(NotStarted):
		return SegmentNotStarted
	}
	return SegmentRunning
}
