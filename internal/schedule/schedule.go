// Package schedule derives execution instants from cron schedules, so a
// prediction can be asked for "the run that should be in flight now" instead
// of an explicit execution date.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// maxLookback bounds the backwards search for a tick. Yearly schedules are
// the sparsest supported.
const maxLookback = 2 * 366 * 24 * time.Hour

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Schedule is a parsed cron expression.
type Schedule struct {
	expr string
	spec cron.Schedule
}

// Parse accepts standard five field expressions, an optional leading seconds
// field, descriptors such as "@daily" and a CRON_TZ= prefix.
func Parse(expr string) (*Schedule, error) {
	spec, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Schedule{expr: expr, spec: spec}, nil
}

// String returns the expression the schedule was parsed from.
func (s *Schedule) String() string { return s.expr }

// Next returns the first tick strictly after t.
func (s *Schedule) Next(t time.Time) time.Time { return s.spec.Next(t) }

// Latest returns the latest tick at or before ref. ok is false when the
// schedule has not fired within the lookback window.
func (s *Schedule) Latest(ref time.Time) (tick time.Time, ok bool) {
	for window := time.Minute; ; window *= 2 {
		if window > maxLookback {
			window = maxLookback
		}
		// Next is strictly after its argument, so step back one second to
		// include a tick that falls exactly on the window start.
		start := ref.Add(-window).Add(-time.Second)
		for t := s.spec.Next(start); !t.IsZero() && !t.After(ref); t = s.spec.Next(t) {
			tick, ok = t, true
		}
		if ok || window == maxLookback {
			return tick, ok
		}
	}
}

// ExecutionDate is the execution instant of the run that ref belongs to: the
// latest tick at or before ref.
func ExecutionDate(expr string, ref time.Time) (time.Time, error) {
	s, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	tick, ok := s.Latest(ref)
	if !ok {
		return time.Time{}, fmt.Errorf("schedule %q has no tick before %s", expr, ref.Format(time.RFC3339))
	}
	return tick, nil
}
