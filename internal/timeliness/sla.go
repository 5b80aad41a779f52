package timeliness

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

// Custom property keys holding SLAs in seconds after the execution date.
const (
	ErrorFinishedByKey = "errorFinishedBy"
	ErrorStartedByKey  = "errorStartedBy"
	WarnFinishedByKey  = "warnFinishedBy"
	WarnStartedByKey   = "warnStartedBy"
)

// SLAType names the SLA a run was judged against.
type SLAType string

const (
	ErrorFinishedBy SLAType = "error finished SLA"
	ErrorStartedBy  SLAType = "error started SLA"
	WarnFinishedBy  SLAType = "warn finished SLA"
	WarnStartedBy   SLAType = "warn started SLA"
	NoSLADefined    SLAType = "no SLA defined"
)

// SLA holds the deadlines of a job, in seconds after the execution date.
// Zero means not set.
type SLA struct {
	ErrorFinishedBy float64 `json:"errorFinishedBy,omitempty"`
	ErrorStartedBy  float64 `json:"errorStartedBy,omitempty"`
	WarnFinishedBy  float64 `json:"warnFinishedBy,omitempty"`
	WarnStartedBy   float64 `json:"warnStartedBy,omitempty"`
}

// Defined reports whether any deadline is set.
func (s SLA) Defined() bool {
	return s.ErrorFinishedBy > 0 || s.ErrorStartedBy > 0 || s.WarnFinishedBy > 0 || s.WarnStartedBy > 0
}

// SLAOf reads a job's SLA from its own custom properties. The error
// deadlines fall back to the tightest finishedBySla / startedBySla handed
// down by the datasets feeding the job.
func SLAOf(rec *lineage.Record, inherited lineage.SlaProperties) SLA {
	sla := SLA{
		ErrorFinishedBy: seconds(rec, ErrorFinishedByKey),
		ErrorStartedBy:  seconds(rec, ErrorStartedByKey),
		WarnFinishedBy:  seconds(rec, WarnFinishedByKey),
		WarnStartedBy:   seconds(rec, WarnStartedByKey),
	}
	if sla.ErrorFinishedBy == 0 {
		if v, ok := inherited.EffectiveSLA(rec.URN, lineage.FinishedBySLAKey); ok && v > 0 {
			sla.ErrorFinishedBy = v
		}
	}
	if sla.ErrorStartedBy == 0 {
		if v, ok := inherited.EffectiveSLA(rec.URN, lineage.StartedBySLAKey); ok && v > 0 {
			sla.ErrorStartedBy = v
		}
	}
	return sla
}

func seconds(rec *lineage.Record, key string) float64 {
	raw, ok := rec.Property(key)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Miss describes how a run did against its SLA.
type Miss struct {
	Type     SLAType       `json:"type"`
	SLA      float64       `json:"sla,omitempty"`
	Missed   bool          `json:"missed"`
	MissedBy time.Duration `json:"missedBy,omitempty"`
}

// Classify judges run against the highest priority deadline set in sla:
// error finished, then error started, then warn finished, then warn started.
// An unfinished run is measured at now; a run that never started is measured
// at now for start deadlines.
func Classify(run Run, sla SLA, now time.Time) Miss {
	end := now
	if run.End != nil {
		end = *run.End
	}
	start := now
	if run.Start != nil {
		start = *run.Start
	}

	check := func(typ SLAType, deadline float64, actual time.Time) Miss {
		target := run.ExecutionDate.Add(time.Duration(deadline * float64(time.Second)))
		m := Miss{Type: typ, SLA: deadline}
		if actual.After(target) {
			m.Missed = true
			m.MissedBy = actual.Sub(target)
		}
		return m
	}

	switch {
	case sla.ErrorFinishedBy > 0:
		return check(ErrorFinishedBy, sla.ErrorFinishedBy, end)
	case sla.ErrorStartedBy > 0:
		return check(ErrorStartedBy, sla.ErrorStartedBy, start)
	case sla.WarnFinishedBy > 0:
		return check(WarnFinishedBy, sla.WarnFinishedBy, end)
	case sla.WarnStartedBy > 0:
		return check(WarnStartedBy, sla.WarnStartedBy, start)
	}
	return Miss{Type: NoSLADefined}
}
