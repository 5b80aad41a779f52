package timeliness

import (
	"testing"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := reportDate.Add(10 * time.Hour)
	finished := Run{ExecutionDate: reportDate, Start: ptime(reportDate.Add(time.Hour)), End: ptime(reportDate.Add(3 * time.Hour))}
	running := Run{ExecutionDate: reportDate, Start: ptime(reportDate.Add(2 * time.Hour))}
	pending := Run{ExecutionDate: reportDate}

	testCases := []struct {
		name string
		run  Run
		sla  SLA
		want Miss
	}{
		{
			name: "no sla",
			run:  finished,
			want: Miss{Type: NoSLADefined},
		},
		{
			name: "error finished met",
			run:  finished,
			sla:  SLA{ErrorFinishedBy: 4 * 3600, WarnStartedBy: 60},
			want: Miss{Type: ErrorFinishedBy, SLA: 4 * 3600},
		},
		{
			name: "error finished missed",
			run:  finished,
			sla:  SLA{ErrorFinishedBy: 2 * 3600},
			want: Miss{Type: ErrorFinishedBy, SLA: 2 * 3600, Missed: true, MissedBy: time.Hour},
		},
		{
			name: "unfinished run is measured now",
			run:  running,
			sla:  SLA{ErrorFinishedBy: 8 * 3600},
			want: Miss{Type: ErrorFinishedBy, SLA: 8 * 3600, Missed: true, MissedBy: 2 * time.Hour},
		},
		{
			name: "error started beats warn finished",
			run:  running,
			sla:  SLA{ErrorStartedBy: 3600, WarnFinishedBy: 60},
			want: Miss{Type: ErrorStartedBy, SLA: 3600, Missed: true, MissedBy: time.Hour},
		},
		{
			name: "warn finished",
			run:  finished,
			sla:  SLA{WarnFinishedBy: 3 * 3600, WarnStartedBy: 60},
			want: Miss{Type: WarnFinishedBy, SLA: 3 * 3600},
		},
		{
			name: "warn started on a run that never started",
			run:  pending,
			sla:  SLA{WarnStartedBy: 9 * 3600},
			want: Miss{Type: WarnStartedBy, SLA: 9 * 3600, Missed: true, MissedBy: time.Hour},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.run, tc.sla, now))
		})
	}
}

func TestSLAOf(t *testing.T) {
	rec := &lineage.Record{
		URN: "job",
		CustomProperties: []lineage.Property{
			{Key: WarnFinishedByKey, Value: "3600"},
			{Key: ErrorStartedByKey, Value: "oops"},
		},
	}
	inherited := lineage.SlaProperties{
		"job": {
			lineage.FinishedBySLAKey: {"7200", "5400"},
			lineage.StartedBySLAKey:  {"900"},
		},
	}

	got := SLAOf(rec, inherited)
	assert.Equal(t, SLA{ErrorFinishedBy: 5400, ErrorStartedBy: 900, WarnFinishedBy: 3600}, got)
	assert.True(t, got.Defined())

	assert.False(t, SLAOf(&lineage.Record{URN: "other"}, inherited).Defined())
	assert.False(t, SLAOf(&lineage.Record{URN: "job"}, nil).Defined())
}
