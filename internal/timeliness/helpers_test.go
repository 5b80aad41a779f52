package timeliness

import (
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

var reportDate = time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC) // a Wednesday

func ts(t time.Time) string { return t.Format(time.RFC3339) }

// lrun builds a lineage run. Zero start or end leave the property out.
func lrun(exec, start, end time.Time, state string) lineage.Run {
	props := []lineage.Property{{Key: lineage.RunExecutionDateKey, Value: ts(exec)}}
	if !start.IsZero() {
		props = append(props, lineage.Property{Key: lineage.RunStartDateKey, Value: ts(start)})
	}
	if !end.IsZero() {
		props = append(props, lineage.Property{Key: lineage.RunEndDateKey, Value: ts(end)})
	}
	if state != "" {
		props = append(props, lineage.Property{Key: lineage.RunStateKey, Value: state})
	}
	return lineage.Run{ExternalURL: "https://scheduler/" + ts(exec) + "/" + ts(start), CustomProperties: props}
}

// daily builds a finished run executed days before the report date that
// starts after startAfter and runs for dur.
func daily(days int, startAfter, dur time.Duration) lineage.Run {
	exec := reportDate.AddDate(0, 0, -days)
	start := exec.Add(startAfter)
	return lrun(exec, start, start.Add(dur), "success")
}

func ptime(t time.Time) *time.Time { return &t }
