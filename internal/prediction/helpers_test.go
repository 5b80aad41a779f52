package prediction

import (
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

var execDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func slo(seconds float64) *float64 { return &seconds }

func consumes(ids ...string) []lineage.Relationship {
	rels := make([]lineage.Relationship, 0, len(ids))
	for _, id := range ids {
		rels = append(rels, lineage.Relationship{Type: "Consumes", Entity: lineage.EntityRef{URN: id}})
	}
	return rels
}

// run builds a run for execDate. Empty start or end leave the property out.
func run(start, end string) lineage.Run {
	props := []lineage.Property{{Key: lineage.RunExecutionDateKey, Value: execDate.Format(time.RFC3339)}}
	if start != "" {
		props = append(props, lineage.Property{Key: lineage.RunStartDateKey, Value: start})
	}
	if end != "" {
		props = append(props, lineage.Property{Key: lineage.RunEndDateKey, Value: end})
	}
	return lineage.Run{CustomProperties: props}
}

func jobRecord(id string, degree int, budget *float64, upstreams []lineage.Relationship, runs ...lineage.Run) lineage.Record {
	return lineage.Record{
		URN:        id,
		Type:       lineage.KindDataJob,
		Degree:     degree,
		RuntimeSLO: budget,
		Upstreams:  upstreams,
		Runs:       runs,
	}
}

func at(offset time.Duration) time.Time { return execDate.Add(offset) }

func stamp(offset time.Duration) string { return at(offset).Format(time.RFC3339) }
