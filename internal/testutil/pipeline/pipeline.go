// Package pipeline is a small lineage fixture shared by tests: a report job
// fed by a transform job and an ingest job through two datasets.
package pipeline

import (
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

// URNs of the fixture entities.
const (
	ReportJob    = "urn:li:dataJob:(urn:li:dataFlow:(airflow,daily,PROD),report)"
	CleanDataset = "urn:li:dataset:(urn:li:dataPlatform:hive,sales_clean,PROD)"
	TransformJob = "urn:li:dataJob:(urn:li:dataFlow:(airflow,daily,PROD),transform)"
	RawDataset   = "urn:li:dataset:(urn:li:dataPlatform:hive,sales_raw,PROD)"
	IngestJob    = "urn:li:dataJob:(urn:li:dataFlow:(airflow,daily,PROD),ingest)"
)

// Execution is the execution instant the fixture runs carry.
var Execution = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// Landing is the landing time predicted for ReportJob at
// Execution: transform started at 01:00 with a 30 minute budget and
// the report itself takes 15 minutes.
var Landing = time.Date(2024, 5, 1, 1, 45, 0, 0, time.UTC)

// Records returns the report job followed by its upstream lineage, as a
// lineage query would return it. Upstreams run
//
//	report -> sales_clean -> transform -> sales_raw -> ingest
//
// and the datasets carry the incoming graph relationships, so the lineage
// graph runs the other way, from ingest down to report. Ingest has finished,
// transform is running and the report has not started.
func Records() []lineage.Record {
	budget := func(s float64) *float64 { return &s }
	run := func(props ...string) lineage.Run {
		r := lineage.Run{CustomProperties: []lineage.Property{
			{Key: lineage.RunExecutionDateKey, Value: Execution.Format(time.RFC3339)},
		}}
		for i := 0; i+1 < len(props); i += 2 {
			r.CustomProperties = append(r.CustomProperties, lineage.Property{Key: props[i], Value: props[i+1]})
		}
		return r
	}
	rel := func(typ, urn, kind string) lineage.Relationship {
		return lineage.Relationship{Type: typ, Entity: lineage.EntityRef{URN: urn, Type: kind}}
	}

	return []lineage.Record{
		{
			URN:        ReportJob,
			Type:       lineage.KindDataJob,
			RuntimeSLO: budget(900),
			Tags:       []string{"daily: finance"},
			Upstreams:  []lineage.Relationship{rel("Consumes", CleanDataset, lineage.KindDataset)},
		},
		{
			URN:              CleanDataset,
			Type:             lineage.KindDataset,
			Degree:           1,
			CustomProperties: []lineage.Property{{Key: lineage.FinishedBySLAKey, Value: "7200"}},
			Relationships: []lineage.Relationship{
				rel("Produces", TransformJob, lineage.KindDataJob),
				rel("Consumes", ReportJob, lineage.KindDataJob),
			},
			Upstreams: []lineage.Relationship{rel("DownstreamOf", TransformJob, lineage.KindDataJob)},
		},
		{
			URN:        TransformJob,
			Type:       lineage.KindDataJob,
			Degree:     2,
			RuntimeSLO: budget(1800),
			Tags:       []string{"daily: finance"},
			Upstreams:  []lineage.Relationship{rel("Consumes", RawDataset, lineage.KindDataset)},
			Runs: []lineage.Run{run(
				lineage.RunStartDateKey, "2024-05-01T01:00:00Z",
				lineage.RunStateKey, "running",
			)},
		},
		{
			URN:    RawDataset,
			Type:   lineage.KindDataset,
			Degree: 3,
			Relationships: []lineage.Relationship{
				rel("Produces", IngestJob, lineage.KindDataJob),
				rel("Consumes", TransformJob, lineage.KindDataJob),
			},
			Upstreams: []lineage.Relationship{rel("DownstreamOf", IngestJob, lineage.KindDataJob)},
		},
		{
			URN:        IngestJob,
			Type:       lineage.KindDataJob,
			Degree:     4,
			RuntimeSLO: budget(600),
			Tags:       []string{"daily: ingest"},
			Runs: []lineage.Run{run(
				lineage.RunStartDateKey, "2024-05-01T00:10:00Z",
				lineage.RunEndDateKey, "2024-05-01T00:20:00Z",
				lineage.RunStateKey, "success",
			)},
		},
	}
}
