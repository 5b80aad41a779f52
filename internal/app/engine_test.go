package app

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/testutil"
	"github.com/specialistvlad/timeliness/internal/testutil/pipeline"
	"github.com/specialistvlad/timeliness/internal/timeliness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	a, logs := setupAppTest(t, "")
	ctx := context.Background()

	t.Run("collapsed by default", func(t *testing.T) {
		idx := a.Index(ctx, pipeline.IngestJob, pipeline.Records(), nil)
		assert.True(t, idx.Collapsed)
		assert.Equal(t, map[string]int{
			pipeline.IngestJob:    0,
			pipeline.TransformJob: 1,
			pipeline.ReportJob:    2,
		}, idx.Ranks)
		assert.Equal(t, []string{"7200"}, idx.SlaProperties.Values(pipeline.ReportJob, lineage.FinishedBySLAKey))
		assert.Empty(t, idx.SlaProperties.Values(pipeline.TransformJob, lineage.FinishedBySLAKey))
	})

	t.Run("collapse override", func(t *testing.T) {
		off := false
		idx := a.Index(ctx, pipeline.IngestJob, pipeline.Records(), &off)
		assert.False(t, idx.Collapsed)
		assert.Equal(t, 4, idx.Ranks[pipeline.ReportJob])
		assert.Equal(t, 3, idx.Ranks[pipeline.CleanDataset])
		assert.Equal(t, 1, idx.Ranks[pipeline.RawDataset])
	})

	t.Run("no records", func(t *testing.T) {
		idx := a.Index(ctx, "urn:x", nil, nil)
		assert.Equal(t, map[string]int{"urn:x": 0}, idx.Ranks)
	})

	t.Run("upstream links stay out of the graph", func(t *testing.T) {
		idx := a.Index(ctx, pipeline.ReportJob, pipeline.Records(), nil)
		assert.Equal(t, map[string]int{pipeline.ReportJob: 0}, idx.Ranks)
	})

	testutil.AssertLogged(t, logs, "NewIndex: Ranks computed.", "ranked=")
}

func TestIndex_CollapseWhenExpression(t *testing.T) {
	a, _ := setupAppTest(t, `
collapse {
  when = entity.kind == "DATA_JOB" && entity.id != "`+pipeline.IngestJob+`"
}
`)
	idx := a.Index(context.Background(), pipeline.IngestJob, pipeline.Records(), nil)

	assert.Equal(t, map[string]int{
		pipeline.IngestJob:    0,
		pipeline.RawDataset:   1,
		pipeline.CleanDataset: 2,
	}, idx.Ranks)
}

func TestPredict(t *testing.T) {
	a, _ := setupAppTest(t, "")
	records := pipeline.Records()

	res := a.Predict(context.Background(), records[0], records[1:], pipeline.Execution)
	require.True(t, res.Estimable)
	assert.Equal(t, pipeline.Landing, res.LandingTime)
}

func TestExecutionInstant(t *testing.T) {
	a, _ := setupAppTest(t, `
prediction {
  schedule = "0 6 * * *"
}
`)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	explicit := time.Date(2024, 4, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	got, err := a.ExecutionInstant(explicit, "", now)
	require.NoError(t, err)
	assert.Equal(t, explicit.UTC(), got)

	got, err = a.ExecutionInstant(time.Time{}, "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), got)

	got, err = a.ExecutionInstant(time.Time{}, "@hourly", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), got)

	_, err = a.ExecutionInstant(time.Time{}, "not a schedule", now)
	assert.ErrorContains(t, err, "failed to derive execution instant")
}

func TestExecutionInstant_NothingToDeriveFrom(t *testing.T) {
	a, _ := setupAppTest(t, "")
	_, err := a.ExecutionInstant(time.Time{}, "", time.Now())
	assert.ErrorIs(t, err, ErrNoExecutionInstant)
}

func TestStoredUseCases(t *testing.T) {
	a, logs := setupAppTest(t, "")
	ctx := context.Background()

	unrelated := lineage.Record{URN: "urn:li:dataJob:(urn:li:dataFlow:(airflow,other,PROD),x)", Type: lineage.KindDataJob}
	require.NoError(t, a.Import(ctx, append(pipeline.Records(), unrelated)))
	testutil.AssertLogged(t, logs, "Records imported.", "count=6")

	t.Run("index", func(t *testing.T) {
		idx, err := a.StoredIndex(ctx, pipeline.IngestJob, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Ranks[pipeline.ReportJob])
		assert.NotContains(t, idx.Entities, unrelated.URN)

		idx, err = a.StoredIndex(ctx, pipeline.TransformJob, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{pipeline.TransformJob: 0, pipeline.ReportJob: 1}, idx.Ranks)
		assert.NotContains(t, idx.Entities, pipeline.IngestJob)
	})

	t.Run("predict", func(t *testing.T) {
		res, err := a.StoredPredict(ctx, pipeline.ReportJob, pipeline.Execution)
		require.NoError(t, err)
		assert.Equal(t, pipeline.Landing, res.LandingTime)
	})

	t.Run("unknown root", func(t *testing.T) {
		_, err := a.StoredIndex(ctx, "urn:li:dataJob:missing", nil)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = a.StoredPredict(ctx, "urn:li:dataJob:missing", pipeline.Execution)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("report", func(t *testing.T) {
		report, err := a.Report(ctx, timeliness.Options{
			Name: "daily",
			Date: pipeline.Execution,
			Now:  pipeline.Execution.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		segments := map[string]int{}
		for _, s := range report.Segments {
			segments[s.Name] = len(s.Jobs)
		}
		assert.Equal(t, map[string]int{"finance": 2, "ingest": 1, timeliness.UndefinedSegment: 1}, segments)

		slas := map[string]timeliness.SLA{}
		for _, s := range report.Segments {
			for _, j := range s.Jobs {
				slas[j.URN] = j.SLA
			}
		}
		assert.Equal(t, 7200.0, slas[pipeline.ReportJob].ErrorFinishedBy)
		assert.False(t, slas[pipeline.TransformJob].Defined())
	})
}

func TestImport_RejectsEmptyURN(t *testing.T) {
	a, _ := setupAppTest(t, "")
	err := a.Import(context.Background(), []lineage.Record{{Type: lineage.KindDataset}})
	assert.ErrorContains(t, err, "failed to import records")
}

func TestSplitRoot(t *testing.T) {
	records := pipeline.Records()

	root, results := SplitRoot(pipeline.ReportJob, records)
	assert.Equal(t, records[0], root)
	assert.Len(t, results, 4)

	stripped := pipeline.Records()
	for i := range stripped {
		stripped[i].Degree = 0
	}
	stripped = append(stripped, lineage.Record{URN: "urn:li:dataJob:unrelated"})
	root, results = SplitRoot(pipeline.ReportJob, stripped)
	assert.Equal(t, pipeline.ReportJob, root.URN)
	require.Len(t, results, 4)
	assert.Equal(t, 4, results[3].Degree)

	root, results = SplitRoot("urn:li:dataJob:absent", records)
	assert.Equal(t, "urn:li:dataJob:absent", root.URN)
	assert.Len(t, results, 5)
}

func TestPredictMany(t *testing.T) {
	a, logs := setupAppTest(t, "prediction {\n  workers = 2\n}\n")
	ctx := context.Background()
	require.NoError(t, a.Import(ctx, pipeline.Records()))

	roots := []string{pipeline.ReportJob, "urn:li:dataJob:missing", pipeline.TransformJob}
	views, err := a.PredictMany(ctx, roots, pipeline.Execution)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, pipeline.ReportJob, views[0].Root)
	assert.Equal(t, pipeline.Landing.Format(time.RFC3339), views[0].LandingTime)
	assert.False(t, views[1].Estimable)
	// Transform is running: it lands at its start plus its budget.
	assert.Equal(t, "2024-05-01T01:30:00Z", views[2].LandingTime)
	testutil.AssertLogged(t, logs, "Root not found in record store.", "root=urn:li:dataJob:missing")
}

func TestPredictMany_Cancelled(t *testing.T) {
	a, _ := setupAppTest(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.PredictMany(ctx, []string{pipeline.ReportJob}, pipeline.Execution)
	assert.ErrorIs(t, err, context.Canceled)
}
