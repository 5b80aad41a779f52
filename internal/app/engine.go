package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/prediction"
	"github.com/specialistvlad/timeliness/internal/schedule"
	"github.com/specialistvlad/timeliness/internal/timeliness"
	"github.com/specialistvlad/timeliness/internal/workerpool"
)

// ErrNotFound is returned when a stored entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrNoExecutionInstant is returned when neither an execution instant nor a
// schedule to derive one from is available.
var ErrNoExecutionInstant = errors.New("an execution instant or a schedule is required")

// Index builds the lineage index of root from records. A non-nil collapse
// overrides the configured collapse setting. No records at all is a valid
// query result: the index then ranks root alone.
func (a *App) Index(ctx context.Context, root string, records []lineage.Record, collapse *bool) *lineage.Index {
	opts := a.config.LineageOptions()
	if collapse != nil {
		opts.Collapse = *collapse
	}
	if records == nil {
		records = []lineage.Record{}
	}
	return lineage.NewIndex(a.withLogger(ctx), records, root, opts)
}

// Predict estimates the landing time of root from its upstream results for
// the execution instant at.
func (a *App) Predict(ctx context.Context, root lineage.Record, results []lineage.Record, at time.Time) prediction.Result {
	return prediction.Estimate(a.withLogger(ctx), root, results, at, a.config.PredictionOptions())
}

// ExecutionInstant resolves the execution instant of a prediction. An
// explicit at wins; otherwise the latest tick of expr, or of the configured
// schedule, at or before now is used.
func (a *App) ExecutionInstant(at time.Time, expr string, now time.Time) (time.Time, error) {
	if !at.IsZero() {
		return at.UTC(), nil
	}
	if expr == "" {
		expr = a.config.Prediction.Schedule
	}
	if expr == "" {
		return time.Time{}, ErrNoExecutionInstant
	}
	if now.IsZero() {
		now = time.Now()
	}
	tick, err := schedule.ExecutionDate(expr, now.UTC())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to derive execution instant: %w", err)
	}
	return tick, nil
}

// Import stores records in the record store.
func (a *App) Import(ctx context.Context, records []lineage.Record) error {
	ctx = a.withLogger(ctx)
	if err := a.store.Put(ctx, records...); err != nil {
		return fmt.Errorf("failed to import records: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Records imported.", "count", len(records))
	return nil
}

// SplitRoot separates root from the records of a lineage query. Records
// without any degree annotation are treated like stored records: the upstream
// lineage of root is selected from them.
func SplitRoot(root string, records []lineage.Record) (lineage.Record, []lineage.Record) {
	annotated := false
	for _, rec := range records {
		if rec.Degree > 0 {
			annotated = true
			break
		}
	}
	if !annotated {
		if rec, results, ok := prediction.Upstream(root, records); ok {
			return rec, results
		}
	}

	rootRec := lineage.Record{URN: root}
	results := make([]lineage.Record, 0, len(records))
	for _, rec := range records {
		if rec.URN == root {
			rootRec = rec
			continue
		}
		results = append(results, rec)
	}
	return rootRec, results
}

// upstream selects root and its upstream lineage from the record store.
func (a *App) upstream(ctx context.Context, root string) (lineage.Record, []lineage.Record, error) {
	all, err := a.store.All(ctx)
	if err != nil {
		return lineage.Record{}, nil, fmt.Errorf("failed to read records: %w", err)
	}
	rec, results, ok := prediction.Upstream(root, all)
	if !ok {
		return lineage.Record{}, nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	return rec, results, nil
}

// downstream selects root and every stored record reachable from it in the
// lineage graph, in store order.
func (a *App) downstream(ctx context.Context, root string) ([]lineage.Record, error) {
	all, err := a.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	reach := lineage.BuildGraphWith(all, a.config.LineageOptions().ReversedRelation).Reachable(root)

	found := false
	records := make([]lineage.Record, 0, len(reach)+1)
	for _, rec := range all {
		if rec.URN == root {
			found = true
			records = append(records, rec)
			continue
		}
		if _, ok := reach[rec.URN]; ok {
			records = append(records, rec)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	return records, nil
}

// StoredIndex builds the lineage index of a stored root from its stored
// downstream lineage.
func (a *App) StoredIndex(ctx context.Context, root string, collapse *bool) (*lineage.Index, error) {
	records, err := a.downstream(ctx, root)
	if err != nil {
		return nil, err
	}
	return a.Index(ctx, root, records, collapse), nil
}

// StoredPredict estimates the landing time of a stored root from its stored
// upstream lineage.
func (a *App) StoredPredict(ctx context.Context, root string, at time.Time) (prediction.Result, error) {
	rec, results, err := a.upstream(ctx, root)
	if err != nil {
		return prediction.Result{}, err
	}
	return a.Predict(ctx, rec, results, at), nil
}

// PredictMany estimates the landing times of several stored roots for the
// same execution instant, running up to the configured number of predictions
// concurrently. Views keep the order of roots; an unknown root yields an
// unestimable view.
func (a *App) PredictMany(ctx context.Context, roots []string, at time.Time) ([]PredictionView, error) {
	ctx = a.withLogger(ctx)
	all, err := a.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	views, err := workerpool.Map(ctx, roots, a.config.Prediction.Workers, func(ctx context.Context, root string) PredictionView {
		rec, results, ok := prediction.Upstream(root, all)
		if !ok {
			ctxlog.FromContext(ctx).Warn("Root not found in record store.", "root", root)
			return NewPredictionView(root, at, prediction.Result{})
		}
		return NewPredictionView(root, at, a.Predict(ctx, rec, results, at))
	})
	if err != nil {
		return nil, fmt.Errorf("batch prediction interrupted: %w", err)
	}
	return views, nil
}

// Report builds the timeliness report over every stored job. SLA properties
// handed down by stored datasets are taken into account.
func (a *App) Report(ctx context.Context, opts timeliness.Options) (timeliness.Report, error) {
	ctx = a.withLogger(ctx)
	all, err := a.store.All(ctx)
	if err != nil {
		return timeliness.Report{}, fmt.Errorf("failed to read records: %w", err)
	}

	lopts := a.config.LineageOptions()
	edges := lineage.BuildGraphWith(all, lopts.ReversedRelation)
	opts.Inherited = lineage.IndexSlaProperties(edges, lineage.EntitiesByURN(all), lopts.IsDataset)

	var jobs []lineage.Record
	for _, rec := range all {
		if !lopts.IsDataset(&rec) {
			jobs = append(jobs, rec)
		}
	}
	return timeliness.Build(ctx, jobs, opts), nil
}

// withLogger attaches the app logger unless ctx already carries one.
func (a *App) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		return a.ctx
	}
	if ctxlog.Has(ctx) {
		return ctx
	}
	return ctxlog.WithLogger(ctx, a.logger)
}
