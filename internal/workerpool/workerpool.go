// Package workerpool runs independent jobs over a bounded number of
// concurrent workers.
package workerpool

import (
	"context"
	"sync"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
)

// DefaultWorkers is used when a non-positive worker count is given.
const DefaultWorkers = 4

type job[In any] struct {
	index int
	item  In
}

// Map applies fn to every item using up to workers goroutines and returns
// the outputs in item order. Once ctx is cancelled the remaining items are
// skipped and ctx's error is returned with the partial outputs.
func Map[In, Out any](ctx context.Context, items []In, workers int, fn func(context.Context, In) Out) ([]Out, error) {
	logger := ctxlog.FromContext(ctx)
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	out := make([]Out, len(items))
	ready := make(chan job[In])
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger.Debug("Worker started.", "workerID", workerID)
			for j := range ready {
				if ctx.Err() != nil {
					continue
				}
				out[j.index] = fn(ctx, j.item)
			}
			logger.Debug("Worker finished.", "workerID", workerID)
		}(w)
	}

dispatch:
	for i, item := range items {
		select {
		case ready <- job[In]{index: i, item: item}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(ready)
	wg.Wait()

	return out, ctx.Err()
}
