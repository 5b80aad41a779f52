package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
)

// Estimate builds the tree of root from results and predicts its landing time
// for the execution instant at. It never fails: anything that goes wrong,
// including a panic, yields an unestimable Result.
func Estimate(ctx context.Context, root lineage.Record, results []lineage.Record, at time.Time, opts Options) (res Result) {
	logger := ctxlog.FromContext(ctx).With("root", root.URN, "execution_date", at.UTC().Format(time.RFC3339))

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Landing time prediction failed.", "error", fmt.Sprint(r))
			res = Result{}
		}
	}()

	tree := BuildTree(root, results, at, opts)
	logger.Debug("Estimate: Tree built.", "node_count", len(tree.Nodes))
	if len(tree.Cycles) > 0 {
		logger.Warn("Upstream lineage contains cycles; cyclic edges ignored.", "cycles", len(tree.Cycles))
	}

	res = PredictLandingTime(tree, at)
	logger.Debug("Estimate: Prediction finished.", "estimable", res.Estimable, "landing_time", res.String())
	return res
}
