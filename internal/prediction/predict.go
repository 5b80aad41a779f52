package prediction

import (
	"errors"
	"time"
)

// Unestimable is the literal shown when no landing time can be derived.
const Unestimable = "Unable to estimate landing time"

// ErrUnestimable is returned by Result.Err for an unestimable result.
var ErrUnestimable = errors.New("unable to estimate landing time")

// Result is the outcome of a prediction.
type Result struct {
	LandingTime time.Time `json:"landingTime,omitempty"`
	Estimable   bool      `json:"estimable"`
	// Cycles lists the dependency edges that were ignored because they close
	// a cycle. A non-empty list means the lineage data is inconsistent.
	Cycles []Edge `json:"cycles,omitempty"`
}

// String renders the landing time in RFC 3339, or the Unestimable literal.
func (r Result) String() string {
	if !r.Estimable {
		return Unestimable
	}
	return r.LandingTime.UTC().Format(time.RFC3339)
}

// Err returns ErrUnestimable when the result carries no landing time.
func (r Result) Err() error {
	if !r.Estimable {
		return ErrUnestimable
	}
	return nil
}

// PredictLandingTime predicts when the tree's root lands for the execution
// instant at.
//
// A root that has already started lands at its start plus its own budget.
// Otherwise each node is evaluated from its upstreams:
//   - without upstreams it lands at its start, or at, plus its budget;
//   - when every upstream has started it lands at the latest upstream start
//     plus that upstream's budget, plus its own budget;
//   - otherwise the unvisited upstreams are evaluated first and the node lands
//     at the latest upstream landing time plus its own budget.
//
// A node needs a known budget to anchor a landing time on a start or on at;
// an unknown budget adds nothing on top of upstream landing times. A node
// whose upstreams yield no landing time has none either.
func PredictLandingTime(tree *Tree, at time.Time) Result {
	res := Result{Cycles: tree.Cycles}

	root := tree.Nodes[tree.Root]
	if root.Started() {
		if root.HasBudget {
			res.LandingTime, res.Estimable = root.Start.Add(root.BudgetDuration()), true
		}
		return res
	}

	results := evaluate(tree, at)
	if t, ok := results[tree.Root]; ok {
		res.LandingTime, res.Estimable = t, true
	}
	return res
}

// evaluate runs the post-order walk from the root and returns the landing
// time of every node that resolved.
func evaluate(tree *Tree, at time.Time) map[string]time.Time {
	visited := make(map[string]struct{})
	results := make(map[string]time.Time)

	type frame struct {
		id   string
		next int
	}

	enter := func(id string) *frame {
		visited[id] = struct{}{}
		node := tree.Nodes[id]
		switch {
		case len(node.Upstreams) == 0:
			if t, ok := anchored(node, at); ok {
				results[id] = t
			}
			return nil
		case allStarted(tree, node.Upstreams):
			if t, ok := latestStartedLanding(tree, node.Upstreams); ok {
				results[id] = t.Add(node.BudgetDuration())
			}
			return nil
		}
		return &frame{id: id}
	}

	var stack []*frame
	if f := enter(tree.Root); f != nil {
		stack = append(stack, f)
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		node := tree.Nodes[f.id]

		if f.next < len(node.Upstreams) {
			up := node.Upstreams[f.next]
			f.next++
			if _, seen := visited[up]; seen {
				continue
			}
			if child := enter(up); child != nil {
				stack = append(stack, child)
			}
			continue
		}

		stack = stack[:len(stack)-1]
		if t, ok := latestOf(results, node.Upstreams); ok {
			results[f.id] = t.Add(node.BudgetDuration())
		}
	}
	return results
}

// anchored is the landing time of a node evaluated on its own.
func anchored(node Node, at time.Time) (time.Time, bool) {
	if !node.HasBudget {
		return time.Time{}, false
	}
	base := at
	if node.Started() {
		base = *node.Start
	}
	return base.Add(node.BudgetDuration()), true
}

func allStarted(tree *Tree, ids []string) bool {
	for _, id := range ids {
		if !tree.Nodes[id].Started() {
			return false
		}
	}
	return true
}

// latestStartedLanding is the maximum of start plus budget over the started
// upstreams with a known budget. The first maximum wins.
func latestStartedLanding(tree *Tree, ids []string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, id := range ids {
		up := tree.Nodes[id]
		if !up.Started() || !up.HasBudget {
			continue
		}
		t := up.Start.Add(up.BudgetDuration())
		if !found || t.After(best) {
			best, found = t, true
		}
	}
	return best, found
}

func latestOf(results map[string]time.Time, ids []string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, id := range ids {
		t, ok := results[id]
		if !ok {
			continue
		}
		if !found || t.After(best) {
			best, found = t, true
		}
	}
	return best, found
}
