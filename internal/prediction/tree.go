package prediction

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

// RootRelation is the relationship type used to attach the root to the
// results one hop away from it.
const RootRelation = "Consumes"

// DefaultBudgetProperty is the custom property consulted for the duration
// budget when a record has no RuntimeSLO of its own.
const DefaultBudgetProperty = "runtimeSLO"

// Node is one entity of the dependency tree. Nodes are values; the tree never
// changes once built.
type Node struct {
	ID   string
	Kind string
	// Known is false for upstreams that were referenced but not returned by
	// the query.
	Known bool
	// Upstreams are the direct dependencies in relationship order. Edges that
	// would close a cycle are left out and reported in Tree.Cycles.
	Upstreams []string
	// Budget is the declared duration budget in seconds.
	Budget    float64
	HasBudget bool
	// Start and End come from the run matching the execution instant.
	Start  *time.Time
	End    *time.Time
	Degree int
}

// Started reports whether the node's run has a start time.
func (n Node) Started() bool { return n.Start != nil }

// Finished reports whether the node's run has an end time.
func (n Node) Finished() bool { return n.End != nil }

// BudgetDuration returns the budget as a duration.
func (n Node) BudgetDuration() time.Duration {
	return time.Duration(n.Budget * float64(time.Second))
}

// Edge is a directed dependency from a node to one of its upstreams.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Tree is the dependency tree of one prediction.
type Tree struct {
	Root  string
	At    time.Time
	Nodes map[string]Node
	// Cycles are the upstream edges that pointed back at a node still being
	// expanded, in discovery order.
	Cycles []Edge
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

// Options tunes tree construction.
type Options struct {
	// BudgetProperty is the custom property holding the budget when a record
	// has no RuntimeSLO. Defaults to DefaultBudgetProperty.
	BudgetProperty string
}

// BuildTree materialises the dependency tree of root for the execution
// instant at. The root is normally absent from results; it is attached to
// every result of degree 1 through a RootRelation edge, replacing whatever
// upstreams root carries. A node whose run has finished is not expanded
// further. Every entity becomes exactly one node regardless of how many
// downstreams reach it.
func BuildTree(root lineage.Record, results []lineage.Record, at time.Time, opts Options) *Tree {
	if opts.BudgetProperty == "" {
		opts.BudgetProperty = DefaultBudgetProperty
	}
	if root.Type == "" {
		root.Type = lineage.KindDataJob
	}

	var rels []lineage.Relationship
	for _, r := range results {
		if r.Degree == 1 && r.URN != root.URN {
			rels = append(rels, lineage.Relationship{
				Type:   RootRelation,
				Entity: lineage.EntityRef{URN: r.URN, Type: r.Type},
			})
		}
	}
	root.Upstreams = rels
	root.Degree = 0

	records := make(map[string]*lineage.Record, len(results)+1)
	for i := range results {
		records[results[i].URN] = &results[i]
	}
	records[root.URN] = &root

	tree := &Tree{Root: root.URN, At: at, Nodes: make(map[string]Node)}

	const (
		onPath = iota + 1
		done
	)
	state := make(map[string]int)

	type frame struct {
		id         string
		candidates []string
		next       int
		upstreams  []string
	}

	open := func(id string) *frame {
		state[id] = onPath
		node := newNode(id, records[id], at, opts.BudgetProperty)
		tree.Nodes[id] = node
		f := &frame{id: id}
		if rec := records[id]; rec != nil && !node.Finished() {
			f.candidates = upstreamIDs(rec)
		}
		return f
	}

	stack := []*frame{open(root.URN)}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next == len(f.candidates) {
			node := tree.Nodes[f.id]
			node.Upstreams = f.upstreams
			tree.Nodes[f.id] = node
			state[f.id] = done
			stack = stack[:len(stack)-1]
			continue
		}

		up := f.candidates[f.next]
		f.next++
		switch state[up] {
		case onPath:
			tree.Cycles = append(tree.Cycles, Edge{From: f.id, To: up})
		case done:
			f.upstreams = append(f.upstreams, up)
		default:
			f.upstreams = append(f.upstreams, up)
			stack = append(stack, open(up))
		}
	}
	return tree
}

func newNode(id string, rec *lineage.Record, at time.Time, budgetProperty string) Node {
	node := Node{ID: id}
	if rec == nil {
		return node
	}
	node.Known = true
	node.Kind = rec.Kind()
	node.Degree = rec.Degree
	node.Budget, node.HasBudget = budgetOf(rec, budgetProperty)

	if run, ok := lineage.RunForExecution(rec.Runs, at); ok {
		if start, ok := run.StartDate(); ok {
			node.Start = &start
			if end, ok := run.EndDate(); ok {
				node.End = &end
			}
		}
	}
	return node
}

// maxBudget is the largest budget in seconds a time.Duration can hold.
const maxBudget = float64(math.MaxInt64 / int64(time.Second))

// budgetOf prefers the RuntimeSLO field and falls back to the named custom
// property. Negative, non-finite and out of range budgets are treated as
// unknown.
func budgetOf(rec *lineage.Record, property string) (float64, bool) {
	valid := func(v float64) bool {
		return !math.IsNaN(v) && v >= 0 && v <= maxBudget
	}
	if rec.RuntimeSLO != nil && valid(*rec.RuntimeSLO) {
		return *rec.RuntimeSLO, true
	}
	raw, ok := rec.Property(property)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !valid(v) {
		return 0, false
	}
	return v, true
}

func upstreamIDs(rec *lineage.Record) []string {
	seen := make(map[string]struct{}, len(rec.Upstreams))
	ids := make([]string, 0, len(rec.Upstreams))
	for _, rel := range rec.Upstreams {
		id := rel.Entity.URN
		if id == "" || id == rec.URN {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
