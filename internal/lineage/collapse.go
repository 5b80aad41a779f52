package lineage

// CollapseResult reports how a collapse pass went.
type CollapseResult struct {
	Graph Graph
	// Removed lists the collapsed node ids, sorted.
	Removed []string
	// Passes is the number of closure passes over the graph.
	Passes int
	// Capped is true when the pass limit stopped the closure before it
	// reached a fixed point. It indicates a bug, never a data condition.
	Capped bool
}

// Collapse removes every collapsible node other than root from a copy of g
// while preserving reachability through them: an edge into a collapsed node is
// replaced by edges to whatever that node led to. A node is collapsible if
// isCollapsible matches its record or if it has no record at all, in which
// case it collapses to nothing downstream. The input graph is not modified.
func Collapse(g Graph, entities map[string]*Record, isCollapsible Predicate, root string) Graph {
	return CollapseDetailed(g, entities, isCollapsible, root).Graph
}

// CollapseDetailed is Collapse with bookkeeping for logging and tests.
func CollapseDetailed(g Graph, entities map[string]*Record, isCollapsible Predicate, root string) CollapseResult {
	out := g.Clone()

	redirect := make(map[string]map[string]struct{})
	for _, id := range out.Nodes() {
		if id == root {
			continue
		}
		rec, known := entities[id]
		switch {
		case !known || rec == nil:
			redirect[id] = map[string]struct{}{}
		case isCollapsible != nil && isCollapsible(rec):
			redirect[id] = out[id]
		}
	}
	for id := range redirect {
		delete(out, id)
	}

	// expanded[src] holds the collapsed nodes already substituted into src's
	// neighbour set. A collapsed node is substituted at most once per source,
	// which bounds the closure even when collapsed nodes form a cycle.
	expanded := make(map[string]map[string]struct{})
	limit := len(redirect) + 2

	res := CollapseResult{Graph: out, Removed: sortedKeys(redirect)}
	for {
		if res.Passes >= limit {
			res.Capped = true
			break
		}
		res.Passes++

		changed := false
		for _, src := range out.Sources() {
			targets := out[src]
			for _, to := range sortedKeys(targets) {
				replacements, ok := redirect[to]
				if !ok {
					continue
				}
				changed = true
				delete(targets, to)

				done := expanded[src]
				if done == nil {
					done = make(map[string]struct{})
					expanded[src] = done
				}
				if _, seen := done[to]; seen {
					continue
				}
				done[to] = struct{}{}

				for r := range replacements {
					if r == src {
						continue
					}
					if _, seen := done[r]; seen {
						continue
					}
					targets[r] = struct{}{}
				}
			}
			if len(targets) == 0 {
				delete(out, src)
			}
		}
		if !changed {
			break
		}
	}
	return res
}
