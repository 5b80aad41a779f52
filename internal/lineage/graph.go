package lineage

import (
	"fmt"
	"sort"
)

// Graph holds the forward edges of a lineage graph. An edge from A to B means
// B depends on, and runs after, A. A neighbour set never contains its own key.
type Graph map[string]map[string]struct{}

// New creates and returns an initialized, empty Graph.
func New() Graph {
	return make(Graph)
}

// AddEdge creates a directed edge from `from` to `to`. Adding an existing
// edge is a no-op. An error is returned for a self-referential edge.
func (g Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}
	targets, ok := g[from]
	if !ok {
		targets = make(map[string]struct{})
		g[from] = targets
	}
	targets[to] = struct{}{}
	return nil
}

// HasEdge reports whether the edge from -> to exists.
func (g Graph) HasEdge(from, to string) bool {
	_, ok := g[from][to]
	return ok
}

// Neighbors returns the sorted direct successors of id.
func (g Graph) Neighbors(id string) []string {
	return sortedKeys(g[id])
}

// Sources returns the sorted ids that have outgoing edges.
func (g Graph) Sources() []string {
	return sortedKeys(g)
}

// Nodes returns every id that appears in the graph as a source or a target,
// sorted.
func (g Graph) Nodes() []string {
	seen := make(map[string]struct{}, len(g))
	for from, targets := range g {
		seen[from] = struct{}{}
		for to := range targets {
			seen[to] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, targets := range g {
		n += len(targets)
	}
	return n
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for from, targets := range g {
		copied := make(map[string]struct{}, len(targets))
		for to := range targets {
			copied[to] = struct{}{}
		}
		out[from] = copied
	}
	return out
}

// Reachable returns every id reachable from start by following forward
// edges, excluding start itself unless it lies on a cycle.
func (g Graph) Reachable(start string) map[string]struct{} {
	seen := make(map[string]struct{})
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for to := range g[n] {
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			stack = append(stack, to)
		}
	}
	return seen
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
