package lineage

import (
	"context"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
)

// Options controls how an Index is derived from records.
type Options struct {
	// ReversedRelation is the relationship type whose direction is inverted.
	ReversedRelation string
	// IsDataset identifies dataset-like nodes for SLA propagation.
	IsDataset Predicate
	// Collapse enables hiding collapsible nodes from Edges and Ranks.
	Collapse bool
	// IsCollapsible selects the nodes to hide. Defaults to IsDataset.
	IsCollapsible Predicate
}

// DefaultOptions returns the settings used by the lineage views: datasets are
// dataset-like and collapsed.
func DefaultOptions() Options {
	return Options{
		ReversedRelation: DefaultReversedRelation,
		IsDataset:        KindIn(KindDataset),
		Collapse:         true,
	}
}

// Index is everything the timeliness views derive from one lineage query.
type Index struct {
	Root string
	// Order is the URN order of the records as returned by the query.
	Order    []string
	Entities map[string]*Record
	// Edges are the final forward edges, collapsed when requested.
	Edges Graph
	// Uncollapsed are the forward edges as built from the records.
	Uncollapsed   Graph
	Ranks         map[string]int
	SlaProperties SlaProperties
	Collapsed     bool
	// Cycle is non-nil when the uncollapsed graph contains a cycle.
	Cycle error
}

// NewIndex builds the graph from records, indexes SLA properties on the
// uncollapsed edges, optionally collapses and finally ranks from root.
func NewIndex(ctx context.Context, records []Record, root string, opts Options) *Index {
	logger := ctxlog.FromContext(ctx).With("root", root)
	logger.Debug("NewIndex: Starting index construction.", "record_count", len(records))

	if opts.ReversedRelation == "" {
		opts.ReversedRelation = DefaultReversedRelation
	}
	if opts.IsDataset == nil {
		opts.IsDataset = KindIn(KindDataset)
	}
	if opts.IsCollapsible == nil {
		opts.IsCollapsible = opts.IsDataset
	}

	entities := EntitiesByURN(records)
	order := make([]string, 0, len(records))
	for _, rec := range records {
		order = append(order, rec.URN)
	}

	edges := BuildGraphWith(records, opts.ReversedRelation)
	logger.Debug("NewIndex: Graph built.", "node_count", len(edges.Nodes()), "edge_count", edges.EdgeCount())

	idx := &Index{
		Root:          root,
		Order:         order,
		Entities:      entities,
		Uncollapsed:   edges,
		Edges:         edges,
		SlaProperties: IndexSlaProperties(edges, entities, opts.IsDataset),
	}
	logger.Debug("NewIndex: SLA properties indexed.", "job_count", len(idx.SlaProperties))

	if err := DetectCycles(edges); err != nil {
		idx.Cycle = err
		logger.Warn("Lineage graph contains a cycle.", "error", err)
	}

	if opts.Collapse {
		res := CollapseDetailed(edges, entities, opts.IsCollapsible, root)
		if res.Capped {
			logger.Error("Collapse stopped at its pass limit before converging.", "passes", res.Passes)
		}
		idx.Edges = res.Graph
		idx.Collapsed = true
		logger.Debug("NewIndex: Graph collapsed.", "removed", len(res.Removed), "passes", res.Passes)
	}

	idx.Ranks = Rank(idx.Edges, root)
	logger.Debug("NewIndex: Ranks computed.", "ranked", len(idx.Ranks))
	return idx
}

// Layers groups the ranked nodes by rank in query order.
func (idx *Index) Layers() [][]string {
	return Layers(idx.Ranks, idx.Order)
}
