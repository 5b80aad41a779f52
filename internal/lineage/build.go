package lineage

// BuildGraph converts records into forward edges using the default reversed
// relation.
func BuildGraph(records []Record) Graph {
	return BuildGraphWith(records, DefaultReversedRelation)
}

// BuildGraphWith converts records into forward edges. A relationship of type
// reversed produces the edge target -> record; every other relationship
// produces record -> target. Targets without a record of their own are still
// recorded. Relationships without a target and self references are skipped.
func BuildGraphWith(records []Record, reversed string) Graph {
	if records == nil {
		panic("lineage: BuildGraph called with nil records")
	}

	g := New()
	for _, rec := range records {
		from := rec.URN
		for _, rel := range rec.Relationships {
			to := rel.Entity.URN
			if to == "" || to == from {
				continue
			}
			if rel.Type == reversed {
				_ = g.AddEdge(to, from)
			} else {
				_ = g.AddEdge(from, to)
			}
		}
	}
	return g
}
