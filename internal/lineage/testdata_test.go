package lineage

// rel is a test helper that builds a relationship to target.
func rel(typ, target string) Relationship {
	return Relationship{Type: typ, Entity: EntityRef{URN: target}}
}

func job(id string, rels ...Relationship) Record {
	return Record{URN: id, Type: KindDataJob, Relationships: rels}
}

func dataset(id string, props []Property, rels ...Relationship) Record {
	return Record{URN: id, Type: KindDataset, CustomProperties: props, Relationships: rels}
}

func graphOf(edges ...[2]string) Graph {
	g := New()
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			panic(err)
		}
	}
	return g
}
