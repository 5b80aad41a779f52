package prediction

import "github.com/specialistvlad/timeliness/internal/lineage"

// Upstream selects the upstream lineage of root from a flat set of stored
// records, the way the lineage query service would return it: every record
// reachable from root through upstream links, annotated with its hop
// distance. The root itself is returned separately and is false when records
// do not contain it. Results keep the order of records.
func Upstream(root string, records []lineage.Record) (lineage.Record, []lineage.Record, bool) {
	byURN := make(map[string]int, len(records))
	for i, rec := range records {
		if _, dup := byURN[rec.URN]; !dup {
			byURN[rec.URN] = i
		}
	}

	rootIdx, ok := byURN[root]
	if !ok {
		return lineage.Record{URN: root, Type: lineage.KindDataJob}, nil, false
	}

	degree := map[string]int{root: 0}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		i, known := byURN[id]
		if !known {
			continue
		}
		for _, rel := range records[i].Upstreams {
			next := rel.Entity.URN
			if next == "" {
				continue
			}
			if _, seen := degree[next]; seen {
				continue
			}
			degree[next] = degree[id] + 1
			queue = append(queue, next)
		}
	}

	var results []lineage.Record
	for i, rec := range records {
		d, reached := degree[rec.URN]
		if !reached || rec.URN == root || byURN[rec.URN] != i {
			continue
		}
		rec.Degree = d
		results = append(results, rec)
	}
	return records[rootIdx], results, true
}
