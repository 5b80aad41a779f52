package lineage

import "sort"

// Rank computes the breadth-first hop distance of every node reachable from
// root. The root has rank 0; unreachable nodes are absent. A root that is not
// part of the graph yields {root: 0}.
func Rank(g Graph, root string) map[string]int {
	ranks := map[string]int{root: 0}
	queue := []string{root}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		rank := ranks[next]
		for _, other := range g.Neighbors(next) {
			if _, ok := ranks[other]; ok {
				continue
			}
			ranks[other] = rank + 1
			queue = append(queue, other)
		}
	}
	return ranks
}

// Layers groups ranked nodes by rank. Within a layer nodes keep the position
// they have in order (typically the record order of the query result); ranked
// nodes missing from order follow, sorted.
func Layers(ranks map[string]int, order []string) [][]string {
	maxRank := -1
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]string, maxRank+1)

	placed := make(map[string]struct{}, len(ranks))
	for _, id := range order {
		r, ok := ranks[id]
		if !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		layers[r] = append(layers[r], id)
	}

	var rest []string
	for id := range ranks {
		if _, ok := placed[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		layers[ranks[id]] = append(layers[ranks[id]], id)
	}
	return layers
}
