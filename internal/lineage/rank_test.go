package lineage

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	t.Run("shortest hop distance", func(t *testing.T) {
		g := graphOf(
			[2]string{"r", "a"},
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"r", "c"},
			[2]string{"x", "r"},
		)
		assert.Equal(t, map[string]int{"r": 0, "a": 1, "c": 1, "b": 2}, Rank(g, "r"))
	})

	t.Run("cycles terminate", func(t *testing.T) {
		g := graphOf([2]string{"r", "a"}, [2]string{"a", "b"}, [2]string{"b", "r"})
		assert.Equal(t, map[string]int{"r": 0, "a": 1, "b": 2}, Rank(g, "r"))
	})

	t.Run("missing root degenerates to itself", func(t *testing.T) {
		g := graphOf([2]string{"a", "b"})
		assert.Equal(t, map[string]int{"missing": 0}, Rank(g, "missing"))
	})
}

// bfsDistance is a reference implementation used to cross-check Rank.
func bfsDistance(g Graph, from, to string) (int, bool) {
	if from == to {
		return 0, true
	}
	dist := map[string]int{from: 0}
	frontier := []string{from}
	for len(frontier) > 0 {
		var next []string
		for _, n := range frontier {
			for m := range g[n] {
				if _, ok := dist[m]; ok {
					continue
				}
				dist[m] = dist[n] + 1
				if m == to {
					return dist[m], true
				}
				next = append(next, m)
			}
		}
		frontier = next
	}
	return 0, false
}

func TestRank_MatchesShortestPaths(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		g := New()
		n := 12
		for e := 0; e < 30; e++ {
			from := fmt.Sprintf("n%d", rng.Intn(n))
			to := fmt.Sprintf("n%d", rng.Intn(n))
			_ = g.AddEdge(from, to)
		}

		ranks := Rank(g, "n0")
		for j := 0; j < n; j++ {
			id := fmt.Sprintf("n%d", j)
			want, reachable := bfsDistance(g, "n0", id)
			got, ranked := ranks[id]
			assert.Equal(t, reachable, ranked, "graph %d node %s", i, id)
			if reachable {
				assert.Equal(t, want, got, "graph %d node %s", i, id)
			}
		}
	}
}

func TestLayers(t *testing.T) {
	ranks := map[string]int{"r": 0, "b": 1, "a": 1, "z": 2, "y": 2}
	layers := Layers(ranks, []string{"r", "b", "a", "unranked", "y"})
	assert.Equal(t, [][]string{{"r"}, {"b", "a"}, {"y", "z"}}, layers)
	assert.Empty(t, Layers(map[string]int{}, nil))
}
