package lineage

import (
	"math"
	"strconv"
	"strings"
)

// Well-known SLA custom property keys authored on datasets.
const (
	StartedBySLAKey  = "startedBySla"
	FinishedBySLAKey = "finishedBySla"
)

// SlaProperties maps a job URN to the custom properties contributed by every
// dataset feeding it, keyed by property name. Values keep one entry per
// contributing dataset.
type SlaProperties map[string]map[string][]string

// IndexSlaProperties copies the custom properties of dataset-like nodes onto
// the non-dataset nodes they feed directly. It is a single pass over the edges
// of g, which should be the uncollapsed graph.
func IndexSlaProperties(g Graph, entities map[string]*Record, isDataset Predicate) SlaProperties {
	out := make(SlaProperties)
	for _, from := range g.Sources() {
		rec := entities[from]
		if rec == nil || !isDataset(rec) || len(rec.CustomProperties) == 0 {
			continue
		}
		for _, to := range g.Neighbors(from) {
			if isDataset(entities[to]) {
				continue
			}
			bucket, ok := out[to]
			if !ok {
				bucket = make(map[string][]string)
				out[to] = bucket
			}
			for _, p := range rec.CustomProperties {
				bucket[p.Key] = append(bucket[p.Key], p.Value)
			}
		}
	}
	return out
}

// Values returns the collected values of key for id.
func (s SlaProperties) Values(id, key string) []string {
	return s[id][key]
}

// EffectiveSLA returns the tightest (smallest) numeric value collected for key
// on id. Values that do not parse as numbers are ignored; ok is false when no
// value parses.
func (s SlaProperties) EffectiveSLA(id, key string) (seconds float64, ok bool) {
	return MinNumeric(s.Values(id, key))
}

// MinNumeric returns the smallest value of vals that parses as a float.
func MinNumeric(vals []string) (float64, bool) {
	best, found := math.Inf(1), false
	for _, v := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			continue
		}
		if f < best {
			best = f
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return best, true
}
