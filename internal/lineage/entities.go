package lineage

import (
	"strings"

	"github.com/specialistvlad/timeliness/internal/urn"
)

// Predicate classifies an entity. A nil record means the node is only known
// as the target of some relationship and has no attributes of its own.
type Predicate func(r *Record) bool

// Kind returns the record's kind, falling back to the kind encoded in its
// URN when the query did not report one.
func (r *Record) Kind() string {
	if r.Type != "" {
		return r.Type
	}
	return urn.KindFromID(r.URN)
}

// KindIn returns a predicate that matches records whose kind is one of kinds.
// Matching is case-insensitive. Unknown nodes never match.
func KindIn(kinds ...string) Predicate {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[strings.ToUpper(k)] = struct{}{}
	}
	return func(r *Record) bool {
		if r == nil {
			return false
		}
		_, ok := set[strings.ToUpper(r.Kind())]
		return ok
	}
}

// EntitiesByURN indexes records by URN. When a URN is reported more than
// once, the last record wins, as in the query client.
func EntitiesByURN(records []Record) map[string]*Record {
	entities := make(map[string]*Record, len(records))
	for i := range records {
		entities[records[i].URN] = &records[i]
	}
	return entities
}
