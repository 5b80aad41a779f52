// internal/urn/types.go
package urn

// Prefix is the namespace every identifier starts with.
const Prefix = "urn:li:"

// URN is the structured representation of an entity identifier.
type URN struct {
	// EntityType is the segment after the prefix, e.g. "dataset" or "dataJob".
	EntityType string
	// Key is everything after the entity type, including any tuple parentheses.
	Key string
}

// IsTuple reports whether the key is a parenthesised tuple.
func (u *URN) IsTuple() bool {
	return len(u.Key) >= 2 && u.Key[0] == '(' && u.Key[len(u.Key)-1] == ')'
}
