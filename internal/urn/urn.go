// internal/urn/urn.go
package urn

import (
	"strings"
	"unicode"
)

// String serializes the URN into its canonical representation.
func (u *URN) String() string {
	if u == nil {
		return ""
	}
	return Prefix + u.EntityType + ":" + u.Key
}

// Equal checks for equality between two URN pointers.
func (u *URN) Equal(other *URN) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.EntityType == other.EntityType && u.Key == other.Key
}

// Parts splits a tuple key into its top-level components. Nested tuples are
// kept intact. A non-tuple key is returned as a single part.
func (u *URN) Parts() []string {
	if !u.IsTuple() {
		return []string{u.Key}
	}

	inner := u.Key[1 : len(u.Key)-1]
	var parts []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, inner[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, inner[start:])
}

// Kind converts the entity type into the upper snake case kind used by the
// lineage query service, e.g. "dataJob" becomes "DATA_JOB".
func (u *URN) Kind() string {
	return KindOf(u.EntityType)
}

// KindOf converts a camel case entity type into an upper snake case kind.
func KindOf(entityType string) string {
	var sb strings.Builder
	for i, r := range entityType {
		if unicode.IsUpper(r) && i > 0 {
			sb.WriteRune('_')
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

// KindFromID parses raw and returns its kind, or "" if raw is not a valid URN.
func KindFromID(raw string) string {
	u, err := Parse(raw)
	if err != nil {
		return ""
	}
	return u.Kind()
}

// ShortName returns the last top-level part of the key of raw, which for a
// data job is its task id. Invalid URNs are returned unchanged.
func ShortName(raw string) string {
	u, err := Parse(raw)
	if err != nil {
		return raw
	}
	parts := u.Parts()
	return strings.TrimSpace(parts[len(parts)-1])
}
