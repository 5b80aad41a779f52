// internal/urn/parser.go
package urn

import (
	"fmt"
	"regexp"
	"strings"
)

// entityTypeRegex matches the entity type segment, e.g. `dataset` or `dataJob`.
var entityTypeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// Parse creates a new URN by parsing its canonical string representation.
func Parse(raw string) (*URN, error) {
	if raw == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}
	if !strings.HasPrefix(raw, Prefix) {
		return nil, fmt.Errorf("identifier %q does not start with %q", raw, Prefix)
	}

	rest := raw[len(Prefix):]
	entityType, key, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("identifier %q has no key", raw)
	}
	if !entityTypeRegex.MatchString(entityType) {
		return nil, fmt.Errorf("invalid entity type: %q", entityType)
	}
	if key == "" {
		return nil, fmt.Errorf("identifier %q has an empty key", raw)
	}
	if err := checkBalanced(key); err != nil {
		return nil, fmt.Errorf("invalid key in %q: %w", raw, err)
	}

	return &URN{EntityType: entityType, Key: key}, nil
}

// checkBalanced verifies that tuple parentheses in a key are balanced.
func checkBalanced(key string) error {
	depth := 0
	for i, r := range key {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unexpected ')' at offset %d", i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unclosed '('")
	}
	return nil
}
