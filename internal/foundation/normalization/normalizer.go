// Package normalization maps free-form operator input (environment variables,
// flags) onto a fixed set of values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer looks up trimmed, case-insensitive keys and falls back to a
// default for anything it does not know.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	options  string
}

// NewNormalizer creates a normalizer over values; unknown input maps to fallback.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback}
	keys := make([]string, 0, len(values))
	for k, v := range values {
		n.values[key(k)] = v
		keys = append(keys, key(k))
	}
	slices.Sort(keys)
	n.options = strings.Join(keys, ", ")
	return n
}

// Lookup returns the value for raw. Unrecognized input yields the fallback
// together with an error; empty input yields the fallback alone.
func (n *Normalizer[T]) Lookup(raw string) (T, error) {
	k := key(raw)
	if k == "" {
		return n.fallback, nil
	}
	if v, ok := n.values[k]; ok {
		return v, nil
	}
	return n.fallback, fmt.Errorf("unrecognized value %q (expected one of: %s)", raw, n.options)
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
