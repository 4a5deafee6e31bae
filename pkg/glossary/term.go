// Package glossary provides the canonical term model and the normalizer
// that turns raw extracted records into validated glossary terms.
//
// Terms are identified by their phrase, compared case-insensitively after
// trimming. The normalizer is parameterized by a Profile value describing
// the cleaning and validation rules in effect, so strict and permissive
// pipelines share one implementation.
package glossary

import (
	"fmt"
	"strings"
)

// Term represents a single glossary entry. Terms are immutable once
// constructed by the normalizer.
type Term struct {
	Phrase     string         `json:"phrase" yaml:"phrase"`
	Definition string         `json:"definition" yaml:"definition"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Key returns the identity key for the term. Two terms are the same term
// iff their keys are equal.
func (t Term) Key() string {
	return strings.ToLower(strings.TrimSpace(t.Phrase))
}

// Map returns the dict projection of the term written into configuration
// documents. Metadata is included only when present.
func (t Term) Map() map[string]any {
	m := map[string]any{
		"phrase":     t.Phrase,
		"definition": t.Definition,
	}
	if len(t.Metadata) > 0 {
		m["metadata"] = t.Metadata
	}
	return m
}

// String implements fmt.Stringer.
func (t Term) String() string {
	def := t.Definition
	if len(def) > 50 {
		def = def[:50] + "..."
	}
	return fmt.Sprintf("%s: %s", t.Phrase, def)
}

// Terms is an ordered collection of glossary terms.
type Terms []Term

// Dedupe removes duplicate terms by case-insensitive phrase. The last
// occurrence wins on conflict; the insertion order of the first occurrence
// is otherwise preserved.
func (ts Terms) Dedupe() Terms {
	index := make(map[string]int, len(ts))
	out := make(Terms, 0, len(ts))

	for _, term := range ts {
		key := term.Key()
		if i, seen := index[key]; seen {
			out[i] = term
			continue
		}
		index[key] = len(out)
		out = append(out, term)
	}

	return out
}

// Keys returns the set of identity keys present in the collection.
func (ts Terms) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(ts))
	for _, term := range ts {
		keys[term.Key()] = struct{}{}
	}
	return keys
}

// Contains reports whether a term with the same identity key exists.
func (ts Terms) Contains(phrase string) bool {
	key := strings.ToLower(strings.TrimSpace(phrase))
	for _, term := range ts {
		if term.Key() == key {
			return true
		}
	}
	return false
}
