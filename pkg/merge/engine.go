// Package merge reconciles a validated term set against the glossary
// anchor inside a configuration document. The engine never mutates the
// caller's document; it works on a deep copy and returns the rewritten
// copy alongside change statistics.
package merge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/logging"
)

// The glossary anchor entity. Documents that do not carry one yet get a
// new entity under this well-known id.
const (
	AnchorID     = "676c6f73-7361-7279-3132-333435363738"
	AnchorName   = "Glossary"
	AnchorMarker = "glossary"
)

// Engine merges glossary terms into configuration documents.
type Engine struct {
	opts Options
}

// New creates a merge engine.
func New(opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Engine{opts: options}
}

// Merge reconciles terms against the document's glossary under the given
// strategy and returns the rewritten document and stats. The input
// document is never mutated.
func (e *Engine) Merge(ctx context.Context, doc document.Document, terms glossary.Terms, strategy Strategy) (document.Document, *Stats, error) {
	if !strategy.Valid() {
		return nil, nil, errors.NewMergeFailedError(string(strategy), fmt.Sprintf("invalid merge strategy: %s", strategy), nil)
	}

	log := logging.FromContext(ctx)
	log.Info().Str("strategy", string(strategy)).Int("terms", len(terms)).Msg("Starting merge operation")

	shape := document.Detect(doc)
	log.Debug().Stringer("shape", shape).Msg("Detected document shape")

	validator := e.opts.Validator
	if validator == nil {
		validator = document.NewStructuralValidator(shape)
	}

	if !e.opts.SkipValidation {
		if ok, errs := validator.Validate(doc); !ok {
			return nil, nil, errors.NewMergeFailedError(string(strategy),
				"input configuration validation failed", errors.NewStructuralError("input", errs))
		}
	}

	work := document.DeepCopy(doc)

	anchor, found := e.findOrCreateAnchor(ctx, work, shape)
	existing := e.extractExisting(ctx, work, shape, anchor)

	stats := &Stats{
		Strategy:          strategy,
		TermsProvided:     len(terms),
		TermsBefore:       len(existing),
		AnchorFound:       found,
		ValidationSkipped: e.opts.SkipValidation,
		Timestamp:         time.Now(),
	}

	var result glossary.Terms
	switch strategy {
	case StrategyMerge:
		result = mergeTerms(existing, terms)
		existingKeys := existing.Keys()
		for _, term := range terms {
			if _, ok := existingKeys[term.Key()]; !ok {
				stats.TermsAdded++
			}
		}
		stats.TermsUpdated = len(terms) - stats.TermsAdded
	case StrategyOverwrite:
		result = terms
		stats.TermsAdded = len(terms)
		stats.TermsRemoved = len(existing)
	}
	stats.TermsAfter = len(result)

	e.rewrite(work, shape, anchor, result)

	if !e.opts.SkipValidation {
		if ok, errs := validator.Validate(work); !ok {
			return nil, nil, errors.NewMergeFailedError(string(strategy),
				"final configuration validation failed", errors.NewStructuralError("output", errs))
		}
	}

	log.Info().
		Int("before", stats.TermsBefore).
		Int("after", stats.TermsAfter).
		Int("added", stats.TermsAdded).
		Int("updated", stats.TermsUpdated).
		Int("removed", stats.TermsRemoved).
		Msg("Merge operation completed")

	return work, stats, nil
}

// isAnchor reports whether an entity is the glossary anchor: the
// well-known id, a glossary display name, or the glossary engine marker,
// matched case-insensitively.
func isAnchor(entity map[string]any) bool {
	if id, _ := entity["id"].(string); id == AnchorID {
		return true
	}
	for _, key := range []string{"entityName", "name"} {
		if name, _ := entity[key].(string); strings.EqualFold(name, AnchorMarker) {
			return true
		}
	}
	for _, key := range []string{"detectionEngine", "type"} {
		if marker, _ := entity[key].(string); strings.EqualFold(marker, AnchorMarker) {
			return true
		}
	}
	return false
}

// findOrCreateAnchor locates the anchor entity, creating and appending a
// new one when the document has none. The returned mapping aliases the
// working copy, so mutations land in the document. When several entities
// match, the first wins and the ambiguity is surfaced as a warning.
func (e *Engine) findOrCreateAnchor(ctx context.Context, work document.Document, shape document.Shape) (map[string]any, bool) {
	log := logging.FromContext(ctx)

	entities := document.Entities(work, shape)

	var matches []map[string]any
	for _, raw := range entities {
		entity, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if isAnchor(entity) {
			matches = append(matches, entity)
		}
	}
	if len(matches) > 1 {
		log.Warn().Int("matches", len(matches)).Msg("Multiple glossary entities match; using the first")
	}
	if len(matches) > 0 {
		return matches[0], true
	}

	log.Info().Msg("Creating new glossary entity")

	entity := map[string]any{
		"id":        AnchorID,
		"enabled":   true,
		"resources": []any{},
	}
	switch shape.Layout {
	case document.LayoutNestedData:
		entity["entityName"] = AnchorName
		entity["detectionEngine"] = AnchorMarker
	case document.LayoutTopLevel:
		entity["name"] = AnchorName
		entity["type"] = AnchorMarker
		entity["searchOrder"] = len(entities) + 1
	}

	document.SetEntities(work, shape, append(entities, entity))
	return entity, false
}

// extractExisting collects the terms currently stored in the resources
// the anchor references. Resources that do not parse into terms are
// skipped individually.
func (e *Engine) extractExisting(ctx context.Context, work document.Document, shape document.Shape, anchor map[string]any) glossary.Terms {
	log := logging.FromContext(ctx)
	existing := StoredTerms(work, shape, anchor)
	log.Debug().Int("terms", len(existing)).Msg("Extracted existing glossary terms")
	return existing
}

// FindAnchor returns the glossary anchor entity of the document, or nil
// when the document has none. The returned mapping aliases the document.
func FindAnchor(doc document.Document, shape document.Shape) map[string]any {
	for _, raw := range document.Entities(doc, shape) {
		if entity, ok := raw.(map[string]any); ok && isAnchor(entity) {
			return entity
		}
	}
	return nil
}

// StoredTerms collects the terms held by the resources the anchor
// references. Dangling references and unparsable resources yield
// nothing.
func StoredTerms(doc document.Document, shape document.Shape, anchor map[string]any) glossary.Terms {
	byID := map[string]map[string]any{}
	for _, raw := range document.Resources(doc, shape) {
		if resource, ok := raw.(map[string]any); ok {
			if id, ok := resource["id"].(string); ok {
				byID[id] = resource
			}
		}
	}

	refs, _ := anchor["resources"].([]any)

	var terms glossary.Terms
	for _, ref := range refs {
		id, _ := ref.(string)
		resource, ok := byID[id]
		if !ok {
			continue
		}
		terms = append(terms, resourceTerms(resource)...)
	}
	return terms
}

// resourceTerms parses one resource into terms under either encoding: a
// bundle resource carries a "glossary" list, a flat resource carries the
// phrase and definition directly. Malformed entries yield nothing.
func resourceTerms(resource map[string]any) glossary.Terms {
	if bundle, ok := resource["glossary"].([]any); ok {
		var terms glossary.Terms
		for _, raw := range bundle {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if term, ok := itemTerm(item); ok {
				terms = append(terms, term)
			}
		}
		return terms
	}

	if term, ok := itemTerm(resource); ok {
		return glossary.Terms{term}
	}
	return nil
}

func itemTerm(item map[string]any) (glossary.Term, bool) {
	phrase, _ := item["phrase"].(string)
	definition, _ := item["definition"].(string)
	phrase = strings.TrimSpace(phrase)
	definition = strings.TrimSpace(definition)
	if phrase == "" || definition == "" {
		return glossary.Term{}, false
	}
	return glossary.Term{Phrase: phrase, Definition: definition}, true
}

// mergeTerms unions new terms into the existing set: matches by identity
// key replace the existing entry in place, the rest append in order.
func mergeTerms(existing, incoming glossary.Terms) glossary.Terms {
	index := make(map[string]int, len(existing))
	result := make(glossary.Terms, len(existing))
	copy(result, existing)
	for i, term := range existing {
		index[term.Key()] = i
	}

	for _, term := range incoming {
		if i, ok := index[term.Key()]; ok {
			result[i] = term
			continue
		}
		index[term.Key()] = len(result)
		result = append(result, term)
	}

	return result
}

// rewrite drops every resource the anchor previously referenced, writes
// the result set back in the document's own encoding with fresh ids, and
// points the anchor at exactly the new resources. An empty result set
// leaves the anchor with no resources and writes nothing.
func (e *Engine) rewrite(work document.Document, shape document.Shape, anchor map[string]any, terms glossary.Terms) {
	oldRefs := map[string]bool{}
	if refs, ok := anchor["resources"].([]any); ok {
		for _, ref := range refs {
			if id, ok := ref.(string); ok {
				oldRefs[id] = true
			}
		}
	}

	resources := lo.Filter(document.Resources(work, shape), func(raw any, _ int) bool {
		resource, ok := raw.(map[string]any)
		if !ok {
			return true
		}
		id, _ := resource["id"].(string)
		return !oldRefs[id]
	})

	refs := []any{}
	switch shape.Encoding {
	case document.EncodingFlat:
		for _, term := range terms {
			id := e.opts.NewID()
			resources = append(resources, map[string]any{
				"id":         id,
				"phrase":     term.Phrase,
				"definition": term.Definition,
			})
			refs = append(refs, id)
		}
	case document.EncodingBundle:
		if len(terms) > 0 {
			id := e.opts.NewID()
			resources = append(resources, map[string]any{
				"id":          id,
				"alias":       fmt.Sprintf("Glossary Terms (%d terms)", len(terms)),
				"type":        AnchorMarker,
				"searchOrder": 1,
				"glossary": lo.Map(terms, func(term glossary.Term, _ int) any {
					return term.Map()
				}),
			})
			refs = append(refs, id)
		}
	}

	document.SetResources(work, shape, resources)
	anchor["resources"] = refs
}
