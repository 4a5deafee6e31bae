package merge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/merge"
)

// sequentialIDs returns a deterministic id generator for tests.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newEngine(opts ...merge.Option) *merge.Engine {
	return merge.New(append([]merge.Option{merge.WithIDGenerator(sequentialIDs())}, opts...)...)
}

// nestedFlatDoc builds a nested-layout document storing the given terms
// in flat encoding, referenced by a glossary anchor.
func nestedFlatDoc(terms ...glossary.Term) document.Document {
	resources := []any{}
	refs := []any{}
	for i, term := range terms {
		id := fmt.Sprintf("existing-%d", i)
		resources = append(resources, map[string]any{
			"id":         id,
			"phrase":     term.Phrase,
			"definition": term.Definition,
		})
		refs = append(refs, id)
	}
	return document.Document{
		"data": map[string]any{
			"analysisEntityList": []any{
				map[string]any{
					"id":              merge.AnchorID,
					"entityName":      "Glossary",
					"detectionEngine": "glossary",
					"enabled":         true,
					"resources":       refs,
				},
			},
			"resourceList": resources,
		},
	}
}

// topBundleDoc builds a top-level-layout document storing the given terms
// in a single bundle resource.
func topBundleDoc(terms ...glossary.Term) document.Document {
	resources := []any{}
	refs := []any{}
	if len(terms) > 0 {
		items := []any{}
		for _, term := range terms {
			items = append(items, term.Map())
		}
		resources = append(resources, map[string]any{
			"id":       "existing-bundle",
			"type":     "glossary",
			"glossary": items,
		})
		refs = append(refs, "existing-bundle")
	}
	return document.Document{
		"analysisEntityList": []any{
			map[string]any{
				"id":        merge.AnchorID,
				"name":      "Glossary",
				"type":      "glossary",
				"enabled":   true,
				"resources": refs,
			},
		},
		"resourceList": resources,
	}
}

// storedTerms reads back the terms the document's anchor references.
func storedTerms(t *testing.T, doc document.Document) glossary.Terms {
	t.Helper()
	shape := document.Detect(doc)

	var anchor map[string]any
	for _, raw := range document.Entities(doc, shape) {
		entity := raw.(map[string]any)
		if entity["id"] == merge.AnchorID {
			anchor = entity
			break
		}
	}
	require.NotNil(t, anchor, "glossary entity missing")

	byID := map[string]map[string]any{}
	for _, raw := range document.Resources(doc, shape) {
		resource := raw.(map[string]any)
		byID[resource["id"].(string)] = resource
	}

	var terms glossary.Terms
	for _, ref := range anchor["resources"].([]any) {
		resource, ok := byID[ref.(string)]
		require.True(t, ok, "dangling resource reference %v", ref)
		if items, ok := resource["glossary"].([]any); ok {
			for _, raw := range items {
				item := raw.(map[string]any)
				terms = append(terms, glossary.Term{
					Phrase:     item["phrase"].(string),
					Definition: item["definition"].(string),
				})
			}
			continue
		}
		terms = append(terms, glossary.Term{
			Phrase:     resource["phrase"].(string),
			Definition: resource["definition"].(string),
		})
	}
	return terms
}

var (
	apiTerm  = glossary.Term{Phrase: "API", Definition: "Application Programming Interface."}
	restTerm = glossary.Term{Phrase: "REST", Definition: "Representational State Transfer."}
	oldTerm  = glossary.Term{Phrase: "OLD", Definition: "A stale term."}
)

func TestMergeIntoEmptyDocument(t *testing.T) {
	engine := newEngine()

	updated, stats, err := engine.Merge(context.Background(), nestedFlatDoc(), glossary.Terms{apiTerm, restTerm}, merge.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TermsBefore)
	assert.Equal(t, 2, stats.TermsAfter)
	assert.Equal(t, 2, stats.TermsAdded)
	assert.Equal(t, 0, stats.TermsUpdated)
	assert.Equal(t, 0, stats.TermsRemoved)
	assert.True(t, stats.AnchorFound)
	assert.True(t, stats.HasChanges())

	assert.Equal(t, glossary.Terms{apiTerm, restTerm}, storedTerms(t, updated))
}

func TestOverwriteReplacesExisting(t *testing.T) {
	engine := newEngine()

	updated, stats, err := engine.Merge(context.Background(), nestedFlatDoc(oldTerm), glossary.Terms{apiTerm, restTerm}, merge.StrategyOverwrite)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TermsBefore)
	assert.Equal(t, 2, stats.TermsAfter)
	assert.Equal(t, 2, stats.TermsAdded)
	assert.Equal(t, 1, stats.TermsRemoved)
	assert.True(t, stats.HasChanges())

	stored := storedTerms(t, updated)
	assert.Equal(t, glossary.Terms{apiTerm, restTerm}, stored)
	assert.False(t, stored.Contains("OLD"))
}

func TestMergeIdempotence(t *testing.T) {
	engine := newEngine()
	terms := glossary.Terms{apiTerm, restTerm}

	first, stats1, err := engine.Merge(context.Background(), nestedFlatDoc(), terms, merge.StrategyMerge)
	require.NoError(t, err)

	second, stats2, err := engine.Merge(context.Background(), first, terms, merge.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, 0, stats2.TermsAdded)
	assert.Equal(t, len(terms), stats2.TermsUpdated)
	assert.Equal(t, stats1.TermsAfter, stats2.TermsAfter)
	assert.False(t, stats2.HasChanges())
	assert.Equal(t, storedTerms(t, first), storedTerms(t, second))
}

func TestOverwriteTotality(t *testing.T) {
	engine := newEngine()
	terms := glossary.Terms{apiTerm}

	for _, doc := range []document.Document{nestedFlatDoc(), nestedFlatDoc(oldTerm, restTerm), topBundleDoc(oldTerm)} {
		_, stats, err := engine.Merge(context.Background(), doc, terms, merge.StrategyOverwrite)
		require.NoError(t, err)
		assert.Equal(t, len(terms), stats.TermsAfter)
	}
}

func TestMergeEmptyOverwriteClearsAnchor(t *testing.T) {
	engine := newEngine()

	updated, stats, err := engine.Merge(context.Background(), topBundleDoc(apiTerm, restTerm), nil, merge.StrategyOverwrite)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TermsAfter)
	assert.Equal(t, 2, stats.TermsRemoved)
	assert.True(t, stats.HasChanges())

	shape := document.Detect(updated)
	entity := document.Entities(updated, shape)[0].(map[string]any)
	assert.Equal(t, []any{}, entity["resources"])
	assert.Empty(t, document.Resources(updated, shape))
}

func TestMergeUpdatesInPlace(t *testing.T) {
	engine := newEngine()
	revised := glossary.Term{Phrase: "old", Definition: "A revised definition."}

	updated, stats, err := engine.Merge(context.Background(), nestedFlatDoc(oldTerm, apiTerm), glossary.Terms{revised}, merge.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TermsAdded)
	assert.Equal(t, 1, stats.TermsUpdated)
	assert.Equal(t, 0, stats.TermsRemoved)
	// Definition-only updates report no change; the caller skips the write.
	assert.False(t, stats.HasChanges())

	stored := storedTerms(t, updated)
	require.Len(t, stored, 2)
	// Order of first occurrence preserved, phrase taken verbatim from input.
	assert.Equal(t, revised, stored[0])
	assert.Equal(t, apiTerm, stored[1])
}

func TestMergePreservesEncoding(t *testing.T) {
	engine := newEngine()

	t.Run("flat stays flat", func(t *testing.T) {
		updated, _, err := engine.Merge(context.Background(), nestedFlatDoc(oldTerm), glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)

		shape := document.Detect(updated)
		resources := document.Resources(updated, shape)
		require.Len(t, resources, 2)
		for _, raw := range resources {
			resource := raw.(map[string]any)
			assert.Contains(t, resource, "phrase")
			assert.NotContains(t, resource, "glossary")
		}
	})

	t.Run("bundle stays bundle", func(t *testing.T) {
		updated, _, err := engine.Merge(context.Background(), topBundleDoc(oldTerm), glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)

		shape := document.Detect(updated)
		resources := document.Resources(updated, shape)
		require.Len(t, resources, 1)

		resource := resources[0].(map[string]any)
		assert.Equal(t, "Glossary Terms (2 terms)", resource["alias"])
		assert.Equal(t, 1, resource["searchOrder"])
		assert.Len(t, resource["glossary"], 2)
	})
}

func TestMergeCrossReferenceIntegrity(t *testing.T) {
	engine := newEngine()

	updated, _, err := engine.Merge(context.Background(), nestedFlatDoc(oldTerm, restTerm), glossary.Terms{apiTerm}, merge.StrategyOverwrite)
	require.NoError(t, err)

	shape := document.Detect(updated)
	ids := map[string]bool{}
	for _, raw := range document.Resources(updated, shape) {
		ids[raw.(map[string]any)["id"].(string)] = true
	}

	entity := document.Entities(updated, shape)[0].(map[string]any)
	refs := entity["resources"].([]any)
	require.Len(t, refs, 1)
	for _, ref := range refs {
		assert.True(t, ids[ref.(string)])
	}
	// No orphaned former resources remain.
	assert.Len(t, ids, 1)
	assert.False(t, ids["existing-0"])
}

func TestMergeCreatesAnchor(t *testing.T) {
	engine := newEngine(merge.WithSkipValidation())

	t.Run("nested layout", func(t *testing.T) {
		doc := document.Document{"data": map[string]any{
			"analysisEntityList": []any{},
			"resourceList":       []any{},
		}}

		updated, stats, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)
		assert.False(t, stats.AnchorFound)

		shape := document.Detect(updated)
		entities := document.Entities(updated, shape)
		require.Len(t, entities, 1)

		entity := entities[0].(map[string]any)
		assert.Equal(t, merge.AnchorID, entity["id"])
		assert.Equal(t, "Glossary", entity["entityName"])
		assert.Equal(t, "glossary", entity["detectionEngine"])
		assert.Equal(t, true, entity["enabled"])
	})

	t.Run("top-level layout", func(t *testing.T) {
		doc := document.Document{
			"analysisEntityList": []any{map[string]any{"id": "other", "name": "Requirements"}},
			"resourceList":       []any{},
		}

		updated, stats, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)
		assert.False(t, stats.AnchorFound)

		shape := document.Detect(updated)
		entities := document.Entities(updated, shape)
		require.Len(t, entities, 2)

		entity := entities[1].(map[string]any)
		assert.Equal(t, merge.AnchorID, entity["id"])
		assert.Equal(t, "Glossary", entity["name"])
		assert.Equal(t, "glossary", entity["type"])
		assert.Equal(t, 2, entity["searchOrder"])
	})
}

func TestMergeAnchorMatching(t *testing.T) {
	engine := newEngine(merge.WithSkipValidation())

	t.Run("matches by name case-insensitively", func(t *testing.T) {
		doc := document.Document{
			"analysisEntityList": []any{
				map[string]any{"id": "custom-id", "name": "GLOSSARY", "resources": []any{}},
			},
			"resourceList": []any{},
		}

		_, stats, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)
		assert.True(t, stats.AnchorFound)
	})

	t.Run("duplicate matches use the first", func(t *testing.T) {
		doc := document.Document{
			"analysisEntityList": []any{
				map[string]any{"id": "first", "name": "Glossary", "resources": []any{}},
				map[string]any{"id": "second", "name": "glossary", "resources": []any{}},
			},
			"resourceList": []any{},
		}

		updated, stats, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)
		assert.True(t, stats.AnchorFound)

		shape := document.Detect(updated)
		first := document.Entities(updated, shape)[0].(map[string]any)
		second := document.Entities(updated, shape)[1].(map[string]any)
		assert.Len(t, first["resources"], 1)
		assert.Empty(t, second["resources"])
	})
}

func TestMergeSkipsUnparsableResources(t *testing.T) {
	engine := newEngine(merge.WithSkipValidation())
	doc := document.Document{
		"data": map[string]any{
			"analysisEntityList": []any{
				map[string]any{
					"id":        merge.AnchorID,
					"resources": []any{"broken", "existing-0", "ghost"},
				},
			},
			"resourceList": []any{
				map[string]any{"id": "broken", "phrase": "   "},
				map[string]any{"id": "existing-0", "phrase": "OLD", "definition": "A stale term."},
			},
		},
	}

	_, stats, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TermsBefore)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	engine := newEngine()
	doc := nestedFlatDoc(oldTerm)
	want := document.DeepCopy(doc)

	_, _, err := engine.Merge(context.Background(), doc, glossary.Terms{apiTerm}, merge.StrategyOverwrite)
	require.NoError(t, err)
	assert.Equal(t, want, doc)
}

func TestMergeInvalidStrategy(t *testing.T) {
	engine := newEngine()

	_, _, err := engine.Merge(context.Background(), nestedFlatDoc(), glossary.Terms{apiTerm}, merge.Strategy("replace"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid merge strategy")
}

func TestMergeValidation(t *testing.T) {
	// Anchor references a resource that does not exist.
	broken := document.Document{
		"data": map[string]any{
			"analysisEntityList": []any{
				map[string]any{"id": merge.AnchorID, "entityName": "Glossary", "resources": []any{"ghost"}},
			},
			"resourceList": []any{},
		},
	}

	t.Run("input failure aborts", func(t *testing.T) {
		engine := newEngine()
		_, _, err := engine.Merge(context.Background(), broken, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input configuration validation failed")
	})

	t.Run("skip validation tolerates broken input", func(t *testing.T) {
		engine := newEngine(merge.WithSkipValidation())
		_, stats, err := engine.Merge(context.Background(), broken, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.NoError(t, err)
		assert.True(t, stats.ValidationSkipped)
	})

	t.Run("custom validator backend", func(t *testing.T) {
		schema := []byte(`{"type": "object", "required": ["data"]}`)
		validator, err := document.NewSchemaValidator(schema)
		require.NoError(t, err)

		engine := newEngine(merge.WithValidator(validator))
		_, _, err = engine.Merge(context.Background(), document.Document{"name": "config"}, glossary.Terms{apiTerm}, merge.StrategyMerge)
		require.Error(t, err)
	})
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    merge.Strategy
		wantErr bool
	}{
		{"merge", merge.StrategyMerge, false},
		{"OVERWRITE", merge.StrategyOverwrite, false},
		{"  merge  ", merge.StrategyMerge, false},
		{"replace", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := merge.ParseStrategy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
