// Package extract reads glossary terms out of heterogeneous input files.
// Each supported format (CSV, JSON, YAML, TOML) has an extractor that
// locates phrase-like and definition-like fields and emits raw records;
// the Builder runs extractors over a batch of files, normalizes every
// record, and produces the deduplicated canonical term set.
//
// Field resolution is first-match-wins over ordered keyword lists. The
// lists are exported package data so the priority order is explicit and
// testable rather than buried in conditionals.
package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Record is the transient raw triple produced by an extractor and
// consumed once by the normalizer.
type Record struct {
	Phrase     string
	Definition string
	Metadata   map[string]any
}

// PhraseColumnKeywords is the ordered keyword list used to locate the
// phrase column in tabular input. Earlier keywords win.
var PhraseColumnKeywords = []string{"phrase", "term", "word", "name", "title", "key"}

// DefinitionColumnKeywords is the ordered keyword list used to locate
// the definition column in tabular input.
var DefinitionColumnKeywords = []string{"definition", "description", "meaning", "explanation", "desc", "value"}

// PhraseFieldKeys is the ordered key list used to locate the phrase in
// structured (object) records.
var PhraseFieldKeys = []string{"phrase", "term", "word", "name", "title"}

// DefinitionFieldKeys is the ordered key list used to locate the
// definition in structured (object) records.
var DefinitionFieldKeys = []string{"definition", "description", "meaning", "explanation", "desc"}

// WrapperKeys is the ordered list of keys searched for a nested glossary
// collection when a structured document's top level is a mapping.
var WrapperKeys = []string{"glossary", "terms", "definitions", "vocabulary"}

// Extractor reads one file format and emits raw term records. Extraction
// is restartable: extracting the same file twice yields the same sequence.
type Extractor interface {
	// Format returns the short format name ("csv", "json", "yaml", "toml").
	Format() string

	// Extract reads the file and returns its raw records. A file that
	// cannot be processed at all returns a *errors.ProcessError.
	Extract(path string) ([]Record, error)
}

// ByExtension returns the extractor responsible for a file extension.
// requireDefinition controls whether tabular input without a definition
// column is a hard failure (strict profile) or degrades to empty
// definitions (permissive profile).
func ByExtension(ext string, requireDefinition bool) (Extractor, bool) {
	switch strings.ToLower(ext) {
	case ".csv":
		return &CSVExtractor{RequireDefinition: requireDefinition}, true
	case ".json":
		return &JSONExtractor{}, true
	case ".yaml", ".yml":
		return &YAMLExtractor{}, true
	case ".toml":
		return &TOMLExtractor{}, true
	}
	return nil, false
}

// parseTree converts a decoded document tree into raw records. It accepts
// the three structured shapes: a top-level list of objects, a mapping with
// a wrapper key holding the collection, and a plain key-value mapping.
func parseTree(data any) []Record {
	switch v := data.(type) {
	case []any:
		return parseObjectList(v)
	case map[string]any:
		for _, wrapper := range WrapperKeys {
			nested, ok := v[wrapper]
			if !ok {
				continue
			}
			switch n := nested.(type) {
			case []any:
				return parseObjectList(n)
			case map[string]any:
				return parseMapping(n)
			}
			return nil
		}
		return parseMapping(v)
	}
	return nil
}

// parseObjectList handles a list of term objects.
func parseObjectList(items []any) []Record {
	var records []Record

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		phrase, phraseFound := firstField(obj, PhraseFieldKeys)
		definition, definitionFound := firstField(obj, DefinitionFieldKeys)
		if !phraseFound && !definitionFound {
			continue
		}

		metadata := map[string]any{}
		for key, value := range obj {
			if isCandidateKey(key) {
				continue
			}
			metadata[key] = value
		}

		records = append(records, Record{
			Phrase:     phrase,
			Definition: definition,
			Metadata:   metadata,
		})
	}

	return records
}

// parseMapping handles the key-value form: each top-level key is a phrase
// and its value is either the definition or a nested object carrying a
// definition-like key plus metadata. Keys are visited in sorted order so
// extraction is deterministic.
func parseMapping(m map[string]any) []Record {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var records []Record
	for _, phrase := range keys {
		switch value := m[phrase].(type) {
		case string:
			records = append(records, Record{Phrase: phrase, Definition: value, Metadata: map[string]any{}})
		case map[string]any:
			definition, _ := firstField(value, DefinitionFieldKeys)
			metadata := map[string]any{}
			for key, nested := range value {
				if isDefinitionKey(key) {
					continue
				}
				metadata[key] = nested
			}
			records = append(records, Record{Phrase: phrase, Definition: definition, Metadata: metadata})
		default:
			records = append(records, Record{Phrase: phrase, Definition: stringify(value), Metadata: map[string]any{}})
		}
	}

	return records
}

// firstField returns the stringified value of the first present key.
func firstField(obj map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			return strings.TrimSpace(stringify(value)), true
		}
	}
	return "", false
}

func isCandidateKey(key string) bool {
	return containsKey(PhraseFieldKeys, key) || containsKey(DefinitionFieldKeys, key)
}

func isDefinitionKey(key string) bool {
	return containsKey(DefinitionFieldKeys, key)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
