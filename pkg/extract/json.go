package extract

import (
	"encoding/json"
	"os"

	"github.com/agentstation/glossync/pkg/errors"
)

// JSONExtractor reads structured glossary documents in JSON form: a
// top-level array of term objects, a mapping with a wrapper key holding
// the collection, or a plain phrase-to-definition mapping.
type JSONExtractor struct{}

// Format implements Extractor.
func (e *JSONExtractor) Format() string { return "json" }

// Extract implements Extractor.
func (e *JSONExtractor) Extract(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewProcessError(path, "json", "cannot read file", err)
	}

	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, errors.NewProcessError(path, "json", "invalid JSON format", errors.WrapParse("json", path, err))
	}

	return parseTree(tree), nil
}
