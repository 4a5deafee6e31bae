package extract

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/agentstation/glossync/pkg/errors"
)

// TOMLExtractor reads glossary documents in TOML form. TOML documents are
// always a table at the top level, so this covers the key-value mapping
// shape: plain string values are definitions, nested tables carry a
// definition-like key plus metadata.
type TOMLExtractor struct{}

// Format implements Extractor.
func (e *TOMLExtractor) Format() string { return "toml" }

// Extract implements Extractor.
func (e *TOMLExtractor) Extract(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewProcessError(path, "toml", "cannot read file", err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, errors.NewProcessError(path, "toml", "invalid TOML format", errors.WrapParse("toml", path, err))
	}

	return parseTree(tree), nil
}
