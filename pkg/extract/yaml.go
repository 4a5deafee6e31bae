package extract

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/glossync/pkg/errors"
)

// YAMLExtractor reads structured glossary documents in YAML form. It
// accepts the same three shapes as the JSON extractor.
type YAMLExtractor struct{}

// Format implements Extractor.
func (e *YAMLExtractor) Format() string { return "yaml" }

// Extract implements Extractor.
func (e *YAMLExtractor) Extract(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewProcessError(path, "yaml", "cannot read file", err)
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.NewProcessError(path, "yaml", "invalid YAML format", errors.WrapParse("yaml", path, err))
	}

	return parseTree(tree), nil
}
