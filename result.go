package glossync

import (
	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/merge"
)

// Result summarizes one update or preview run.
type Result struct {
	ConfigID       string          `json:"config_id"`
	TermsExtracted int             `json:"terms_extracted"`
	Report         glossary.Report `json:"report"`
	Stats          *merge.Stats    `json:"merge_stats"`

	// DryRun is set when the run was configured not to write.
	DryRun bool `json:"dry_run"`
	// Skipped is set when the merge reported no changes and the write
	// was skipped.
	Skipped bool `json:"skipped"`
	// Written is set when the configuration was actually replaced.
	Written bool `json:"written"`

	// Current describes the glossary as stored before the merge. Only
	// populated by Preview.
	Current *Info `json:"current,omitempty"`
}

// Info describes the glossary currently stored in a configuration.
type Info struct {
	ConfigID       string   `json:"config_id"`
	Shape          string   `json:"shape"`
	TotalEntities  int      `json:"total_entities"`
	TotalResources int      `json:"total_resources"`
	GlossaryFound  bool     `json:"glossary_entity_exists"`
	TermCount      int      `json:"current_glossary_terms"`
	ResourceRefs   []string `json:"glossary_resources"`
}

// inspect reads the glossary state out of a fetched document.
func inspect(configID string, doc document.Document) *Info {
	shape := document.Detect(doc)
	entities := document.Entities(doc, shape)
	resources := document.Resources(doc, shape)

	info := &Info{
		ConfigID:       configID,
		Shape:          shape.String(),
		TotalEntities:  len(entities),
		TotalResources: len(resources),
	}

	anchor := merge.FindAnchor(doc, shape)
	if anchor == nil {
		return info
	}

	info.GlossaryFound = true
	info.TermCount = len(merge.StoredTerms(doc, shape, anchor))
	if refs, ok := anchor["resources"].([]any); ok {
		for _, ref := range refs {
			if id, ok := ref.(string); ok {
				info.ResourceRefs = append(info.ResourceRefs, id)
			}
		}
	}
	return info
}
