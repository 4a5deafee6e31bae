package extract

import (
	"context"
	"path/filepath"

	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/logging"
)

// Builder turns a batch of glossary files into the canonical term set.
// Files are processed in the given order; any file that cannot be
// processed aborts the whole batch. Individual records that fail the
// normalizer's rules are rejected and counted, not fatal.
type Builder struct {
	profile    glossary.Profile
	normalizer *glossary.Normalizer
}

// NewBuilder creates a builder using the given validation profile.
func NewBuilder(profile glossary.Profile) *Builder {
	return &Builder{
		profile:    profile,
		normalizer: glossary.NewNormalizer(profile),
	}
}

// Build extracts, normalizes, and deduplicates terms from the files in
// order. It returns errors.ErrNoTerms when the final set is empty, and a
// *errors.ProcessError when any single file cannot be processed.
func (b *Builder) Build(ctx context.Context, paths []string) (glossary.Terms, error) {
	log := logging.FromContext(ctx)

	var all glossary.Terms
	for _, path := range paths {
		log.Info().Str("file", path).Msg("Processing glossary file")

		records, err := b.processFile(path)
		if err != nil {
			return nil, err
		}

		accepted := 0
		for _, record := range records {
			term, ok := b.normalizer.Normalize(record.Phrase, record.Definition, record.Metadata)
			if !ok {
				continue
			}
			all = append(all, *term)
			accepted++
		}

		log.Info().Str("file", path).Int("terms", accepted).Msg("Extracted valid terms")
	}

	report := b.Report()
	log.Info().
		Int("accepted", report.CleanedCount).
		Int("rejected", report.RejectedCount).
		Float64("success_rate", report.SuccessRate).
		Msg("Validation summary")
	for _, reason := range report.Errors {
		log.Debug().Str("reason", reason).Msg("Record rejected")
	}

	unique := all.Dedupe()
	if len(unique) < len(all) {
		log.Debug().Int("duplicates", len(all)-len(unique)).Msg("Removed duplicate terms")
	}
	if len(unique) == 0 {
		return nil, errors.ErrNoTerms
	}

	return unique, nil
}

// Report returns the validation report aggregated across all files
// processed so far.
func (b *Builder) Report() glossary.Report {
	return b.normalizer.Report()
}

func (b *Builder) processFile(path string) ([]Record, error) {
	extractor, ok := ByExtension(filepath.Ext(path), b.profile.DefinitionRequired)
	if !ok {
		return nil, errors.NewProcessError(path, "", "unsupported file format", nil)
	}
	return extractor.Extract(path)
}
