// Package glossync reconciles term definitions from local glossary files
// with the glossary stored inside a remote configuration document.
//
// The flow per invocation is strictly sequential: discover files, build
// the canonical term set, fetch the document, merge, and write the
// result back only when the merge actually changed the stored terms.
//
// Example usage:
//
//	updater, err := glossync.New(
//		glossync.WithCredentials("api.example.com", "user", "pass"),
//		glossync.WithStrategy(merge.StrategyMerge),
//	)
//	if err != nil {
//		return err
//	}
//	result, err := updater.Update(ctx, configID, []string{"glossary.csv"})
package glossync

import (
	"context"
	"fmt"

	"github.com/agentstation/glossync/internal/discover"
	"github.com/agentstation/glossync/internal/store"
	"github.com/agentstation/glossync/internal/transport"
	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/extract"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/logging"
	"github.com/agentstation/glossync/pkg/merge"
)

// Store fetches and replaces configuration documents. The production
// implementation lives in internal/store; tests inject their own.
type Store interface {
	Fetch(ctx context.Context, id string) (document.Document, error)
	Write(ctx context.Context, id string, doc document.Document) (document.Document, error)
}

// Updater orchestrates one glossary update run against a configuration.
type Updater struct {
	config *config
	store  Store
}

// New creates a new Updater with the given options. Either store
// credentials or an injected Store are required.
func New(opts ...Option) (*Updater, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if cfg.store == nil && (cfg.domain == "" || cfg.username == "" || cfg.password == "") {
		return nil, errors.NewValidationError("credentials", nil,
			"domain, username, and password are required unless a store is injected")
	}

	return &Updater{config: cfg, store: cfg.store}, nil
}

// BuildTermSet discovers the supported files among the given paths and
// extracts the deduplicated canonical term set, applying the configured
// validation profile.
func (u *Updater) BuildTermSet(ctx context.Context, paths []string) (glossary.Terms, glossary.Report, error) {
	files, err := discover.Files(ctx, paths)
	if err != nil {
		return nil, glossary.Report{}, err
	}

	builder := extract.NewBuilder(u.config.profile)
	terms, err := builder.Build(ctx, files)
	if err != nil {
		return nil, builder.Report(), err
	}
	return terms, builder.Report(), nil
}

// Update runs the full pipeline: build the term set from paths, fetch
// the configuration, merge, and write back. The write is skipped when
// the merge reports no changes or when dry-run is configured.
func (u *Updater) Update(ctx context.Context, configID string, paths []string) (*Result, error) {
	ctx = logging.WithConfiguration(ctx, configID)
	log := logging.FromContext(ctx)

	terms, report, err := u.BuildTermSet(ctx, paths)
	if err != nil {
		return nil, err
	}
	log.Info().Int("terms", len(terms)).Msg("Extracted glossary terms")

	st, err := u.connect(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := st.Fetch(ctx, configID)
	if err != nil {
		return nil, err
	}

	merged, stats, err := u.merge(ctx, doc, terms)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ConfigID:       configID,
		TermsExtracted: len(terms),
		Report:         report,
		Stats:          stats,
		DryRun:         u.config.dryRun,
	}

	if u.config.dryRun {
		log.Info().Msg("Dry run; skipping configuration update")
		return result, nil
	}
	if !stats.HasChanges() {
		log.Info().Msg("No changes to glossary; skipping configuration update")
		result.Skipped = true
		return result, nil
	}

	if _, err := st.Write(ctx, configID, merged); err != nil {
		return nil, err
	}
	result.Written = true

	log.Info().
		Int("before", stats.TermsBefore).
		Int("after", stats.TermsAfter).
		Msg("Configuration updated")
	return result, nil
}

// Preview computes what an update would do without writing anything.
func (u *Updater) Preview(ctx context.Context, configID string, paths []string) (*Result, error) {
	ctx = logging.WithConfiguration(ctx, configID)

	terms, report, err := u.BuildTermSet(ctx, paths)
	if err != nil {
		return nil, err
	}

	st, err := u.connect(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := st.Fetch(ctx, configID)
	if err != nil {
		return nil, err
	}

	_, stats, err := u.merge(ctx, doc, terms)
	if err != nil {
		return nil, err
	}

	return &Result{
		ConfigID:       configID,
		TermsExtracted: len(terms),
		Report:         report,
		Stats:          stats,
		DryRun:         true,
		Current:        inspect(configID, doc),
	}, nil
}

// Info inspects a configuration's glossary without modifying it.
func (u *Updater) Info(ctx context.Context, configID string) (*Info, error) {
	ctx = logging.WithConfiguration(ctx, configID)

	st, err := u.connect(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := st.Fetch(ctx, configID)
	if err != nil {
		return nil, err
	}

	return inspect(configID, doc), nil
}

// Validate checks a configuration document against the structural rules
// (or the configured validator backend) without touching the store.
func (u *Updater) Validate(doc document.Document) (bool, []string) {
	validator := u.config.validator
	if validator == nil {
		validator = document.NewStructuralValidator(document.Detect(doc))
	}
	return validator.Validate(doc)
}

// merge runs the merge engine with the configured options.
func (u *Updater) merge(ctx context.Context, doc document.Document, terms glossary.Terms) (document.Document, *merge.Stats, error) {
	var opts []merge.Option
	if u.config.skipValidation {
		opts = append(opts, merge.WithSkipValidation())
	}
	if u.config.validator != nil {
		opts = append(opts, merge.WithValidator(u.config.validator))
	}
	return merge.New(opts...).Merge(ctx, doc, terms, u.config.strategy)
}

// connect returns the configured store, logging into the remote one on
// first use.
func (u *Updater) connect(ctx context.Context) (Store, error) {
	if u.store != nil {
		return u.store, nil
	}

	client := transport.New(u.config.domain, transport.WithTimeout(u.config.timeout))
	if err := client.Login(ctx, u.config.username, u.config.password); err != nil {
		return nil, err
	}

	u.store = store.New(client)
	return u.store, nil
}
