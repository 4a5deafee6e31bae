package glossync

import (
	"time"

	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/merge"
)

// Option is a function that configures an Updater instance.
type Option func(*config) error

// config holds the Updater configuration assembled from options.
type config struct {
	domain   string
	username string
	password string
	timeout  time.Duration

	strategy       merge.Strategy
	dryRun         bool
	skipValidation bool
	profile        glossary.Profile
	validator      document.Validator

	store Store
}

func defaultConfig() *config {
	return &config{
		timeout:  30 * time.Second,
		strategy: merge.StrategyMerge,
		profile:  glossary.StrictProfile(),
	}
}

// WithCredentials configures the remote store domain and login
// credentials.
func WithCredentials(domain, username, password string) Option {
	return func(c *config) error {
		c.domain = domain
		c.username = username
		c.password = password
		return nil
	}
}

// WithTimeout configures the per-request timeout for store operations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		c.timeout = timeout
		return nil
	}
}

// WithStrategy configures how extracted terms are reconciled against the
// stored glossary.
func WithStrategy(strategy merge.Strategy) Option {
	return func(c *config) error {
		if !strategy.Valid() {
			return errors.NewValidationError("strategy", string(strategy), "must be \"merge\" or \"overwrite\"")
		}
		c.strategy = strategy
		return nil
	}
}

// WithDryRun processes files and computes the merge without writing the
// document back.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}

// WithSkipValidation disables document validation around the merge.
func WithSkipValidation(enabled bool) Option {
	return func(c *config) error {
		c.skipValidation = enabled
		return nil
	}
}

// WithProfile configures the term validation profile.
func WithProfile(profile glossary.Profile) Option {
	return func(c *config) error {
		c.profile = profile
		return nil
	}
}

// WithValidator configures the document validator backend used by the
// merge engine.
func WithValidator(v document.Validator) Option {
	return func(c *config) error {
		c.validator = v
		return nil
	}
}

// WithStore injects a document store, bypassing transport setup. Useful
// for tests and for callers that manage their own connection.
func WithStore(store Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}
