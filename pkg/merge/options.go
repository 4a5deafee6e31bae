package merge

import (
	"github.com/google/uuid"

	"github.com/agentstation/glossync/pkg/document"
)

// Options configures a merge engine.
type Options struct {
	// Validator checks documents before and after the merge. When nil,
	// a structural validator for the detected shape is used.
	Validator document.Validator

	// SkipValidation disables both the input and output validation pass.
	SkipValidation bool

	// NewID generates ids for freshly written resources.
	NewID func() string
}

// Option configures a merge engine.
type Option func(*Options)

// WithValidator sets the document validator backend.
func WithValidator(v document.Validator) Option {
	return func(o *Options) {
		o.Validator = v
	}
}

// WithSkipValidation disables document validation around the merge.
func WithSkipValidation() Option {
	return func(o *Options) {
		o.SkipValidation = true
	}
}

// WithIDGenerator overrides the resource id generator. Useful for
// deterministic output in tests.
func WithIDGenerator(gen func() string) Option {
	return func(o *Options) {
		o.NewID = gen
	}
}

func defaultOptions() Options {
	return Options{
		NewID: uuid.NewString,
	}
}
