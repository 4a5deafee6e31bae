package merge

import (
	"strings"

	"github.com/agentstation/glossync/pkg/errors"
)

// Strategy selects how incoming terms are reconciled against the terms
// already stored in the document.
type Strategy string

const (
	// StrategyMerge unions the incoming terms with the existing set,
	// replacing entries in place when the phrase already exists.
	StrategyMerge Strategy = "merge"

	// StrategyOverwrite replaces the existing set wholesale.
	StrategyOverwrite Strategy = "overwrite"
)

// Valid reports whether the strategy is one of the supported values.
func (s Strategy) Valid() bool {
	return s == StrategyMerge || s == StrategyOverwrite
}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy converts a user-supplied string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if !strategy.Valid() {
		return "", errors.NewValidationError("strategy", s, "must be \"merge\" or \"overwrite\"")
	}
	return strategy, nil
}
