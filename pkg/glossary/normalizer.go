package glossary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxReportedErrors caps how many rejection reasons the report carries.
const maxReportedErrors = 10

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalizer cleans and validates raw phrase/definition pairs according to
// a Profile. Malformed input is never surfaced as an error: records that
// fail the rules are rejected and counted, and the pipeline continues.
//
// A Normalizer is not safe for concurrent use; the pipeline is sequential
// by contract.
type Normalizer struct {
	profile Profile
	caser   cases.Caser

	cleaned  int
	rejected int
	errors   []string
}

// Report summarizes a normalization run.
type Report struct {
	CleanedCount  int      `json:"cleaned_count"`
	RejectedCount int      `json:"rejected_count"`
	ErrorCount    int      `json:"error_count"`
	Errors        []string `json:"errors"`
	SuccessRate   float64  `json:"success_rate"`
}

// NewNormalizer creates a normalizer for the given profile.
func NewNormalizer(profile Profile) *Normalizer {
	return &Normalizer{
		profile: profile,
		caser:   cases.Title(language.English),
	}
}

// Profile returns the rule set the normalizer operates under.
func (n *Normalizer) Profile() Profile {
	return n.profile
}

// Normalize cleans and validates a single raw record. It returns the
// canonical term and true on success, or nil and false when the record
// is rejected. The rejection reason is recorded for the report.
func (n *Normalizer) Normalize(phrase, definition string, metadata map[string]any) (*Term, bool) {
	cleanedPhrase := n.cleanPhrase(phrase)
	cleanedDefinition := n.cleanDefinition(definition)

	if !n.validatePhrase(cleanedPhrase) || !n.validateDefinition(cleanedDefinition) {
		n.rejected++
		return nil, false
	}

	n.cleaned++
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Term{
		Phrase:     cleanedPhrase,
		Definition: cleanedDefinition,
		Metadata:   metadata,
	}, true
}

// Report returns the accumulated validation statistics.
func (n *Normalizer) Report() Report {
	total := n.cleaned + n.rejected
	rate := 0.0
	if total > 0 {
		rate = float64(n.cleaned) / float64(total)
	}

	reported := n.errors
	if len(reported) > maxReportedErrors {
		reported = reported[:maxReportedErrors]
	}

	return Report{
		CleanedCount:  n.cleaned,
		RejectedCount: n.rejected,
		ErrorCount:    len(n.errors),
		Errors:        reported,
		SuccessRate:   rate,
	}
}

// Merge folds another report into this one, for aggregation across files.
func (r Report) Merge(other Report) Report {
	merged := Report{
		CleanedCount:  r.CleanedCount + other.CleanedCount,
		RejectedCount: r.RejectedCount + other.RejectedCount,
		ErrorCount:    r.ErrorCount + other.ErrorCount,
		Errors:        append(append([]string{}, r.Errors...), other.Errors...),
	}
	if len(merged.Errors) > maxReportedErrors {
		merged.Errors = merged.Errors[:maxReportedErrors]
	}
	total := merged.CleanedCount + merged.RejectedCount
	if total > 0 {
		merged.SuccessRate = float64(merged.CleanedCount) / float64(total)
	}
	return merged
}

func (n *Normalizer) cleanPhrase(phrase string) string {
	if phrase == "" || phrase == "None" {
		return ""
	}

	phrase = strings.TrimSpace(phrase)

	if n.profile.StripHTML {
		phrase = htmlTagPattern.ReplaceAllString(phrase, "")
	}
	for _, forbidden := range n.profile.ForbiddenPhrase {
		phrase = strings.ReplaceAll(phrase, forbidden, "")
	}
	if n.profile.CollapseWhitespace {
		phrase = strings.TrimSpace(whitespacePattern.ReplaceAllString(phrase, " "))
	}
	if n.profile.TitleCasePhrase {
		phrase = n.caser.String(phrase)
		phrase = restoreAbbreviations(phrase, n.profile.Abbreviations)
	}

	return phrase
}

func (n *Normalizer) cleanDefinition(definition string) string {
	if definition == "" || definition == "None" {
		return ""
	}

	definition = strings.TrimSpace(definition)

	if n.profile.StripHTML {
		definition = htmlTagPattern.ReplaceAllString(definition, "")
	}
	for _, forbidden := range n.profile.ForbiddenDefinition {
		definition = strings.ReplaceAll(definition, forbidden, "")
	}
	if n.profile.CollapseWhitespace {
		definition = strings.TrimSpace(whitespacePattern.ReplaceAllString(definition, " "))
	}
	if n.profile.CapitalizeDefinition && definition != "" {
		r, size := utf8.DecodeRuneInString(definition)
		if unicode.IsLower(r) {
			definition = string(unicode.ToUpper(r)) + definition[size:]
		}
	}
	if n.profile.AppendPunctuation && definition != "" && !endsWithPunctuation(definition) {
		definition += "."
	}

	return definition
}

func (n *Normalizer) validatePhrase(phrase string) bool {
	p := n.profile

	if phrase == "" {
		if p.PhraseRequired {
			n.record("phrase is required but empty")
			return false
		}
		return true
	}

	if p.PhraseMinLen > 0 && len(phrase) < p.PhraseMinLen {
		n.record(fmt.Sprintf("phrase too short: %q", phrase))
		return false
	}
	if p.PhraseMaxLen > 0 && len(phrase) > p.PhraseMaxLen {
		n.record(fmt.Sprintf("phrase too long: %q", truncate(phrase, 50)))
		return false
	}
	if p.PhrasePattern != nil && !p.PhrasePattern.MatchString(phrase) {
		n.record(fmt.Sprintf("phrase contains invalid characters: %q", phrase))
		return false
	}
	if p.PhraseMaxWords > 0 && len(strings.Fields(phrase)) > p.PhraseMaxWords {
		n.record(fmt.Sprintf("phrase has too many words: %q", phrase))
		return false
	}

	return true
}

func (n *Normalizer) validateDefinition(definition string) bool {
	p := n.profile

	if definition == "" {
		if p.DefinitionRequired {
			n.record("definition is required but empty")
			return false
		}
		return true
	}

	if p.DefinitionMinLen > 0 && len(definition) < p.DefinitionMinLen {
		n.record(fmt.Sprintf("definition too short: %q", definition))
		return false
	}
	if p.DefinitionMaxLen > 0 && len(definition) > p.DefinitionMaxLen {
		n.record(fmt.Sprintf("definition too long: %q", truncate(definition, 50)))
		return false
	}
	if p.RequirePunctuation && !endsWithPunctuation(definition) {
		n.record(fmt.Sprintf("definition must end with punctuation: %q", definition))
		return false
	}

	return true
}

func (n *Normalizer) record(reason string) {
	n.errors = append(n.errors, reason)
}

// restoreAbbreviations upper-cases known abbreviations that title-casing
// just lower-cased, e.g. "Api Gateway" -> "API Gateway".
func restoreAbbreviations(phrase string, abbreviations []string) string {
	if len(abbreviations) == 0 {
		return phrase
	}

	known := make(map[string]string, len(abbreviations))
	for _, abbr := range abbreviations {
		known[strings.ToUpper(abbr)] = strings.ToUpper(abbr)
	}

	words := strings.Split(phrase, " ")
	for i, word := range words {
		if upper, ok := known[strings.ToUpper(word)]; ok {
			words[i] = upper
		}
	}
	return strings.Join(words, " ")
}

func endsWithPunctuation(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
