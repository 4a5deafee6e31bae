package glossary

import "regexp"

// Profile is the rule-set value object that parameterizes the normalizer.
// The strict profile applies the full cleaning and validation schema; the
// permissive profile only trims and requires a non-empty phrase.
type Profile struct {
	Name string

	// Cleaning rules
	StripHTML            bool
	ForbiddenPhrase      []string
	ForbiddenDefinition  []string
	CollapseWhitespace   bool
	TitleCasePhrase      bool
	Abbreviations        []string
	CapitalizeDefinition bool
	AppendPunctuation    bool

	// Phrase validation
	PhraseRequired bool
	PhraseMinLen   int
	PhraseMaxLen   int
	PhraseMaxWords int
	PhrasePattern  *regexp.Regexp

	// Definition validation
	DefinitionRequired bool
	DefinitionMinLen   int
	DefinitionMaxLen   int
	RequirePunctuation bool
}

// phrasePattern is the character allow-list enforced by the strict profile.
var phrasePattern = regexp.MustCompile(`^[A-Za-z0-9\s\-_()./&]+$`)

// StrictAbbreviations lists known abbreviations restored to upper case
// after title-casing a phrase.
var StrictAbbreviations = []string{
	"API", "REST", "JSON", "XML", "HTTP", "HTTPS", "URL", "URI", "SQL", "CSS", "HTML",
}

// StrictProfile returns the full cleaning and validation rule set.
func StrictProfile() Profile {
	return Profile{
		Name:                 "strict",
		StripHTML:            true,
		ForbiddenPhrase:      []string{"<", ">", `"`, "'", ";", "script"},
		ForbiddenDefinition:  []string{"<", ">", "script", "javascript"},
		CollapseWhitespace:   true,
		TitleCasePhrase:      true,
		Abbreviations:        StrictAbbreviations,
		CapitalizeDefinition: true,
		AppendPunctuation:    true,
		PhraseRequired:       true,
		PhraseMinLen:         1,
		PhraseMaxLen:         100,
		PhraseMaxWords:       10,
		PhrasePattern:        phrasePattern,
		DefinitionRequired:   true,
		DefinitionMinLen:     5,
		DefinitionMaxLen:     500,
		RequirePunctuation:   true,
	}
}

// PermissiveProfile returns the trim-only rule set. The phrase must be
// non-empty after trimming; the definition is optional and defaults to
// the empty string.
func PermissiveProfile() Profile {
	return Profile{
		Name:           "permissive",
		PhraseRequired: true,
	}
}
