package glossary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/glossync/pkg/glossary"
)

func TestNormalizeStrict(t *testing.T) {
	tests := []struct {
		name           string
		phrase         string
		definition     string
		wantPhrase     string
		wantDefinition string
	}{
		{
			name:           "basic cleanup",
			phrase:         "  api gateway  ",
			definition:     "a service that routes requests",
			wantPhrase:     "API Gateway",
			wantDefinition: "A service that routes requests.",
		},
		{
			name:           "html stripped",
			phrase:         "<b>cache</b>",
			definition:     "stores <i>recently used</i> data for fast access",
			wantPhrase:     "Cache",
			wantDefinition: "Stores recently used data for fast access.",
		},
		{
			name:           "whitespace collapsed",
			phrase:         "load   balancer",
			definition:     "distributes   traffic across servers",
			wantPhrase:     "Load Balancer",
			wantDefinition: "Distributes traffic across servers.",
		},
		{
			name:           "existing punctuation preserved",
			phrase:         "REST",
			definition:     "Representational State Transfer!",
			wantPhrase:     "REST",
			wantDefinition: "Representational State Transfer!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := glossary.NewNormalizer(glossary.StrictProfile())
			term, ok := n.Normalize(tt.phrase, tt.definition, nil)
			require.True(t, ok)
			assert.Equal(t, tt.wantPhrase, term.Phrase)
			assert.Equal(t, tt.wantDefinition, term.Definition)
		})
	}
}

func TestNormalizeStrictRejections(t *testing.T) {
	tests := []struct {
		name       string
		phrase     string
		definition string
	}{
		{"empty phrase", "", "a perfectly good definition"},
		{"none literal phrase", "None", "a perfectly good definition"},
		{"empty definition", "API", ""},
		{"definition too short", "API", "tiny"},
		{"phrase too long", strings.Repeat("a", 120), "a perfectly good definition"},
		{"too many words", "one two three four five six seven eight nine ten eleven", "a perfectly good definition"},
		{"invalid characters", "café term", "a perfectly good definition"},
		{"definition too long", "API", strings.Repeat("x", 600)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := glossary.NewNormalizer(glossary.StrictProfile())
			term, ok := n.Normalize(tt.phrase, tt.definition, nil)
			assert.False(t, ok)
			assert.Nil(t, term)

			report := n.Report()
			assert.Equal(t, 1, report.RejectedCount)
			assert.Equal(t, 0, report.CleanedCount)
			assert.NotEmpty(t, report.Errors)
		})
	}
}

func TestNormalizeStrictTerminalPunctuation(t *testing.T) {
	// Accepted definitions always end in ., !, or ?
	n := glossary.NewNormalizer(glossary.StrictProfile())
	inputs := [][2]string{
		{"API", "Application Programming Interface"},
		{"REST", "an architectural style?"},
		{"Cache", "fast storage!"},
	}

	for _, in := range inputs {
		term, ok := n.Normalize(in[0], in[1], nil)
		require.True(t, ok)
		last := term.Definition[len(term.Definition)-1]
		assert.Contains(t, []byte{'.', '!', '?'}, last)
	}
}

func TestNormalizePermissive(t *testing.T) {
	t.Run("trims only", func(t *testing.T) {
		n := glossary.NewNormalizer(glossary.PermissiveProfile())
		term, ok := n.Normalize("  api gateway  ", "  lower case stays  ", nil)
		require.True(t, ok)
		assert.Equal(t, "api gateway", term.Phrase)
		assert.Equal(t, "lower case stays", term.Definition)
	})

	t.Run("definition optional", func(t *testing.T) {
		n := glossary.NewNormalizer(glossary.PermissiveProfile())
		term, ok := n.Normalize("API", "", nil)
		require.True(t, ok)
		assert.Empty(t, term.Definition)
	})

	t.Run("phrase still required", func(t *testing.T) {
		n := glossary.NewNormalizer(glossary.PermissiveProfile())
		_, ok := n.Normalize("   ", "something", nil)
		assert.False(t, ok)
	})

	t.Run("no length limits", func(t *testing.T) {
		n := glossary.NewNormalizer(glossary.PermissiveProfile())
		long := strings.Repeat("word ", 50)
		_, ok := n.Normalize(long, strings.Repeat("x", 1000), nil)
		assert.True(t, ok)
	})
}

func TestNormalizeMetadataPassthrough(t *testing.T) {
	n := glossary.NewNormalizer(glossary.PermissiveProfile())
	meta := map[string]any{"source": "terms.csv", "row": 3}
	term, ok := n.Normalize("API", "def", meta)
	require.True(t, ok)
	assert.Equal(t, meta, term.Metadata)
}

func TestReport(t *testing.T) {
	n := glossary.NewNormalizer(glossary.StrictProfile())

	_, ok := n.Normalize("API", "Application Programming Interface", nil)
	require.True(t, ok)
	_, ok = n.Normalize("", "rejected because phrase missing", nil)
	require.False(t, ok)

	report := n.Report()
	assert.Equal(t, 1, report.CleanedCount)
	assert.Equal(t, 1, report.RejectedCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.InDelta(t, 0.5, report.SuccessRate, 0.001)
}

func TestReportErrorCap(t *testing.T) {
	n := glossary.NewNormalizer(glossary.StrictProfile())
	for range 15 {
		n.Normalize("", "some definition text here", nil)
	}

	report := n.Report()
	assert.Equal(t, 15, report.RejectedCount)
	assert.Equal(t, 15, report.ErrorCount)
	assert.Len(t, report.Errors, 10)
}

func TestReportMerge(t *testing.T) {
	a := glossary.Report{CleanedCount: 3, RejectedCount: 1, ErrorCount: 1, Errors: []string{"x"}}
	b := glossary.Report{CleanedCount: 1, RejectedCount: 1, ErrorCount: 1, Errors: []string{"y"}}

	merged := a.Merge(b)
	assert.Equal(t, 4, merged.CleanedCount)
	assert.Equal(t, 2, merged.RejectedCount)
	assert.Equal(t, 2, merged.ErrorCount)
	assert.Equal(t, []string{"x", "y"}, merged.Errors)
	assert.InDelta(t, 4.0/6.0, merged.SuccessRate, 0.001)
}
