package slugs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"simple", "GPT-4", DefaultMaxLength, "gpt-4"},
		{"spaces and dots", "Claude 3.5 Sonnet", DefaultMaxLength, "claude-35-sonnet"},
		{"underscores", "my_cool_tool", DefaultMaxLength, "my-cool-tool"},
		{"diacritics folded", "Café Münchner", DefaultMaxLength, "cafe-munchner"},
		{"punctuation stripped", "What?! A (tool)", DefaultMaxLength, "what-a-tool"},
		{"hyphen runs collapsed", "a -- b --- c", DefaultMaxLength, "a-b-c"},
		{"leading trailing hyphens", "--edgy--", DefaultMaxLength, "edgy"},
		{"empty", "", DefaultMaxLength, ""},
		{"only symbols", "!!!", DefaultMaxLength, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.text, tt.max))
		})
	}
}

func TestDerive_TruncatesAtHyphenBoundary(t *testing.T) {
	// 20-char cap, last hyphen inside the cut falls past 70% of the cap,
	// so the final partial token is dropped.
	got := Derive("alpha beta gamma delta epsilon", 20)
	assert.Equal(t, "alpha-beta-gamma", got)
	assert.LessOrEqual(t, len(got), 20)
}

func TestDerive_HardTruncateWithoutNearbyHyphen(t *testing.T) {
	// No hyphen past 70% of the cap: keep the hard cut.
	got := Derive("supercalifragilisticexpialidocious", 20)
	assert.Equal(t, "supercalifragilistic", got)
	assert.Len(t, got, 20)
}

func TestForTool(t *testing.T) {
	tests := []struct {
		name          string
		toolName      string
		vendor        string
		disambiguator string
		want          string
	}{
		{"plain name", "GPT-4", "", "", "gpt-4"},
		{"vendor already prefixed", "GitHub Copilot", "GitHub", "", "github-copilot"},
		{"vendor prepended", "Copilot", "GitHub", "", "github-copilot"},
		{"stopwords dropped", "The AI Tool for Coding", "", "", "coding"},
		{"all stopwords kept", "AI Tools", "", "", "ai-tools"},
		{"disambiguator appended", "Assistant", "", "Mobile", "assistant-mobile"},
		{"empty name falls back to disambiguator", "", "", "Widget-Cloud", "widget-cloud"},
		{"empty name falls back to vendor", "", "Acme", "", "acme"},
		{"everything empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForTool(tt.toolName, tt.vendor, tt.disambiguator))
		})
	}
}

func TestForTool_DisambiguatorBaseNotDuplicated(t *testing.T) {
	// When the disambiguator already served as the base it must not be
	// appended a second time.
	got := ForTool("", "", "Widget-Cloud")
	assert.Equal(t, "widget-cloud", got)
}

func TestForPair(t *testing.T) {
	assert.Equal(t, "gpt-4-vs-claude", ForPair("gpt-4", "claude"))
}
