package llm

import (
	"strings"
	"testing"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain html untouched",
			input:    "<html><body>Hi</body></html>",
			expected: "<html><body>Hi</body></html>",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "\n\n  <html></html>  \n",
			expected: "<html></html>",
		},
		{
			name:     "fenced with language tag",
			input:    "```html\n<html></html>\n```",
			expected: "<html></html>",
		},
		{
			name:     "fenced without language tag",
			input:    "```\n<html></html>\n```",
			expected: "<html></html>",
		},
		{
			name:     "fence without closing marker",
			input:    "```html\n<html></html>",
			expected: "<html></html>",
		},
		{
			name:     "empty response",
			input:    "",
			expected: "",
		},
		{
			name:     "only a fence",
			input:    "```",
			expected: "",
		},
		{
			name:     "backticks inside content preserved",
			input:    "<html><code>`x`</code></html>",
			expected: "<html><code>`x`</code></html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanResponse(tt.input)
			if got != tt.expected {
				t.Errorf("CleanResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGeneratePromptEmbedsDescription(t *testing.T) {
	p := generatePrompt("Todo app with dark mode")
	if !strings.Contains(p, "Todo app with dark mode") {
		t.Errorf("Expected description embedded in prompt")
	}
	if !strings.Contains(p, "self-contained HTML") {
		t.Errorf("Expected self-contained-document instruction in prompt")
	}
}

func TestRefinePromptEmbedsAllInputs(t *testing.T) {
	p := refinePrompt("Todo app", "<html>A</html>", "make the button green")
	for _, want := range []string{"Todo app", "<html>A</html>", "make the button green"} {
		if !strings.Contains(p, want) {
			t.Errorf("Expected %q embedded in refine prompt", want)
		}
	}
	if !strings.Contains(p, "not a diff") {
		t.Errorf("Refine prompt must demand a complete replacement document")
	}
}
