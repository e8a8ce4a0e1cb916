package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert web developer. You build complete, self-contained
single-page applications as a single HTML document with inline CSS and JavaScript.
Use Tailwind CSS utility classes for styling. Never use external build tooling.
Respond with the HTML document only, no explanations.`

// generatePrompt embeds the user's description into the fixed generation
// instruction template.
func generatePrompt(description string) string {
	return fmt.Sprintf(`Create a complete single-page web application based on this description:

%s

Requirements:
- One self-contained HTML document (inline <style> and <script>)
- Tailwind CSS via the CDN script tag
- Modern, clean visual design
- Fully working interactivity, no placeholders

Return only the HTML document.`, description)
}

// refinePrompt embeds the original prompt, the current document, and the
// user's refinement request. The model must return a complete replacement
// document, not a diff.
func refinePrompt(originalPrompt, currentCode, request string) string {
	return fmt.Sprintf(`You previously built a web application from this description:

%s

Here is the current HTML document:

%s

Apply this change request:

%s

Return the complete updated HTML document, not a diff or a fragment. Keep
everything that the change request does not touch.`, originalPrompt, currentCode, request)
}

// completionPrompt asks for a short inline continuation at the cursor.
func completionPrompt(context, before, after string) string {
	return fmt.Sprintf(`You are completing code inside an HTML document (%s).
Text before the cursor:
%s
Text after the cursor:
%s
Reply with only the short snippet that belongs at the cursor. No commentary, no fences.`, context, before, after)
}

// CleanResponse strips enclosing code-fence markup and surrounding whitespace
// from a model response.
func CleanResponse(s string) string {
	text := strings.TrimSpace(s)
	if strings.HasPrefix(text, "```") {
		// Drop the opening fence line, including any language tag.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = ""
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
