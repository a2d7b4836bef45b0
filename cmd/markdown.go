package cmd

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown converts Markdown to styled terminal output.
// Returns the original text if rendering fails.
func renderMarkdown(markdown string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // detect light/dark terminal
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		return markdown
	}

	// Trim trailing newlines added by glamour.
	return strings.TrimSuffix(rendered, "\n")
}
