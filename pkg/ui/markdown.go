package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders content with glamour, falling back to the raw
// markdown when the renderer cannot be built. width 0 keeps glamour's default.
func RenderMarkdown(content string, width int) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
