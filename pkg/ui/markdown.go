package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders content for a terminal with glamour. Any format
// other than FormatTerminal, or a glamour failure, returns content as is.
func RenderMarkdown(content string, format Format, width int) string {
	if format != FormatTerminal {
		return content
	}

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
