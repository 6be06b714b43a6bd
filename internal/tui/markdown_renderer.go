package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minDescriptionWidth keeps narrow detail panes readable.
const minDescriptionWidth = 24

// markdownRenderer renders task descriptions for the focus detail pane. The
// glamour renderer is rebuilt only when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts a markdown description into ANSI text wrapped at width. On any
// renderer failure the raw description is returned.
func (r *markdownRenderer) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" || r == nil {
		return description
	}

	wrap := max(width, minDescriptionWidth)
	if r.renderer == nil || r.width != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return description
		}
		r.renderer = renderer
		r.width = wrap
	}

	rendered, err := r.renderer.Render(description)
	if err != nil {
		return description
	}
	return strings.Trim(rendered, "\n")
}
