// Package render formats assistant replies for terminal display.
package render

import "github.com/charmbracelet/glamour"

var renderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to plain text if the renderer cannot be built.
		return
	}
	renderer = r
}

// Markdown renders content as terminal markdown. Returns the input unchanged
// when rendering is unavailable or fails.
func Markdown(content string) string {
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
