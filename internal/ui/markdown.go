package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRenderer     *glamour.TermRenderer
	mdRendererOnce sync.Once
	mdRendererErr  error
)

func markdownRenderer() (*glamour.TermRenderer, error) {
	mdRendererOnce.Do(func() {
		mdRenderer, mdRendererErr = glamour.NewTermRenderer(
			glamour.WithStyles(styles.DarkStyleConfig),
			glamour.WithWordWrap(72),
		)
	})
	return mdRenderer, mdRendererErr
}

// RenderMarkdown renders markdown for the terminal. On failure the source
// text is returned unchanged so a screen is never blank.
func RenderMarkdown(content string) string {
	r, err := markdownRenderer()
	if err != nil || r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}
