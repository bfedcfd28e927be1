package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// DocRenderer renders unit and test documentation as styled markdown
type DocRenderer struct {
	renderer *glamour.TermRenderer
}

// NewDocRenderer creates a DocRenderer wrapping at width. Plain output uses the
// ascii style so no escape codes are emitted.
func NewDocRenderer(width int, plain bool) (*DocRenderer, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("ascii")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create doc renderer: %w", err)
	}
	return &DocRenderer{renderer: renderer}, nil
}

// Render returns the documentation of units
func (r *DocRenderer) Render(units []Listing) (string, error) {
	return r.renderer.Render(Markdown(units))
}

// Markdown builds the markdown document describing units and their tests
func Markdown(units []Listing) string {
	var b strings.Builder
	for i, unit := range units {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "# %s\n\n", unit.Name)
		fmt.Fprintf(&b, "`%s`\n\n", unit.Path)
		if unit.Doc != "" {
			fmt.Fprintf(&b, "%s\n\n", unit.Doc)
		}
		for _, test := range unit.Tests {
			fmt.Fprintf(&b, "- **%s**", test.Name)
			if test.Doc != "" && test.Doc != test.Name {
				fmt.Fprintf(&b, ": %s", strings.Join(strings.Fields(test.Doc), " "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
