package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/lipgloss"

	"jet/internal/report"
)

// PlainRenderer writes report blocks straight to a writer, for terminals without
// a pager or when output is redirected.
type PlainRenderer struct {
	out       io.Writer
	palette   Palette
	colorless bool
}

// NewPlainRenderer creates a PlainRenderer. A colorless renderer strips every
// escape sequence, including those printed by the test itself.
func NewPlainRenderer(out io.Writer, palette Palette, colorless bool) *PlainRenderer {
	return &PlainRenderer{out: out, palette: palette, colorless: colorless}
}

// Render implements report.Renderer
func (r *PlainRenderer) Render(blocks []report.Block, width int) error {
	var sections []string
	for _, b := range blocks {
		sections = append(sections, r.block(b, width))
	}
	text := strings.Join(sections, "\n\n") + "\n"
	if r.colorless {
		text = stripansi.Strip(text)
	}
	_, err := io.WriteString(r.out, text)
	return err
}

func (r *PlainRenderer) block(b report.Block, width int) string {
	kind := r.palette.Lipgloss(b.Style)
	faint := lipgloss.NewStyle().Faint(true)

	switch b.Type {
	case report.HeadlineBlock:
		title := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(kind).
			Padding(0, 1).
			Render(b.Title)
		parts := []string{title}
		if b.Body != "" {
			parts = append(parts, "", faint.Foreground(kind).Render(b.Body))
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, parts...))

	case report.ObservationBlock:
		return b.Title + faint.Render(b.Body)

	case report.OutputBlock:
		return r.panel(b.Title, strings.TrimRight(b.Body, "\n"), lipgloss.Color("8"), width)

	case report.SourceBlock:
		if b.Unavailable || len(b.Lines) == 0 {
			return r.panel(b.Title, faint.Render("source unavailable: "+b.Body), kind, width)
		}
		digits := len(fmt.Sprint(b.Lines[len(b.Lines)-1].Number))
		failing := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(kind)
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			text := fmt.Sprintf("%*d │ %s", digits, l.Number, expandTabs(l.Text))
			if l.Failing {
				lines[i] = failing.Render(text)
			} else {
				lines[i] = faint.Render(text)
			}
		}
		return r.panel(b.Title, strings.Join(lines, "\n"), kind, width)

	case report.LocalsBlock:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = faint.Render(l.Text)
		}
		return r.panel(b.Title, strings.Join(lines, "\n"), r.palette.AccentLipgloss(), width)
	}
	return b.Body
}

// panel draws body in a rounded border with title above it
func (r *PlainRenderer) panel(title, body string, border lipgloss.Color, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		box = box.Width(width - 2)
	}
	heading := lipgloss.NewStyle().Bold(true).Foreground(border).Render(title)
	return lipgloss.JoinVertical(lipgloss.Left, heading, box.Render(body))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
