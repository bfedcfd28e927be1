package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jet/internal/report"
)

// Pager shows a report in a scrollable full screen view
type Pager struct {
	palette Palette
}

// NewPager creates a new Pager
func NewPager(palette Palette) *Pager {
	return &Pager{palette: palette}
}

// Render implements report.Renderer. It blocks until the user quits the pager.
func (p *Pager) Render(blocks []report.Block, width int) error {
	if len(blocks) == 0 {
		return nil
	}

	app := tview.NewApplication()
	kind := blocks[0].Style

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true).
		SetText(p.Format(blocks))
	view.SetBorder(true).
		SetBorderColor(tcell.GetColor(p.palette.Tag(kind))).
		SetTitle(fmt.Sprintf(" %s ", blocks[0].Title))

	help := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("[gray]↑/↓ scroll • q quit")

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(view, 0, 1, true).
		AddItem(help, 1, 0, false)

	// Center the report within width columns
	layout := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(tview.NewBox(), 0, 1, false).
		AddItem(content, width, 0, true).
		AddItem(tview.NewBox(), 0, 1, false)

	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' || event.Rune() == 'Q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	if err := app.SetRoot(layout, true).SetFocus(view).Run(); err != nil {
		return fmt.Errorf("failed to run pager: %w", err)
	}
	return nil
}

// Format returns the blocks as text with tview color tags
func (p *Pager) Format(blocks []report.Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		kind := p.palette.Tag(block.Style)

		switch block.Type {
		case report.HeadlineBlock:
			fmt.Fprintf(&b, "[white:%s:b] %s [-:-:-]", kind, tview.Escape(block.Title))
			if block.Body != "" {
				fmt.Fprintf(&b, "\n\n[%s::d]%s[-::-]", kind, tview.Escape(block.Body))
			}

		case report.ObservationBlock:
			fmt.Fprintf(&b, "%s[::d]%s[::-]", tview.Escape(block.Title), tview.Escape(block.Body))

		case report.OutputBlock:
			fmt.Fprintf(&b, "[::b]%s[::-]\n%s", tview.Escape(block.Title), tview.TranslateANSI(tview.Escape(block.Body)))

		case report.SourceBlock:
			fmt.Fprintf(&b, "[%s::b]%s[-::-]\n", p.palette.AccentTag(), tview.Escape(block.Title))
			if block.Unavailable || len(block.Lines) == 0 {
				fmt.Fprintf(&b, "[::d]source unavailable: %s[::-]", tview.Escape(block.Body))
				continue
			}
			digits := len(fmt.Sprint(block.Lines[len(block.Lines)-1].Number))
			for j, l := range block.Lines {
				if j > 0 {
					b.WriteString("\n")
				}
				text := tview.Escape(fmt.Sprintf("%*d │ %s", digits, l.Number, expandTabs(l.Text)))
				if l.Failing {
					fmt.Fprintf(&b, "[white:%s:b]%s[-:-:-]", kind, text)
				} else {
					fmt.Fprintf(&b, "[::d]%s[::-]", text)
				}
			}

		case report.LocalsBlock:
			fmt.Fprintf(&b, "[%s::b]%s[-::-]", p.palette.AccentTag(), tview.Escape(block.Title))
			for _, l := range block.Lines {
				fmt.Fprintf(&b, "\n[::d]%s[::-]", tview.Escape(l.Text))
			}
		}
	}
	return b.String()
}
