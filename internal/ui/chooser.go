package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jet/internal/selection"
)

const (
	uncheckedPrefix = "[ ] "
	checkedPrefix   = "[✓] "

	descriptionLength = 200
	allDescription    = "Select every entry"
)

// Chooser lets the user pick items in an interactive list with a preview pane
type Chooser struct {
	palette   Palette
	textWidth int
}

// NewChooser creates a new Chooser wrapping descriptions at textWidth
func NewChooser(palette Palette, textWidth int) *Chooser {
	return &Chooser{palette: palette, textWidth: textWidth}
}

// Choose implements selection.Chooser. Leaving with Esc or q chooses nothing.
func (c *Chooser) Choose(title string, items []selection.Item, limit selection.Limit) (selection.Selection, error) {
	if len(items) == 0 {
		return selection.Selection{}, nil
	}

	state := newChoiceState(items, limit)
	result := selection.Selection{}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for row := 0; row < state.rows(); row++ {
		list.AddItem(state.label(row), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.GetColor(c.palette.AccentTag()))

	previewView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	previewContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(previewView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	// List on the left (1/3), preview on the right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(previewContainer, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		help := "enter select"
		if !limit.Single() {
			help = "space toggle • enter confirm"
		}
		headerView.SetText(fmt.Sprintf("[white:%s:b] %s [-:-:-]  [gray]%d entries • ↑/↓ navigate • %s • esc quit",
			c.palette.AccentTag(), tview.Escape(title), len(items), help))
	}
	updateHeader()

	updatePreview := func(row int) {
		previewView.SetText(state.preview(row, c.textWidth))
	}
	updatePreview(0)

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updatePreview(index)
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			result = state.confirm(list.GetCurrentItem())
			app.Stop()
			return nil
		case tcell.KeyEsc, tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ' ':
				row := list.GetCurrentItem()
				if state.toggle(row) {
					list.SetItemText(row, state.label(row), "")
				}
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return selection.Selection{}, fmt.Errorf("failed to run chooser: %w", err)
	}
	return result, nil
}

// choiceState tracks the checked rows of a chooser. Multi-choice lists start with
// an All row.
type choiceState struct {
	items   []selection.Item
	limit   selection.Limit
	withAll bool
	checked map[int]bool
}

func newChoiceState(items []selection.Item, limit selection.Limit) *choiceState {
	return &choiceState{
		items:   items,
		limit:   limit,
		withAll: limit.Max() == 0,
		checked: make(map[int]bool),
	}
}

func (s *choiceState) rows() int {
	if s.withAll {
		return len(s.items) + 1
	}
	return len(s.items)
}

// item returns the item index of row, -1 for the All row
func (s *choiceState) item(row int) int {
	if s.withAll {
		return row - 1
	}
	return row
}

func (s *choiceState) label(row int) string {
	title := selection.AllTitle
	if i := s.item(row); i >= 0 {
		title = s.items[i].Title
	}
	if s.limit.Single() {
		return tview.Escape(title)
	}
	prefix := uncheckedPrefix
	if s.checked[row] {
		prefix = checkedPrefix
	}
	return tview.Escape(prefix + title)
}

func (s *choiceState) preview(row int, width int) string {
	i := s.item(row)
	if i < 0 {
		return fmt.Sprintf("[::b]%s[::-]\n\n[::d]%s[::-]", selection.AllTitle, allDescription)
	}
	item := s.items[i]
	return fmt.Sprintf("[::b]%s[::-]\n\n[::d]%s[::-]",
		tview.Escape(item.Title),
		tview.Escape(selection.Describe(item.Description, descriptionLength, width)))
}

// toggle flips row. It refuses to check more items than the limit allows.
func (s *choiceState) toggle(row int) bool {
	if row < 0 || row >= s.rows() || s.limit.Single() {
		return false
	}
	if s.checked[row] {
		delete(s.checked, row)
		return true
	}
	if s.item(row) >= 0 && !s.limit.Allows(s.countItems()+1) {
		return false
	}
	s.checked[row] = true
	return true
}

func (s *choiceState) countItems() int {
	n := 0
	for row := range s.checked {
		if s.item(row) >= 0 {
			n++
		}
	}
	return n
}

// confirm builds the selection. Without checked rows the current row is chosen.
func (s *choiceState) confirm(current int) selection.Selection {
	if current < 0 || current >= s.rows() {
		return selection.Selection{}
	}
	if s.limit.Single() || len(s.checked) == 0 {
		if i := s.item(current); i >= 0 {
			return selection.Selection{Indices: []int{i}}
		}
		return selection.Selection{All: true}
	}
	if s.withAll && s.checked[0] {
		return selection.Selection{All: true}
	}

	var indices []int
	for row := range s.checked {
		indices = append(indices, s.item(row))
	}
	sort.Ints(indices)
	return selection.Selection{Indices: indices}
}
