// Package selection describes how the user picks units and diagnostics. The
// interactive implementation lives in the ui package.
package selection

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// AllTitle is the title of the entry that stands for every item
const AllTitle = "All"

// Item is one choice
type Item struct {
	Title       string
	Description string
}

// Limit caps how many items may be chosen. The zero value is Unlimited.
type Limit struct {
	n int
}

var (
	// One allows a single item
	One = Limit{n: 1}
	// Unlimited allows any number of items
	Unlimited = Limit{}
)

// Many allows at most n items
func Many(n int) Limit {
	if n <= 0 {
		return Unlimited
	}
	return Limit{n: n}
}

// Max returns the cap, 0 when unlimited
func (l Limit) Max() int {
	return l.n
}

// Single reports whether at most one item may be chosen
func (l Limit) Single() bool {
	return l.n == 1
}

// Allows reports whether count chosen items fit the limit
func (l Limit) Allows(count int) bool {
	return l.n == 0 || count <= l.n
}

// Selection is the result of a choice. Nothing chosen and All chosen are distinct.
type Selection struct {
	All     bool
	Indices []int
}

// None reports whether nothing was chosen
func (s Selection) None() bool {
	return !s.All && len(s.Indices) == 0
}

// Chooser asks the user to pick from items. Unlimited choosers offer an extra
// All entry, which is reported as Selection.All.
type Chooser interface {
	Choose(title string, items []Item, limit Limit) (Selection, error)
}

// AllChooser picks every item without asking
type AllChooser struct{}

// Choose implements Chooser
func (AllChooser) Choose(_ string, items []Item, limit Limit) (Selection, error) {
	if len(items) == 0 {
		return Selection{}, nil
	}
	if limit.Max() == 0 {
		return Selection{All: true}, nil
	}
	n := min(limit.Max(), len(items))
	sel := Selection{Indices: make([]int, n)}
	for i := range sel.Indices {
		sel.Indices[i] = i
	}
	return sel, nil
}

// Apply returns the values picked by sel, in their original order. values must
// be parallel to the items that were offered.
func Apply[T any](values []T, sel Selection) []T {
	if sel.All {
		return values
	}
	out := make([]T, 0, len(sel.Indices))
	seen := make(map[int]bool, len(sel.Indices))
	for i := range values {
		for _, idx := range sel.Indices {
			if idx == i && !seen[i] {
				seen[i] = true
				out = append(out, values[i])
			}
		}
	}
	return out
}

// Describe flattens a description to one paragraph, truncates it to maxLength
// runes and wraps it at width.
func Describe(desc string, maxLength, width int) string {
	if strings.TrimSpace(desc) == "" {
		return "..."
	}
	desc = strings.Join(strings.Fields(desc), " ")
	if runes := []rune(desc); maxLength > 3 && len(runes) > maxLength {
		desc = string(runes[:maxLength-3]) + "..."
	}
	if width > 0 {
		desc = wordwrap.String(desc, width)
	}
	return desc
}
