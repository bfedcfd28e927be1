package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"jet/internal/aggregate"
	"jet/internal/discovery"
	"jet/internal/domain"
)

// Status symbols per outcome kind
const (
	symbolPass    = "✓"
	symbolFailed  = "✗"
	symbolWarning = "?"
	symbolError   = "!"
)

// Listing describes one unit for the list command
type Listing struct {
	Name  string
	Doc   string
	Path  string
	Tests []TestListing
}

// TestListing describes one test of a unit
type TestListing struct {
	Name string
	Doc  string
}

// Formatter formats and displays run output
type Formatter struct {
	palette     Palette
	out         io.Writer
	projectPath string
}

// NewFormatter creates a new Formatter writing to out. Paths are shown relative
// to projectPath.
func NewFormatter(palette Palette, out io.Writer, projectPath string) *Formatter {
	return &Formatter{palette: palette, out: out, projectPath: projectPath}
}

// Symbol returns the status symbol of kind
func Symbol(kind domain.Kind) string {
	switch kind {
	case domain.KindPass:
		return symbolPass
	case domain.KindFailed:
		return symbolFailed
	case domain.KindWarning:
		return symbolWarning
	default:
		return symbolError
	}
}

// StatusLine prints one line for a completed test: the symbol and the test doc,
// or the failure description when the test did not pass.
func (f *Formatter) StatusLine(outcome domain.Outcome) {
	text := outcome.Doc
	if d := outcome.Diagnostic; d != nil && d.Description != "" {
		text = d.Description
	}
	fmt.Fprintf(f.out, "%s %s\n", f.palette.Kind(outcome.Kind).Sprint(Symbol(outcome.Kind)), text)
}

// Summary prints the summary line, each kind in its own color. Nothing is
// printed when no test ran.
func (f *Formatter) Summary(entries []aggregate.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(f.out, f.SummaryText(entries))
}

// SummaryText returns the colored summary line
func (f *Formatter) SummaryText(entries []aggregate.Entry) string {
	return aggregate.Render(entries, func(e aggregate.Entry, text string) string {
		return f.palette.Kind(e.Kind).Sprint(text)
	})
}

// Banner prints a title on the background accent
func (f *Formatter) Banner(title string) {
	fmt.Fprintf(f.out, "\n%s\n\n", f.palette.Banner().Sprintf(" %s ", title))
}

// Info prints a line in the foreground accent
func (f *Formatter) Info(format string, args ...any) {
	f.palette.Accent().Fprintf(f.out, format+"\n", args...)
}

// Success prints a line prefixed with the pass symbol
func (f *Formatter) Success(format string, args ...any) {
	f.palette.Kind(domain.KindPass).Fprintf(f.out, symbolPass+" "+format+"\n", args...)
}

// LoadErrors prints the units that could not be loaded
func (f *Formatter) LoadErrors(errs []*discovery.LoadError) {
	if len(errs) == 0 {
		return
	}
	c := f.palette.Kind(domain.KindError)
	c.Fprintf(f.out, "%s %d unit(s) could not be loaded:\n", symbolError, len(errs))
	for _, err := range errs {
		fmt.Fprintf(f.out, "  %s %s\n", c.Sprint(f.relative(err.Path)), color.New(color.Faint).Sprint(err.Err))
	}
}

// PrintUnitList prints units as a tree, optionally with their tests
func (f *Formatter) PrintUnitList(units []Listing, showTests bool) {
	if len(units) == 0 {
		f.palette.Kind(domain.KindWarning).Fprintln(f.out, "No test units found")
		return
	}

	f.palette.Kind(domain.KindPass).Fprintf(f.out, "Found %d unit(s):\n\n", len(units))
	faint := color.New(color.Faint)
	accent := f.palette.Accent()

	for i, unit := range units {
		isLastUnit := i == len(units)-1
		branch, indent := "├── ", "│   "
		if isLastUnit {
			branch, indent = "└── ", "    "
		}

		fmt.Fprintf(f.out, "%s%s %s\n", branch, accent.Sprint(unit.Name), faint.Sprintf("(%s)", f.relative(unit.Path)))

		if !showTests {
			continue
		}
		if len(unit.Tests) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, f.palette.Kind(domain.KindError).Sprint("(no tests found)"))
			continue
		}
		for j, test := range unit.Tests {
			prefix := "├── "
			if j == len(unit.Tests)-1 {
				prefix = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, prefix, test.Name)
		}
	}
}

func (f *Formatter) relative(path string) string {
	if f.projectPath == "" {
		return path
	}
	if rel, err := filepath.Rel(f.projectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// FailureTree prints the tests that did not pass grouped by unit, units in the
// order they first failed
func (f *Formatter) FailureTree(diags []domain.Diagnostic) {
	if len(diags) == 0 {
		return
	}

	var order []string
	byUnit := make(map[string][]domain.Diagnostic)
	for _, d := range diags {
		if _, ok := byUnit[d.UnitPath]; !ok {
			order = append(order, d.UnitPath)
		}
		byUnit[d.UnitPath] = append(byUnit[d.UnitPath], d)
	}

	fmt.Fprintln(f.out)
	for i, path := range order {
		branch, indent := "├── ", "│   "
		if i == len(order)-1 {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintf(f.out, "%s%s\n", branch, f.palette.Accent().Sprint(f.relative(path)))

		failed := byUnit[path]
		for j, d := range failed {
			prefix := "├── "
			if j == len(failed)-1 {
				prefix = "└── "
			}
			c := f.palette.Kind(d.Kind)
			fmt.Fprintf(f.out, "%s%s%s %s\n", indent, prefix, c.Sprint(Symbol(d.Kind)), c.Sprint(d.TestName))
		}
	}
}
