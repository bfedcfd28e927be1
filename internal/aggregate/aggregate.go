// Package aggregate accumulates test outcomes into run counters, the ordered list of
// diagnostics and the summary line.
package aggregate

import (
	"fmt"
	"strings"

	"jet/internal/domain"
)

// Entry is one element of the summary line. Style is the key a renderer uses to color it.
type Entry struct {
	Kind  domain.Kind
	Count int
	Style string
}

// Aggregator accumulates outcomes in the order they are added
type Aggregator struct {
	summary     domain.RunSummary
	diagnostics []domain.Diagnostic
}

// New creates an empty Aggregator
func New() *Aggregator {
	return &Aggregator{}
}

// Add counts outcome and keeps its diagnostic when it did not pass
func (a *Aggregator) Add(outcome domain.Outcome) {
	a.summary.Add(outcome.Kind)
	if outcome.Kind != domain.KindPass && outcome.Diagnostic != nil {
		a.diagnostics = append(a.diagnostics, *outcome.Diagnostic)
	}
}

// Merge adds the counters of other and appends its diagnostics after the current ones
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	a.summary.Merge(other.summary)
	a.diagnostics = append(a.diagnostics, other.diagnostics...)
}

// Summary returns the counters accumulated so far
func (a *Aggregator) Summary() domain.RunSummary {
	return a.summary
}

// Diagnostics returns the diagnostics of non-passing outcomes in the order they were added
func (a *Aggregator) Diagnostics() []domain.Diagnostic {
	out := make([]domain.Diagnostic, len(a.diagnostics))
	copy(out, a.diagnostics)
	return out
}

// Line lists the kinds with a nonzero count. Without an explicit order the kinds
// appear as Pass, Failed, Warning, Error.
func (a *Aggregator) Line(order ...domain.Kind) []Entry {
	return Entries(a.summary, order...)
}

// Entries builds the summary line of a stored summary
func Entries(summary domain.RunSummary, order ...domain.Kind) []Entry {
	if len(order) == 0 {
		order = domain.SummaryOrder
	}

	var entries []Entry
	for _, kind := range order {
		n := summary.Count(kind)
		if n == 0 {
			continue
		}
		entries = append(entries, Entry{Kind: kind, Count: n, Style: StyleKey(kind)})
	}
	return entries
}

// String renders the summary line without styling, e.g. "JET: 2 pass, 1 failed"
func (a *Aggregator) String() string {
	return Render(a.Line(), func(e Entry, text string) string { return text })
}

// Record builds the persisted form of the run
func (a *Aggregator) Record(meta domain.RunMeta) domain.ResultRecord {
	return domain.ResultRecord{
		Summary:     a.summary,
		Diagnostics: a.Diagnostics(),
		Meta:        meta,
	}
}

// StyleKey is the style key of kind
func StyleKey(kind domain.Kind) string {
	return strings.ToLower(string(kind))
}

// Render joins entries into a summary line, passing each "<count> <kind>" part
// through style.
func Render(entries []Entry, style func(Entry, string) string) string {
	if len(entries) == 0 {
		return "JET"
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, style(e, fmt.Sprintf("%d %s", e.Count, strings.ToLower(string(e.Kind)))))
	}
	return "JET: " + strings.Join(parts, ", ")
}
