package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"jet/internal/domain"
	"jet/internal/storage"
)

// HistoryTable prints archived runs, newest first
func HistoryTable(out io.Writer, runs []storage.RunEntry, plain bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Run history (%d)", len(runs)))

	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Workers", "Tests", "Pass", "Failed", "Warning", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Run", WidthMax: 36},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Workers", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Pass", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Warning", Align: text.AlignRight},
		{Name: "Error", Align: text.AlignRight},
	})

	var total domain.RunSummary
	for _, run := range runs {
		s := run.Summary
		total.Merge(s)
		t.AppendRow(table.Row{
			run.Meta.RunID,
			run.Meta.Timestamp,
			formatDuration(run.Meta.DurationSeconds),
			run.Meta.Workers,
			s.NTests, s.Pass, s.Failed, s.Warning, s.Error,
		})
	}

	t.AppendFooter(table.Row{"TOTAL", "", "", "", total.NTests, total.Pass, total.Failed, total.Warning, total.Error})

	switch {
	case plain:
		t.SetStyle(table.StyleLight)
	case total.Failed+total.Error > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case total.Warning > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()
}

// DiagnosticTable prints the archived diagnostics of one run
func DiagnosticTable(out io.Writer, runID string, diags []domain.Diagnostic) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Run %s", runID))
	t.AppendHeader(table.Row{"#", "Kind", "Test", "Unit", "Alias", "Location", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Description", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, d := range diags {
		t.AppendRow(table.Row{
			i + 1,
			string(d.Kind),
			d.TestName,
			d.UnitName,
			d.AliasName,
			fmt.Sprintf("%s:%d", d.SourceFile, d.SourceLine),
			d.Description,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func formatDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}
