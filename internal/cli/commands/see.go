package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jet/internal/aggregate"
	"jet/internal/domain"
	"jet/internal/report"
	"jet/internal/selection"
	"jet/internal/storage"
	"jet/internal/ui"
)

// SeeCommand handles the see command
type SeeCommand struct {
	env *Env
	// chooser and renderer override the interactive ones of env
	chooser  selection.Chooser
	renderer report.Renderer
}

// NewSeeCommand creates a new SeeCommand
func NewSeeCommand(env *Env) *SeeCommand {
	return &SeeCommand{env: env}
}

// Execute runs the command
func (sc *SeeCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := sc.env.Config
	formatter := sc.env.Formatter()

	record, err := storage.NewJSONStorage(cfg).Load()
	if err != nil {
		return err
	}

	entries := aggregate.Entries(record.Summary)
	if len(record.Diagnostics) == 0 {
		formatter.Success("All tests passed")
		formatter.Summary(entries)
		return nil
	}

	assembler := report.Assembler{Buffer: cfg.Buffer, TextWidth: cfg.TextWidth}

	if cfg.Flags.Plain || !sc.env.Interactive {
		renderer := sc.renderer
		if renderer == nil {
			renderer = ui.NewPlainRenderer(sc.env.Stdout, sc.env.Palette(), cfg.Flags.Plain || color.NoColor)
		}
		formatter.Summary(entries)
		for _, diag := range record.Diagnostics {
			if err := renderer.Render(assembler.Assemble(diag), cfg.DocWidth); err != nil {
				return err
			}
		}
		return nil
	}

	chooser := sc.chooser
	if chooser == nil {
		chooser = ui.NewChooser(sc.env.Palette(), cfg.DocWidth)
	}
	renderer := sc.renderer
	if renderer == nil {
		renderer = ui.NewPager(sc.env.Palette())
	}

	items := diagnosticItems(record.Diagnostics)
	title := aggregate.Render(entries, func(e aggregate.Entry, text string) string { return text })
	for {
		sel, err := chooser.Choose(title, items, selection.One)
		if err != nil {
			return fmt.Errorf("failed to select a failure: %w", err)
		}
		chosen := selection.Apply(record.Diagnostics, sel)
		if len(chosen) == 0 {
			return nil
		}
		if err := renderer.Render(assembler.Assemble(chosen[0]), cfg.DocWidth); err != nil {
			return err
		}
	}
}

// diagnosticItems lists diagnostics as "[Kind] unit > test" with the description
// as preview
func diagnosticItems(diags []domain.Diagnostic) []selection.Item {
	items := make([]selection.Item, len(diags))
	for i, d := range diags {
		items[i] = selection.Item{
			Title:       fmt.Sprintf("[%s] %s > %s", d.Kind, d.UnitName, d.TestName),
			Description: d.Description,
		}
	}
	return items
}
