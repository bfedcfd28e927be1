package commands

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jet/internal/migration"
	"jet/internal/storage"
	"jet/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	env *Env
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(env *Env) *HistoryCommand {
	return &HistoryCommand{env: env}
}

// Execute runs the command. With a run id it lists the failures of that run.
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := hc.env.Config

	archive, err := storage.OpenArchive(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := migration.NewSchemaMigrator(archive.DB(), archive.Driver(), io.Discard, hc.env.Logger).Run(ctx); err != nil {
		return err
	}

	if len(args) == 1 {
		diags, err := archive.Diagnostics(ctx, args[0])
		if err != nil {
			return err
		}
		ui.DiagnosticTable(hc.env.Stdout, args[0], diags)
		return nil
	}

	runs, err := archive.Runs(ctx, cfg.History.Limit)
	if err != nil {
		return err
	}
	ui.HistoryTable(hc.env.Stdout, runs, cfg.Flags.Plain || color.NoColor)
	return nil
}
