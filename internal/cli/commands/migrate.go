package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jet/internal/migration"
	"jet/internal/storage"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	env *Env
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(env *Env) *MigrateCommand {
	return &MigrateCommand{env: env}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := mc.env.Config
	formatter := mc.env.Formatter()

	created, err := migration.NewDatabaseManager(cfg).EnsureDatabase(ctx)
	if err != nil {
		return err
	}
	if created {
		formatter.Success("Created database %s", cfg.Database.Name)
	}

	archive, err := storage.OpenArchive(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	migrator := migration.NewSchemaMigrator(archive.DB(), archive.Driver(), mc.env.Stdout, mc.env.Logger)
	pending, err := migrator.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		formatter.Success("History archive is up to date")
		return nil
	}

	mc.env.Logger.Debug("migrating history archive",
		zap.String("driver", archive.Driver()),
		zap.Int("pending", len(pending)))
	return migrator.Run(ctx)
}
