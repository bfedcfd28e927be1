package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jet/internal/cli"
	"jet/internal/cli/commands"
	"jet/internal/config"
	"jet/internal/logging"
)

var version = "dev"

func main() {
	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	env := &commands.Env{
		Config:      config.New(),
		Logger:      zap.NewNop(),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd()),
	}

	// Create root command
	rootCmd := &cobra.Command{
		Use:           "jet",
		Short:         "Just Enough Testing",
		Long:          `A small test harness. Discovers test units, runs their tests, records failures with their source context and local variables, and lets you inspect them afterwards.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.ProjectPath, flags.ToConfigFlags())
			if err != nil {
				return err
			}
			logger, err := logging.New(flags.Verbose)
			if err != nil {
				return err
			}
			if flags.Plain {
				color.NoColor = true
			}

			env.Config = cfg
			env.Logger = logger
			logger.Debug("configuration loaded",
				zap.String("project", cfg.ProjectPath),
				zap.String("tests", cfg.GetTestPath()),
				zap.Int("workers", cfg.Workers),
				zap.String("history", cfg.History.Driver))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = env.Logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", "", "Project directory holding jet.yaml and .env")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log debug information")
	rootCmd.PersistentFlags().StringVar(&flags.PassColor, "pass-color", "", "Color of passed tests")
	rootCmd.PersistentFlags().StringVar(&flags.FailedColor, "failed-color", "", "Color of failed tests")
	rootCmd.PersistentFlags().StringVar(&flags.WarningColor, "warning-color", "", "Color of warnings")
	rootCmd.PersistentFlags().StringVar(&flags.ErrorColor, "error-color", "", "Color of errors")
	rootCmd.PersistentFlags().StringVar(&flags.Foreground, "foreground", "", "Accent foreground color")
	rootCmd.PersistentFlags().StringVar(&flags.Background, "background", "", "Accent background color")

	// Create commands with dependencies and register them
	commands.NewCommands(env).Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
