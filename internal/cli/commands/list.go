package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"jet/internal/discovery"
	"jet/internal/domain"
	"jet/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	env    *Env
	filter *discovery.Filter
}

// NewListCommand creates a new ListCommand
func NewListCommand(env *Env) *ListCommand {
	return &ListCommand{env: env, filter: discovery.NewFilter()}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.env.Config

	paths, err := discovery.NewScanner(cfg.PathsToIgnore).Scan(cfg.GetTestPath())
	if err != nil {
		return err
	}
	paths = lc.filter.FilterByName(paths, cfg.Flags.Filter)

	if len(paths) == 0 {
		lc.env.Palette().Kind(domain.KindWarning).Fprintln(lc.env.Stdout, "No test units found")
		return nil
	}

	listings := describeUnits(paths, lc.env.Logger)
	if !cfg.Flags.ListDocs {
		lc.env.Formatter().PrintUnitList(listings, cfg.Flags.ListTests)
		return nil
	}

	renderer, err := ui.NewDocRenderer(cfg.DocWidth, cfg.Flags.Plain || !lc.env.Interactive)
	if err != nil {
		return err
	}
	out, err := renderer.Render(listings)
	if err != nil {
		return fmt.Errorf("failed to render docs: %w", err)
	}
	_, err = fmt.Fprint(lc.env.Stdout, out)
	return err
}
