package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jet/internal/cli"
	"jet/internal/config"
	"jet/internal/discovery"
	"jet/internal/domain"
	"jet/internal/naming"
	"jet/internal/selection"
	"jet/internal/ui"
)

// Env is what every command works with. Config and Logger are filled in once
// flags are parsed, before any command runs.
type Env struct {
	Config      *config.Config
	Logger      *zap.Logger
	Stdout      io.Writer
	Stderr      io.Writer
	Interactive bool
}

// Palette returns the configured colors
func (e *Env) Palette() ui.Palette {
	return ui.NewPalette(e.Config.Colors)
}

// Formatter returns a formatter writing to Stdout
func (e *Env) Formatter() *ui.Formatter {
	return ui.NewFormatter(e.Palette(), e.Stdout, e.Config.ProjectPath)
}

// Chooser returns the interactive chooser, or one picking everything when the
// terminal is not interactive
func (e *Env) Chooser() selection.Chooser {
	if !e.Interactive {
		return selection.AllChooser{}
	}
	return ui.NewChooser(e.Palette(), e.Config.DocWidth)
}

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	See     *SeeCommand
	List    *ListCommand
	History *HistoryCommand
	Migrate *MigrateCommand
}

// NewCommands creates all commands sharing env
func NewCommands(env *Env) *Commands {
	return &Commands{
		Run:     NewRunCommand(env),
		See:     NewSeeCommand(env),
		List:    NewListCommand(env),
		History: NewHistoryCommand(env),
		Migrate: NewMigrateCommand(env),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run test units",
		Long:  "Discover test units, run their tests and record the outcome in jet.results.json",
		Args:  cobra.NoArgs,
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.TestPath, "dir", "d", "", "Directory holding the test units")
	runCmd.Flags().StringSliceVarP(&flags.Files, "files", "f", nil, "Unit files to run, relative to the test directory")
	runCmd.Flags().BoolVarP(&flags.RunAll, "all", "a", false, "Run every unit without asking")
	runCmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only show the progress bar and the summary")
	runCmd.Flags().BoolVarP(&flags.Percentage, "percentage", "p", false, "Show progress as a percentage instead of a count")
	runCmd.Flags().IntVarP(&flags.Workers, "workers", "j", 0, "Number of units run in parallel")
	runCmd.Flags().StringVar(&flags.Filter, "filter", "", "Filter units by file name pattern (e.g. 'test_array*' or '*verbose*')")
	runCmd.Flags().StringVarP(&flags.TestFilter, "test", "t", "", "Filter tests by name pattern")
	runCmd.Flags().BoolVar(&flags.LenientWarnings, "lenient-warnings", false, "Log warnings instead of failing the test with a Warning outcome")
	runCmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "Run again whenever a unit changes")
	runCmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Do not record the run in the history archive")
	rootCmd.AddCommand(runCmd)

	// See command
	seeCmd := &cobra.Command{
		Use:   "see",
		Short: "Inspect the failures of the last run",
		Long:  "Show a report for each failed test recorded in jet.results.json",
		Args:  cobra.NoArgs,
		RunE:  c.See.Execute,
	}
	seeCmd.Flags().StringVarP(&flags.TestPath, "dir", "d", "", "Directory holding the test units")
	seeCmd.Flags().IntVar(&flags.DocWidth, "doc-width", 0, "Wrap width of test documentation in the chooser")
	seeCmd.Flags().IntVar(&flags.TextWidth, "text-width", 0, "Wrap width of report descriptions")
	seeCmd.Flags().IntVar(&flags.Buffer, "buffer", 0, "Source lines shown above the failing line")
	seeCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print every report instead of opening the pager")
	rootCmd.AddCommand(seeCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered units",
		Long:  "Scan and list test units without running them",
		Args:  cobra.NoArgs,
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.TestPath, "dir", "d", "", "Directory holding the test units")
	listCmd.Flags().StringVar(&flags.Filter, "filter", "", "Filter units by file name pattern (e.g. 'test_array*' or '*verbose*')")
	listCmd.Flags().BoolVar(&flags.ListTests, "tests", false, "List the tests of every unit")
	listCmd.Flags().BoolVar(&flags.ListDocs, "docs", false, "Render unit and test documentation")
	listCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Render documentation without colors")
	rootCmd.AddCommand(listCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show archived runs",
		Long:  "List the runs recorded in the history archive, or the failures of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.History.Execute,
	}
	historyCmd.Flags().StringVarP(&flags.TestPath, "dir", "d", "", "Directory holding the test units")
	historyCmd.Flags().IntVarP(&flags.Limit, "limit", "n", 0, "Number of runs listed")
	historyCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print the table without colors")
	rootCmd.AddCommand(historyCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the history archive",
		Long:  "Create the history database when needed and apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE:  c.Migrate.Execute,
	}
	migrateCmd.Flags().StringVarP(&flags.TestPath, "dir", "d", "", "Directory holding the test units")
	rootCmd.AddCommand(migrateCmd)
}

// describeUnits reads the names and docs of units without loading them. A unit
// that cannot be parsed is listed by its file name.
func describeUnits(paths []string, logger *zap.Logger) []ui.Listing {
	parser := discovery.NewParser()
	listings := make([]ui.Listing, 0, len(paths))
	for _, path := range paths {
		listing := ui.Listing{Name: naming.UnitName(path), Path: path}

		source, err := parser.Parse(path)
		if err != nil {
			logger.Debug("cannot parse unit", zap.String("path", path), zap.Error(err))
			listings = append(listings, listing)
			continue
		}

		listing.Doc = source.Doc
		for _, d := range source.Declarations {
			if !naming.IsTest(d.Name) {
				continue
			}
			listing.Tests = append(listing.Tests, ui.TestListing{Name: naming.TestName(d.Name), Doc: d.Doc})
		}
		listings = append(listings, listing)
	}
	return listings
}

// classifyOverrides converts the configured classification table
func classifyOverrides(table map[string]string) map[string]domain.Kind {
	if len(table) == 0 {
		return nil
	}
	overrides := make(map[string]domain.Kind, len(table))
	for alias, kind := range table {
		overrides[alias] = domain.Kind(kind)
	}
	return overrides
}
