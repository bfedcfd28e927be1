package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jet/internal/aggregate"
	"jet/internal/discovery"
	"jet/internal/domain"
	"jet/internal/execution"
	"jet/internal/migration"
	"jet/internal/selection"
	"jet/internal/storage"
	"jet/internal/ui"
	"jet/internal/watch"
)

// progressExecutor is an executor reporting each completed test
type progressExecutor interface {
	execution.Executor
	SetProgress(progress execution.Progress)
}

// RunCommand handles the run command
type RunCommand struct {
	env    *Env
	filter *discovery.Filter
	// chooser overrides the chooser of env
	chooser selection.Chooser
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(env *Env) *RunCommand {
	return &RunCommand{env: env, filter: discovery.NewFilter()}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rc.env.Config
	formatter := rc.env.Formatter()

	paths, err := rc.discover()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		rc.env.Palette().Kind(domain.KindWarning).Fprintln(rc.env.Stdout, "No test units found")
		return nil
	}

	paths, err = rc.choose(paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		formatter.Info("Nothing selected")
		return nil
	}

	if _, err := rc.RunOnce(ctx, paths); err != nil {
		return err
	}

	if !cfg.Flags.Watch {
		return nil
	}
	return rc.watch(ctx, paths)
}

// discover lists the unit files to consider, honouring --files and --filter
func (rc *RunCommand) discover() ([]string, error) {
	cfg := rc.env.Config
	root := cfg.GetTestPath()
	scanner := discovery.NewScanner(cfg.PathsToIgnore)

	var paths []string
	var err error
	if len(cfg.Flags.Files) > 0 {
		paths, err = scanner.Resolve(root, cfg.Flags.Files)
	} else {
		paths, err = scanner.Scan(root)
	}
	if err != nil {
		return nil, err
	}
	return rc.filter.FilterByName(paths, cfg.Flags.Filter), nil
}

// choose asks which units to run unless --all or --files was given
func (rc *RunCommand) choose(paths []string) ([]string, error) {
	cfg := rc.env.Config
	if cfg.Flags.RunAll || len(cfg.Flags.Files) > 0 {
		return paths, nil
	}

	chooser := rc.chooser
	if chooser == nil {
		chooser = rc.env.Chooser()
	}

	listings := describeUnits(paths, rc.env.Logger)
	items := make([]selection.Item, len(listings))
	for i, l := range listings {
		items[i] = selection.Item{Title: l.Name, Description: l.Doc}
	}

	sel, err := chooser.Choose("Select units to run", items, selection.Unlimited)
	if err != nil {
		return nil, fmt.Errorf("failed to select units: %w", err)
	}
	return selection.Apply(paths, sel), nil
}

// RunOnce loads, runs and records the units at paths. A run that ends up with
// no test cases still replaces the previous results with an empty record.
func (rc *RunCommand) RunOnce(ctx context.Context, paths []string) (domain.ResultRecord, error) {
	cfg := rc.env.Config
	formatter := rc.env.Formatter()

	loaded := discovery.NewLoader(rc.env.Logger).LoadAll(paths)
	defer loaded.Close()

	cases := rc.filter.FilterTests(discovery.Extract(loaded.Units), cfg.Flags.TestFilter)
	if len(cases) == 0 {
		rc.env.Palette().Kind(domain.KindWarning).Fprintln(rc.env.Stdout, "No tests to execute")
		formatter.LoadErrors(loaded.Errors)

		record := aggregate.New().Record(domain.NewRunMeta(uuid.NewString(), 0, cfg.Workers))
		return record, rc.store(ctx, record)
	}

	executor := rc.executor()
	progressBar := ui.NewProgressBar(len(cases), cfg.Flags.Percentage, rc.env.Palette(), rc.env.Stderr)
	summary := domain.RunSummary{}
	executor.SetProgress(func(tc domain.TestCase, outcome domain.Outcome) {
		summary.Add(outcome.Kind)
		if !cfg.Flags.Quiet {
			progressBar.Clear()
			formatter.StatusLine(outcome)
		}
		progressBar.Update(summary)
	})

	agg, duration, err := executor.Execute(ctx, cases)
	progressBar.Finish()
	if err != nil {
		return domain.ResultRecord{}, err
	}

	formatter.Summary(agg.Line())
	formatter.FailureTree(agg.Diagnostics())
	// Units that could not be loaded were skipped, they are reported once the run is over
	formatter.LoadErrors(loaded.Errors)

	record := agg.Record(domain.NewRunMeta(uuid.NewString(), duration, cfg.Workers))
	return record, rc.store(ctx, record)
}

// store saves record as the latest results and archives it unless history is off
func (rc *RunCommand) store(ctx context.Context, record domain.ResultRecord) error {
	logger := rc.env.Logger

	st := storage.NewJSONStorage(rc.env.Config)
	if err := st.Save(record); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	logger.Debug("results saved",
		zap.String("path", st.Path()),
		zap.String("run_id", record.Meta.RunID),
		zap.Float64("duration_seconds", record.Meta.DurationSeconds))

	if !rc.env.Config.History.Disabled {
		if err := rc.archive(ctx, record); err != nil {
			logger.Warn("run not archived", zap.Error(err))
		}
	}
	return nil
}

func (rc *RunCommand) executor() progressExecutor {
	cfg := rc.env.Config
	sandbox := execution.NewSandbox(execution.NewClassifier(classifyOverrides(cfg.Classify)), rc.env.Logger)
	runner := execution.NewRunner(sandbox, domain.Mode{WarningsAsFailures: !cfg.Flags.LenientWarnings})
	if cfg.Workers <= 1 {
		return runner
	}
	return execution.NewWorkerPool(runner, execution.NewRoundRobinScheduler(), cfg.Workers, rc.env.Logger)
}

// archive records the run in the history database, creating its schema first
func (rc *RunCommand) archive(ctx context.Context, record domain.ResultRecord) error {
	archive, err := storage.OpenArchive(rc.env.Config)
	if err != nil {
		return err
	}
	defer archive.Close()

	migrator := migration.NewSchemaMigrator(archive.DB(), archive.Driver(), io.Discard, rc.env.Logger)
	if err := migrator.Run(ctx); err != nil {
		return err
	}

	runID, err := archive.Record(ctx, record)
	if err != nil {
		return err
	}
	rc.env.Logger.Debug("run archived", zap.String("run_id", runID))
	return nil
}

// watch runs again whenever units change: the chosen units plus the changed ones
func (rc *RunCommand) watch(ctx context.Context, paths []string) error {
	cfg := rc.env.Config
	formatter := rc.env.Formatter()

	watcher, err := watch.New(cfg.GetTestPath(), cfg.PathsToIgnore, watch.DefaultDebounce, rc.env.Logger)
	if err != nil {
		return err
	}

	formatter.Info("Watching %s for changes, press Ctrl+C to stop", cfg.GetTestPath())
	return watcher.Run(ctx, func(changed []string) {
		rerun := rerunPaths(paths, rc.filter.FilterByName(changed, cfg.Flags.Filter))
		formatter.Banner(fmt.Sprintf("%s: %d unit(s) changed", time.Now().Format(time.TimeOnly), len(changed)))
		if _, err := rc.RunOnce(ctx, rerun); err != nil && !errors.Is(err, context.Canceled) {
			rc.env.Logger.Error("run failed", zap.Error(err))
		}
	})
}

// rerunPaths appends the changed paths not already chosen
func rerunPaths(chosen, changed []string) []string {
	out := slices.Clone(chosen)
	for _, path := range changed {
		if !slices.Contains(out, path) {
			out = append(out, path)
		}
	}
	return out
}

var (
	_ progressExecutor = (*execution.Runner)(nil)
	_ progressExecutor = (*execution.WorkerPool)(nil)
)
