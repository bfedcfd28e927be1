package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jet/internal/aggregate"
	"jet/internal/domain"
)

// WorkerPool executes units in parallel. Each unit runs sequentially on one worker;
// the per-unit results are merged in discovery order.
type WorkerPool struct {
	runner    *Runner
	scheduler Scheduler
	workers   int
	logger    *zap.Logger
	progress  Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(runner *Runner, scheduler Scheduler, workers int, logger *zap.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		runner:    runner,
		scheduler: scheduler,
		workers:   workers,
		logger:    logger,
	}
}

// SetProgress sets the callback notified after each test
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs the cases on the pool's workers
func (wp *WorkerPool) Execute(ctx context.Context, cases []domain.TestCase) (*aggregate.Aggregator, time.Duration, error) {
	startTime := time.Now()
	if len(cases) == 0 {
		return aggregate.New(), 0, nil
	}

	batches := Batches(cases)
	distribution := wp.scheduler.Schedule(batches, wp.workers)
	results := make([]*aggregate.Aggregator, len(batches))

	var mu sync.Mutex
	progress := func(tc domain.TestCase, outcome domain.Outcome) {
		if wp.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		wp.progress(tc, outcome)
	}

	g, ctx := errgroup.WithContext(ctx)
	for workerID, assigned := range distribution {
		if len(assigned) == 0 {
			continue
		}
		g.Go(func() error {
			for _, batch := range assigned {
				wp.logger.Debug("worker running unit",
					zap.Int("worker", workerID+1),
					zap.String("unit", batch.Unit),
					zap.Int("tests", len(batch.Cases)))

				agg := aggregate.New()
				if err := wp.runner.run(ctx, batch.Cases, agg, progress); err != nil {
					return err
				}
				results[batch.Index] = agg
			}
			return nil
		})
	}

	err := g.Wait()

	merged := aggregate.New()
	for _, agg := range results {
		merged.Merge(agg)
	}
	return merged, time.Since(startTime), err
}
