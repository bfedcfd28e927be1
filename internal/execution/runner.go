package execution

import (
	"context"
	"time"

	"jet/internal/aggregate"
	"jet/internal/domain"
)

// Runner executes test cases one after another in discovery order
type Runner struct {
	sandbox  *Sandbox
	mode     domain.Mode
	progress Progress
}

// NewRunner creates a new Runner
func NewRunner(sandbox *Sandbox, mode domain.Mode) *Runner {
	return &Runner{sandbox: sandbox, mode: mode}
}

// SetProgress sets the callback notified after each test
func (r *Runner) SetProgress(progress Progress) {
	r.progress = progress
}

// Execute runs every case. It stops early only when a routine cannot be invoked
// or ctx is cancelled.
func (r *Runner) Execute(ctx context.Context, cases []domain.TestCase) (*aggregate.Aggregator, time.Duration, error) {
	startTime := time.Now()
	agg := aggregate.New()
	err := r.run(ctx, cases, agg, r.progress)
	return agg, time.Since(startTime), err
}

func (r *Runner) run(ctx context.Context, cases []domain.TestCase, agg *aggregate.Aggregator, progress Progress) error {
	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := r.sandbox.Run(tc, r.mode)
		if err != nil {
			return err
		}
		agg.Add(outcome)

		if progress != nil {
			progress(tc, outcome)
		}
	}
	return nil
}
