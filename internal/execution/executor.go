package execution

import (
	"context"
	"time"

	"jet/internal/aggregate"
	"jet/internal/domain"
)

// Executor executes test cases and aggregates their outcomes
type Executor interface {
	Execute(ctx context.Context, cases []domain.TestCase) (*aggregate.Aggregator, time.Duration, error)
}

// Progress is called once per completed test case. Calls are never concurrent.
type Progress func(tc domain.TestCase, outcome domain.Outcome)
