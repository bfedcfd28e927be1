package execution

import "jet/internal/domain"

// Batch is the test cases of one unit, in declaration order
type Batch struct {
	Index int // Position of the unit in discovery order
	Unit  string
	Cases []domain.TestCase
}

// Batches groups cases by unit, keeping discovery order. Cases of one unit share an
// interpreter, so a unit is never split across workers.
func Batches(cases []domain.TestCase) []Batch {
	var batches []Batch
	index := make(map[string]int)
	for _, tc := range cases {
		i, ok := index[tc.Unit.Path]
		if !ok {
			i = len(batches)
			index[tc.Unit.Path] = i
			batches = append(batches, Batch{Index: i, Unit: tc.Unit.Path})
		}
		batches[i].Cases = append(batches[i].Cases, tc)
	}
	return batches
}

// Scheduler distributes unit batches across workers
type Scheduler interface {
	Schedule(batches []Batch, workerCount int) [][]Batch
}

// RoundRobinScheduler distributes batches evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes batches evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(batches []Batch, workerCount int) [][]Batch {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]Batch, workerCount)
	for i, batch := range batches {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], batch)
	}

	return distribution
}
