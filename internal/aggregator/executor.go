package aggregator

import (
	"context"
	"runtime"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Task is the independent pipeline of one instrument.
type Task func(ctx context.Context) Outcome

// Executor runs tasks and returns their outcomes in task order. Tasks share
// no mutable state, so an executor may run them in any order or in parallel.
type Executor interface {
	Run(ctx context.Context, tasks []Task) []Outcome
	Workers() int
}

// Mode selects an executor.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// NewExecutor returns the executor for mode. workers <= 0 means one worker per CPU.
func NewExecutor(mode Mode, workers int) (Executor, error) {
	switch mode {
	case ModeSequential, "":
		return NewInlineExecutor(), nil
	case ModeParallel:
		return NewPoolExecutor(workers), nil
	default:
		return nil, errors.NewConfigurationError("parallelism.mode", "must be sequential or parallel",
			errors.Newf(errors.ErrCodeInvalidParameter, "unknown mode %q", mode))
	}
}

// InlineExecutor runs tasks one after another on the calling goroutine.
type InlineExecutor struct{}

func NewInlineExecutor() *InlineExecutor {
	return &InlineExecutor{}
}

func (e *InlineExecutor) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	for i, task := range tasks {
		outcomes[i] = task(ctx)
	}

	return outcomes
}

func (e *InlineExecutor) Workers() int {
	return 1
}

// PoolExecutor runs tasks on a bounded pool of goroutines.
type PoolExecutor struct {
	workers int
}

func NewPoolExecutor(workers int) *PoolExecutor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &PoolExecutor{workers: workers}
}

func (e *PoolExecutor) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	// tasks report failures in their outcome, a failed instrument never
	// cancels its siblings
	var group errgroup.Group
	group.SetLimit(e.workers)

	for i, task := range tasks {
		group.Go(func() error {
			outcomes[i] = task(ctx)

			return nil
		})
	}

	_ = group.Wait()

	return outcomes
}

func (e *PoolExecutor) Workers() int {
	return e.workers
}
