package opt

import (
	"context"
	"errors"
	"time"

	"evrp/internal/evrp"
)

// ErrNoFeasibleSolution is returned when a solver exhausts its retry budget
// without producing a solution that passes the Evaluator.
var ErrNoFeasibleSolution = errors.New("no feasible solution found")

type Optimizer interface {
	Solve(ctx context.Context, inst *evrp.Instance) (Result, error)
}

type Result struct {
	Solution    evrp.Solution
	Distance    float64
	Feasible    bool
	Evaluations int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}
