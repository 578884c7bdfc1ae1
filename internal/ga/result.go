package ga

import "evrp/internal/opt"

func ToOptResult(best Individual, evals, gens int, meta map[string]any) opt.Result {
	return opt.Result{
		Solution:    best.Solution.Clone(),
		Distance:    best.Fitness,
		Feasible:    best.Feasible,
		Evaluations: evals,
		Iterations:  gens,
		Meta:        meta,
	}
}
