package aco

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"evrp/internal/construct"
	"evrp/internal/evrp"
	"evrp/internal/opt"
)

// Solver - структура реализации муравьиного алгоритма.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый ACO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve - реализация эвристики.
func (s *Solver) Solve(ctx context.Context, inst *evrp.Instance) (opt.Result, error) {
	startTime := time.Now()

	// Валидация входных данных
	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	eval, err := evrp.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}

	builder := construct.NewBuilder(inst)
	tau := NewPheromone(inst, s.Cfg.Tau0)
	sel := newAntSelector(tau, s.Cfg.Alpha, s.Cfg.Beta, s.Rng)

	colony := make([]evrp.Solution, s.Cfg.Ants)
	feasible := make([]bool, s.Cfg.Ants)

	var best *evrp.Solution
	evals := 0
	discarded := 0

	result := func(iters int) opt.Result {
		res := opt.Result{
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(startTime),
			Meta: map[string]any{
				"ants":      s.Cfg.Ants,
				"alpha":     s.Cfg.Alpha,
				"beta":      s.Cfg.Beta,
				"rho":       s.Cfg.Rho,
				"Q":         s.Cfg.Q,
				"tau0":      s.Cfg.Tau0,
				"discarded": discarded,
			},
		}
		if best != nil {
			res.Solution = best.Clone()
			res.Distance = eval.Evaluate(*best)
			res.Feasible = true
		}
		return res
	}

	for iter := 0; iter < s.Cfg.Iterations; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := result(iter)
			res.Meta["stopped"] = "context"
			return res, err
		}

		// Муравьи пошли: недопустимые решения перестраиваются до MaxAttempts раз
		for a := range colony {
			var last evrp.Solution
			_, tries, err := construct.Retry(
				s.Cfg.MaxAttempts,
				func() evrp.Solution {
					last = builder.Build(sel)
					return last
				},
				eval.IsFeasible,
			)
			evals += tries
			colony[a] = last
			feasible[a] = err == nil
			if err != nil {
				discarded++
			}
		}

		updatePheromone(tau, eval, colony, s.Cfg.Rho, s.Cfg.Q)

		// Глобальное лучшее за всё время, только среди допустимых муравьёв
		for a := range colony {
			if feasible[a] && eval.IsBetter(&colony[a], best) {
				sol := colony[a]
				best = &sol
			}
		}

		if best != nil {
			log.Debugf("[aco] iteration %d: best=%.2f", iter, eval.Evaluate(*best))
		}
	}

	res := result(s.Cfg.Iterations)
	if best == nil {
		return res, fmt.Errorf("aco: colony: %w", opt.ErrNoFeasibleSolution)
	}
	return res, nil
}

// updatePheromone испаряет феромон и затем усиливает рёбра всех муравьёв
// пропорционально Q / длина маршрута.
func updatePheromone(tau *Pheromone, eval *evrp.Evaluator, colony []evrp.Solution, rho, q float64) {
	tau.Evaporate(rho)
	for _, sol := range colony {
		cost := eval.Evaluate(sol)
		if cost <= 0 {
			continue
		}
		tau.Deposit(sol, q/cost)
	}
}
