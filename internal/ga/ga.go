package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"evrp/internal/evrp"
	"evrp/internal/opt"
)

// Solver - реализация стационарного генетического алгоритма для EVRP.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
	start := time.Now()

	// Проверка корректности входных данных и конфигурации
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

	dec := newDecoder(inst, eval)
	x := newPMX(inst)
	popSize := s.Cfg.Population

	// Инициализация начальной популяции случайными допустимыми особями
	// с общим бюджетом попыток на всю популяцию
	pop, evaluations, err := dec.populate(ctx, s.Rng, popSize, popSize*s.Cfg.MaxAttempts)
	if err != nil {
		res := opt.Result{Evaluations: evaluations, Duration: time.Since(start)}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, fmt.Errorf("ga: initial population: %w", err)
	}

	meta := func() map[string]any {
		return map[string]any{
			"population":     s.Cfg.Population,
			"generations":    s.Cfg.Generations,
			"crossover_rate": s.Cfg.CrossoverRate,
			"mutation_rate":  s.Cfg.MutationRate,
		}
	}

	offspring := make([]Individual, 0, popSize)
	failedCrossovers := 0

	for gen := 0; gen < s.Cfg.Generations; gen++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := ToOptResult(pop[bestFeasible(pop)], evaluations, gen, meta())
			res.Meta["stopped"] = "context"
			res.Duration = time.Since(start)
			return res, err
		}

		// Порядок скрещивания: соседние пары перекрываются (N-1 пар)
		order := s.Rng.Perm(popSize)
		offspring = offspring[:0]
		for j := 0; j+1 < popSize; j++ {
			if s.Rng.Float64() > s.Cfg.CrossoverRate {
				child, tries, err := crossover(dec, x, pop[order[j]], pop[order[j+1]], s.Rng, s.Cfg.MaxAttempts)
				evaluations += tries
				if err != nil {
					failedCrossovers++
					continue
				}
				offspring = append(offspring, child)
			}
		}

		// Мутация потомков
		for i := range offspring {
			if s.Rng.Float64() > s.Cfg.MutationRate {
				offspring[i] = mutate(dec, offspring[i], s.Rng)
				evaluations++
			}
		}

		// Лучший допустимый потомок заменяет худшую особь популяции
		if b := bestFeasible(offspring); b >= 0 {
			replaceWorst(pop, offspring[b])
		}

		if gen%50 == 0 {
			log.Debugf("[ga] generation %d: offspring=%d best=%.2f", gen, len(offspring), pop[bestFeasible(pop)].Fitness)
		}
	}

	m := meta()
	m["failed_crossovers"] = failedCrossovers
	b := bestFeasible(pop)
	if b < 0 {
		return opt.Result{Evaluations: evaluations, Iterations: s.Cfg.Generations, Duration: time.Since(start), Meta: m},
			fmt.Errorf("ga: final population: %w", opt.ErrNoFeasibleSolution)
	}
	res := ToOptResult(pop[b], evaluations, s.Cfg.Generations, m)
	res.Duration = time.Since(start)
	return res, nil
}
