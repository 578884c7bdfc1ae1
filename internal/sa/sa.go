package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"evrp/internal/construct"
	"evrp/internal/evrp"
	"evrp/internal/opt"
)

// Solver - структура реализации алгоритма имитации отжига
// над перестановкой клиентов, декодируемой общим построителем маршрутов.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerCustomer * (inst.NumCustomers() - 1)
	}

	// Инициализация текущего решения случайным допустимым построением
	currSol, evals, err := construct.Retry(
		s.Cfg.MaxAttempts,
		func() evrp.Solution { return builder.Build(construct.Uniform{Rng: s.Rng}) },
		eval.IsFeasible,
	)
	if err != nil {
		return opt.Result{Evaluations: evals, Duration: time.Since(start)}, fmt.Errorf("sa: initial solution: %w", err)
	}

	curr := currSol.Customers(inst)
	cand := make([]evrp.NodeID, len(curr))
	currCost := eval.Evaluate(currSol)
	best := currSol
	bestCost := currCost

	rejected := 0
	T := s.Cfg.InitialTemp

	result := func(iters int) opt.Result {
		return opt.Result{
			Solution:    best.Clone(),
			Distance:    bestCost,
			Feasible:    true,
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(start),
			Meta: map[string]any{
				"initial_temp": s.Cfg.InitialTemp,
				"final_temp":   s.Cfg.FinalTemp,
				"alpha":        s.Cfg.Alpha,
				"neighborhood": string(s.Cfg.Neighborhood),
				"infeasible":   rejected,
			},
		}
	}

	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := result(iter)
			res.Meta["stopped"] = "context"
			res.Meta["T"] = T
			return res, err
		}

		copy(cand, curr)
		switch s.Cfg.Neighborhood {
		case NeighborhoodInsert:
			// Окрестность на основе вставки элемента в другую позицию
			neighborInsert(cand, s.Rng)
		default:
			// Окрестность на основе обмена двух элементов
			neighborSwap(cand, s.Rng)
		}

		candSol := builder.Build(construct.NewPermutation(cand))
		evals++
		if !eval.IsFeasible(candSol) {
			// Недопустимых соседей не принимаем
			rejected++
			T *= s.Cfg.Alpha
			continue
		}
		candCost := eval.Evaluate(candSol)

		delta := candCost - currCost
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса:
			// допускает принятие ухудшающих решений
			p := math.Exp(-delta / T)
			if s.Rng.Float64() < p {
				accept = true
			}
		}

		if accept {
			// Обмен ролей текущего и кандидатного решений
			curr, cand = cand, curr
			currCost = candCost

			// Обновление глобально лучшего решения
			if currCost < bestCost {
				bestCost = currCost
				best = candSol
				log.Debugf("[sa] iteration %d: best=%.2f T=%.4f", iter, bestCost, T)
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	return result(iter), nil
}

// Формирует соседнее решение путём обмена двух случайных позиций.
func neighborSwap(p []evrp.NodeID, rng *rand.Rand) {
	if len(p) < 2 {
		return
	}
	i := rng.Intn(len(p))
	j := rng.Intn(len(p) - 1)
	if j >= i {
		j++
	}
	p[i], p[j] = p[j], p[i]
}

// Формирует соседнее решение путём извлечения элемента из позиции i и вставки его в позицию j.
func neighborInsert(p []evrp.NodeID, rng *rand.Rand) {
	n := len(p)
	if n < 2 {
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}

	// Перемещаем элемент из позиции i в позицию j
	val := p[i]
	if i < j {
		// Сдвиг элементов влево
		copy(p[i:j], p[i+1:j+1])
		p[j] = val
	} else {
		// Сдвиг элементов вправо
		copy(p[j+1:i+1], p[j:i])
		p[j] = val
	}
}
