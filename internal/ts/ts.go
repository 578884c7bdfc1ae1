package ts

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

// Solver - структура реализации поиска с запретами над перестановкой
// клиентов, декодируемой общим построителем маршрутов.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve - основной цикл алгоритма
func (s *Solver) Solve(ctx context.Context, inst *evrp.Instance) (opt.Result, error) {
	start := time.Now()

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

	n := inst.NumCustomers() - 1

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerCustomer * n
	}

	// Инициализация начального решения случайным допустимым построением
	initSol, evals, err := construct.Retry(
		s.Cfg.MaxAttempts,
		func() evrp.Solution { return builder.Build(construct.Uniform{Rng: s.Rng}) },
		eval.IsFeasible,
	)
	if err != nil {
		return opt.Result{Evaluations: evals, Duration: time.Since(start)}, fmt.Errorf("ts: initial solution: %w", err)
	}

	// Текущее и кандидатное решения
	curr := initSol.Customers(inst)
	cand := make([]evrp.NodeID, n)

	// Глобально лучшее решение
	best := initSol
	bestCost := eval.Evaluate(initSol)

	// Стоимость соседа; недопустимые соседи получают +Inf
	cost := func(p []evrp.NodeID) (float64, evrp.Solution) {
		sol := builder.Build(construct.NewPermutation(p))
		evals++
		if !eval.IsFeasible(sol) {
			return math.Inf(1), sol
		}
		return eval.Evaluate(sol), sol
	}

	// Табу-список - кольцевой буфер с мапой
	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	result := func(iters int) opt.Result {
		return opt.Result{
			Solution:    best.Clone(),
			Distance:    bestCost,
			Feasible:    true,
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(start),
			Meta: map[string]any{
				"tabu_tenure":        s.Cfg.TabuTenure,
				"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
				"neighbors_per_iter": s.Cfg.NeighborsPerIter,
				"neighborhood":       string(s.Cfg.Neighborhood),
			},
		}
	}

	if n < 2 {
		return result(0), nil
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := result(iter)
			res.Meta["stopped"] = "context"
			return res, err
		}

		// Лучший разрешённый ход
		moveFrom, moveTo := -1, -1
		moveCost := math.Inf(1)
		var moveSol evrp.Solution
		var moveCustomer evrp.NodeID

		// Итерация по случайно сгенерированным соседям
		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			from := s.Rng.Intn(n)
			to := s.Rng.Intn(n - 1)
			if to >= from {
				to++
			}

			customer := curr[from]
			copy(cand, curr)
			s.apply(cand, from, to)

			c, sol := cost(cand)
			if math.IsInf(c, 1) {
				continue
			}

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if tabu.IsTabu(moveKey(customer, from, to), iter) && c >= bestCost {
				continue
			}
			if c < moveCost {
				moveCost = c
				moveFrom, moveTo = from, to
				moveSol = sol
				moveCustomer = customer
			}
		}

		// Нет разрешённых допустимых ходов - пропускаем итерацию
		if moveFrom < 0 {
			continue
		}

		s.apply(curr, moveFrom, moveTo)

		// Добавление обратного хода в табу-список
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(moveCustomer, moveTo, moveFrom), iter+tenure)

		// Обновление глобально лучшего решения
		if moveCost < bestCost {
			bestCost = moveCost
			best = moveSol
			log.Debugf("[ts] iteration %d: best=%.2f", iter, bestCost)
		}
	}

	return result(iter), nil
}

func (s *Solver) apply(p []evrp.NodeID, from, to int) {
	switch s.Cfg.Neighborhood {
	case NeighborhoodSwap:
		applySwap(p, from, to)
	default:
		applyInsert(p, from, to)
	}
}

// tabuList - структура табу-списка.
// Реализована как кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
}

// newTabuList создаёт табу-список заданной ёмкости.
func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

// IsTabu проверяет, является ли ход табуированным на текущей итерации.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add добавляет новый табу-ход с указанием итерации истечения.
func (t *tabuList) Add(k uint64, expiry int) {
	// Удаление старого элемента из кольцевого буфера
	oldK := t.key[t.i]
	if oldK != 0 {
		if curExp, ok := t.m[oldK]; ok && curExp == t.exp[t.i] {
			delete(t.m, oldK)
		}
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
}

// applySwap применяет swap-ход (обмен элементов в позициях i и j).
func applySwap(p []evrp.NodeID, i, j int) {
	p[i], p[j] = p[j], p[i]
}

// applyInsert применяет insert-ход (элемент из позиции from вставляется в позицию to).
func applyInsert(p []evrp.NodeID, from, to int) {
	if from == to {
		return
	}
	val := p[from]
	if from < to {
		copy(p[from:to], p[from+1:to+1])
		p[to] = val
		return
	}
	copy(p[to+1:from+1], p[to:from])
	p[to] = val
}

// moveKey формирует ключ хода: клиент и пара позиций.
func moveKey(customer evrp.NodeID, from, to int) uint64 {
	return (uint64(uint32(customer)) << 42) |
		(uint64(uint32(from)) << 21) |
		uint64(uint32(to))
}
