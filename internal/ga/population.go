package ga

import (
	"context"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"evrp/internal/construct"
	"evrp/internal/evrp"
	"evrp/internal/opt"
)

// Individual - особь: перестановка клиентов и декодированное из неё решение.
// Особи не изменяются на месте: операторы всегда создают новые.
type Individual struct {
	Perm     []evrp.NodeID
	Solution evrp.Solution
	Fitness  float64
	Feasible bool
}

// decoder строит особи через общий построитель маршрутов.
type decoder struct {
	inst    *evrp.Instance
	eval    *evrp.Evaluator
	builder *construct.Builder
}

func newDecoder(inst *evrp.Instance, eval *evrp.Evaluator) *decoder {
	return &decoder{inst: inst, eval: eval, builder: construct.NewBuilder(inst)}
}

// fromPermutation decodes perm in fixed order. The result may be infeasible.
func (d *decoder) fromPermutation(perm []evrp.NodeID) Individual {
	sol := d.builder.Build(construct.NewPermutation(perm))
	return d.fromSolution(perm, sol)
}

// fromSolution оценивает решение; особь с некорректной перестановкой
// недопустима, даже если её маршруты проходят проверку.
func (d *decoder) fromSolution(perm []evrp.NodeID, sol evrp.Solution) Individual {
	return Individual{
		Perm:     perm,
		Solution: sol,
		Fitness:  d.eval.Evaluate(sol),
		Feasible: evrp.ValidatePermutation(d.inst, perm) == nil && d.eval.IsFeasible(sol),
	}
}

// populate строит size допустимых особей из общего бюджета budget случайных
// построений. Если бюджет исчерпан раньше, недостающие места занимают копии
// уже найденных особей; ошибка возвращается, только если не найдено ни одной.
func (d *decoder) populate(ctx context.Context, rng *rand.Rand, size, budget int) ([]Individual, int, error) {
	sel := construct.Uniform{Rng: rng}
	pop := make([]Individual, 0, size)
	tries := 0
	for len(pop) < size && tries < budget {
		if err := ctx.Err(); err != nil {
			return nil, tries, err
		}
		sol := d.builder.Build(sel)
		tries++
		if !d.eval.IsFeasible(sol) {
			continue
		}
		pop = append(pop, d.fromSolution(sol.Customers(d.inst), sol))
	}
	if len(pop) == 0 {
		return nil, tries, fmt.Errorf("%w after %d attempts", opt.ErrNoFeasibleSolution, tries)
	}
	if found := len(pop); found < size {
		log.Warnf("[ga] only %d of %d individuals found in %d attempts, filling with copies", found, size, tries)
		for i := 0; len(pop) < size; i++ {
			pop = append(pop, pop[i%found])
		}
	}
	return pop, tries, nil
}

// bestFeasible returns the index of the lowest-distance feasible individual,
// or -1 when none is feasible.
func bestFeasible(pop []Individual) int {
	best := -1
	for i := range pop {
		if !pop[i].Feasible {
			continue
		}
		if best < 0 || pop[i].Fitness < pop[best].Fitness {
			best = i
		}
	}
	return best
}

// replaceWorst заменяет особь с наибольшей длиной маршрутов (без проверки допустимости).
func replaceWorst(pop []Individual, ind Individual) int {
	worst := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].Fitness > pop[worst].Fitness {
			worst = i
		}
	}
	pop[worst] = ind
	return worst
}
