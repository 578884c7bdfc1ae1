package ga

import (
	"math/rand"

	"evrp/internal/construct"
	"evrp/internal/evrp"
)

// pmx хранит рабочие буферы оператора Partially Mapped Crossover.
type pmx struct {
	inst   *evrp.Instance
	pos2   []int
	placed []bool
}

func newPMX(inst *evrp.Instance) *pmx {
	return &pmx{
		inst:   inst,
		pos2:   make([]int, inst.NumCustomers()),
		placed: make([]bool, inst.NumCustomers()),
	}
}

// segment выбирает отрезок [start, start+size) с size >= 1 и start+size < n.
func segment(n int, rng *rand.Rand) (start, size int) {
	start = rng.Intn(n)
	size = 1 + rng.Intn(n-1)
	for start+size >= n {
		start = rng.Intn(n)
		size = 1 + rng.Intn(n-1)
	}
	return start, size
}

// cross строит потомка двух перестановок клиентов.
func (x *pmx) cross(p1, p2 []evrp.NodeID, rng *rand.Rand) []evrp.NodeID {
	n := len(p1)
	child := make([]evrp.NodeID, n)
	if n < 2 {
		copy(child, p1)
		return child
	}

	idx := x.inst.CustomerIndex
	for i := range x.placed {
		x.placed[i] = false
	}
	for i, id := range p2 {
		x.pos2[idx(id)] = i
	}

	start, size := segment(n, rng)
	end := start + size

	// Копирование сегмента из первого родителя
	for i := start; i < end; i++ {
		child[i] = p1[i]
		x.placed[idx(p1[i])] = true
	}

	// Размещение генов второго родителя из сегмента по цепочке отображений
	for i := start; i < end; i++ {
		e1 := p1[i]
		e2 := p2[i]
		if x.placed[idx(e2)] {
			continue
		}
		k := x.pos2[idx(e1)]
		for steps := 0; child[k] != 0 && steps < n; steps++ {
			e1 = p1[k]
			k = x.pos2[idx(e1)]
		}
		if child[k] != 0 {
			continue
		}
		child[k] = e2
		x.placed[idx(e2)] = true
	}

	// Оставшиеся гены второго родителя - в первую свободную позицию начиная с их собственной
	for i, e2 := range p2 {
		if x.placed[idx(e2)] {
			continue
		}
		k := i
		for k < n && child[k] != 0 {
			k++
		}
		if k == n {
			k = 0
			for child[k] != 0 {
				k++
			}
		}
		child[k] = e2
		x.placed[idx(e2)] = true
	}
	return child
}

// crossover повторяет PMX для одной и той же пары родителей, пока потомок не
// станет допустимым, но не более attempts раз.
func crossover(d *decoder, x *pmx, p1, p2 Individual, rng *rand.Rand, attempts int) (Individual, int, error) {
	var perm []evrp.NodeID
	sol, tries, err := construct.Retry(
		attempts,
		func() evrp.Solution {
			perm = x.cross(p1.Perm, p2.Perm, rng)
			return d.builder.Build(construct.NewPermutation(perm))
		},
		d.eval.IsFeasible,
	)
	if err != nil {
		return Individual{}, tries, err
	}
	return d.fromSolution(perm, sol), tries, nil
}

// mutate применяет мутацию Swap к копии перестановки и перестраивает решение.
func mutate(d *decoder, ind Individual, rng *rand.Rand) Individual {
	perm := make([]evrp.NodeID, len(ind.Perm))
	copy(perm, ind.Perm)
	mutateSwap(perm, rng)
	return d.fromPermutation(perm)
}

// mutateSwap реализует оператор мутации Swap.
func mutateSwap(p []evrp.NodeID, rng *rand.Rand) {
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
