package construct

import (
	"math/rand"

	"evrp/internal/evrp"
)

// Uniform выбирает следующего клиента равновероятно среди допустимых кандидатов.
type Uniform struct {
	Rng *rand.Rand
}

func (u Uniform) Next(st *State) (evrp.NodeID, bool) {
	cands := st.Candidates()
	if len(cands) == 0 {
		return 0, false
	}
	return cands[u.Rng.Intn(len(cands))], true
}

// Permutation visits customers in a fixed order. When the next customer does
// not fit the remaining capacity the current vehicle is closed and the
// customer is offered to the next one.
type Permutation struct {
	perm []evrp.NodeID
	pos  int
}

// NewPermutation wraps perm for a single Build call.
func NewPermutation(perm []evrp.NodeID) *Permutation {
	return &Permutation{perm: perm}
}

func (p *Permutation) Next(st *State) (evrp.NodeID, bool) {
	for p.pos < len(p.perm) && st.Visited(p.perm[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.perm) {
		return 0, false
	}
	id := p.perm[p.pos]
	if st.Instance().Demand(id) > st.Vehicle().Carry {
		return 0, false
	}
	p.pos++
	return id, true
}
