package aco

import (
	"gonum.org/v1/gonum/mat"

	"evrp/internal/evrp"
)

// Pheromone - матрица феромонов по клиентам (депо включено).
// Рёбра, касающиеся станций зарядки, не моделируются.
type Pheromone struct {
	inst *evrp.Instance
	m    *mat.Dense
}

func NewPheromone(inst *evrp.Instance, tau0 float64) *Pheromone {
	n := inst.NumCustomers()
	data := make([]float64, n*n)
	for i := range data {
		data[i] = tau0
	}
	return &Pheromone{inst: inst, m: mat.NewDense(n, n, data)}
}

// At returns the pheromone on the edge from -> to; both ends must be the
// depot or customers.
func (p *Pheromone) At(from, to evrp.NodeID) float64 {
	return p.m.At(p.inst.CustomerIndex(from), p.inst.CustomerIndex(to))
}

// Evaporate multiplies every entry by rho.
func (p *Pheromone) Evaporate(rho float64) {
	p.m.Scale(rho, p.m)
}

// Deposit adds delta to every edge of sol whose ends are the depot or customers.
func (p *Pheromone) Deposit(sol evrp.Solution, delta float64) {
	for _, r := range sol.Routes {
		for k := 0; k+1 < len(r); k++ {
			i := p.inst.CustomerIndex(r[k])
			j := p.inst.CustomerIndex(r[k+1])
			if i < 0 || j < 0 {
				continue
			}
			p.m.Set(i, j, p.m.At(i, j)+delta)
		}
	}
}

func (p *Pheromone) Dims() int {
	n, _ := p.m.Dims()
	return n
}
