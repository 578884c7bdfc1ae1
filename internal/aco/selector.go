package aco

import (
	"math"
	"math/rand"

	"evrp/internal/construct"
	"evrp/internal/evrp"
)

// antSelector реализует правило выбора муравья: первый клиент каждой машины
// выбирается случайно, дальше по максимальной привлекательности
// tau^alpha * (1/d)^beta от последнего посещённого клиента.
// Вероятности нормируются, но выбирается argmax, без случайного розыгрыша.
type antSelector struct {
	tau   *Pheromone
	alpha float64
	beta  float64
	rng   *rand.Rand

	scores []float64
	probs  []float64
}

func newAntSelector(tau *Pheromone, alpha, beta float64, rng *rand.Rand) *antSelector {
	n := tau.Dims()
	return &antSelector{
		tau:    tau,
		alpha:  alpha,
		beta:   beta,
		rng:    rng,
		scores: make([]float64, 0, n),
		probs:  make([]float64, 0, n),
	}
}

func (s *antSelector) Next(st *construct.State) (evrp.NodeID, bool) {
	cands := st.Candidates()
	if len(cands) == 0 {
		return 0, false
	}
	v := st.Vehicle()
	if v.Stops == 0 {
		return cands[s.rng.Intn(len(cands))], true
	}

	inst := st.Instance()
	from := v.LastCustomer

	// Подсчёт привлекательности кандидатов
	s.scores = s.scores[:0]
	sum := 0.0
	best := -1
	bestScore := math.Inf(-1)
	for i, j := range cands {
		w := fastPow(s.tau.At(from, j), s.alpha) * fastPow(1/inst.Distance(from, j), s.beta)
		s.scores = append(s.scores, w)
		sum += w
		if best < 0 || w > bestScore {
			best = i
			bestScore = w
		}
	}

	s.probs = s.probs[:0]
	for _, w := range s.scores {
		s.probs = append(s.probs, w/sum)
	}
	return cands[best], true
}

// probabilities returns the normalised scores of the last probabilistic
// choice, aligned with the candidates of that step.
func (s *antSelector) probabilities() []float64 {
	return s.probs
}

// fastPow - оптимизация для частых степеней.
// Таким образом избегаем вызова math.Pow в простых случаях.
func fastPow(x, p float64) float64 {
	if p == 0 {
		return 1.0
	}
	if p == 1 {
		return x
	}
	if p == 2 {
		return x * x
	}
	return math.Pow(x, p)
}
