package aco

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"evrp/internal/construct"
	"evrp/internal/evrp"
	"evrp/internal/evrp/evrptest"
	"evrp/internal/opt"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 15
	cfg.Ants = 10
	return cfg
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Iterations = 0 },
		func(c *Config) { c.Ants = 0 },
		func(c *Config) { c.Alpha = -1 },
		func(c *Config) { c.Rho = 0 },
		func(c *Config) { c.Rho = 1.5 },
		func(c *Config) { c.Q = 0 },
		func(c *Config) { c.Tau0 = 0 },
		func(c *Config) { c.MaxAttempts = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if _, err := New(DefaultConfig(), nil); err == nil {
		t.Errorf("New with nil rng must fail")
	}
}

func TestEvaporationWithoutDeposits(t *testing.T) {
	inst := evrptest.Grid(10, 2, 2, 3)
	eval, err := evrp.NewEvaluator(inst)
	if err != nil {
		t.Fatal(err)
	}
	tau := NewPheromone(inst, 2.0)
	updatePheromone(tau, eval, nil, 0.9, 1.0)

	ids := append([]evrp.NodeID{evrp.Depot}, inst.Customers()...)
	for _, i := range ids {
		for _, j := range ids {
			if got := tau.At(i, j); math.Abs(got-1.8) > 1e-12 {
				t.Fatalf("tau(%d,%d) = %v, want 1.8", i, j, got)
			}
		}
	}
}

func TestDepositSkipsStationEdges(t *testing.T) {
	inst := evrptest.Detour(t)
	tau := NewPheromone(inst, 1.0)
	if tau.Dims() != inst.NumCustomers() {
		t.Fatalf("Dims = %d, want %d", tau.Dims(), inst.NumCustomers())
	}

	tau.Deposit(evrp.Solution{Routes: []evrp.Route{{1, 2, 4, 3, 4, 1}}}, 0.5)

	if got := tau.At(1, 2); got != 1.5 {
		t.Errorf("tau(1,2) = %v, want 1.5", got)
	}
	for _, e := range [][2]evrp.NodeID{{2, 3}, {3, 1}, {2, 1}, {1, 3}} {
		if got := tau.At(e[0], e[1]); got != 1.0 {
			t.Errorf("tau(%d,%d) = %v, want untouched 1.0", e[0], e[1], got)
		}
	}
}

// probe проверяет нормировку вероятностей и выбор argmax на каждом шаге.
type probe struct {
	t     *testing.T
	sel   *antSelector
	steps int
}

func (p *probe) Next(st *construct.State) (evrp.NodeID, bool) {
	stops := st.Vehicle().Stops
	cands := append([]evrp.NodeID(nil), st.Candidates()...)
	id, ok := p.sel.Next(st)
	if !ok || stops == 0 {
		return id, ok
	}
	p.steps++

	probs := p.sel.probabilities()
	if len(probs) != len(cands) {
		p.t.Fatalf("got %d probabilities for %d candidates", len(probs), len(cands))
	}
	sum, best := 0.0, 0
	for i, pr := range probs {
		sum += pr
		if pr > probs[best] {
			best = i
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		p.t.Fatalf("probabilities sum to %v", sum)
	}
	if cands[best] != id {
		p.t.Fatalf("picked %d, argmax is %d", id, cands[best])
	}
	return id, ok
}

func TestSelectorPicksMostAttractiveCandidate(t *testing.T) {
	inst := evrptest.Grid(20, 3, 2, 8)
	tau := NewPheromone(inst, 1.0)
	p := &probe{t: t, sel: newAntSelector(tau, 1.0, 2.0, rand.New(rand.NewSource(1)))}

	construct.NewBuilder(inst).Build(p)
	if p.steps == 0 {
		t.Fatalf("no probabilistic steps were taken")
	}
}

func TestSelectorFollowsNearestOnUniformPheromone(t *testing.T) {
	inst := evrptest.Square(t)
	tau := NewPheromone(inst, 1.0)
	sel := newAntSelector(tau, 1.0, 1.0, rand.New(rand.NewSource(2)))
	b := construct.NewBuilder(inst)

	for i := 0; i < 10; i++ {
		r := b.Build(sel).Routes[0]
		first, second := r[1], r[2]
		var want evrp.NodeID
		nearest := math.Inf(1)
		for _, c := range inst.Customers() {
			if c == first {
				continue
			}
			if d := inst.Distance(first, c); d < nearest {
				nearest, want = d, c
			}
		}
		if second != want {
			t.Fatalf("route %v: after %d expected nearest %d", r, first, want)
		}
	}
}

func TestSolveSquare(t *testing.T) {
	inst := evrptest.Square(t)
	s, err := New(smallConfig(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Solve(context.Background(), inst)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Feasible || math.Abs(res.Distance-14) > 1e-9 {
		t.Fatalf("got feasible=%v distance=%v, want 14", res.Feasible, res.Distance)
	}
}

func TestSolveRandomInstance(t *testing.T) {
	inst := evrptest.Grid(20, 3, 2, 21)
	s, err := New(smallConfig(), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Solve(context.Background(), inst)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	evrptest.CheckInvariants(t, inst, res.Solution)
	if res.Evaluations < smallConfig().Iterations*smallConfig().Ants {
		t.Errorf("Evaluations = %d, too few", res.Evaluations)
	}
}

func TestSolveIsReproducible(t *testing.T) {
	inst := evrptest.Grid(20, 2, 2, 4)
	run := func() opt.Result {
		s, err := New(smallConfig(), rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Solve(context.Background(), inst)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if a.Distance != b.Distance || !reflect.DeepEqual(a.Solution, b.Solution) {
		t.Fatalf("equal seeds gave different results: %v vs %v", a.Distance, b.Distance)
	}
}

func TestSolveReportsNoFeasibleSolution(t *testing.T) {
	cfg := smallConfig()
	cfg.Iterations = 2
	cfg.MaxAttempts = 3
	s, err := New(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Solve(context.Background(), evrptest.Degenerate(t))
	if !errors.Is(err, opt.ErrNoFeasibleSolution) {
		t.Fatalf("err = %v, want ErrNoFeasibleSolution", err)
	}
	if res.Feasible {
		t.Fatalf("result must not be feasible")
	}
	if got := res.Meta["discarded"]; got != cfg.Iterations*cfg.Ants {
		t.Fatalf("discarded = %v, want %d", got, cfg.Iterations*cfg.Ants)
	}
}

func TestSolveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := New(smallConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Solve(ctx, evrptest.Square(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Meta["stopped"] != "context" {
		t.Fatalf("Meta[stopped] = %v", res.Meta["stopped"])
	}
}
