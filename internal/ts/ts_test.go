package ts

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"evrp/internal/evrp"
	"evrp/internal/evrp/evrptest"
	"evrp/internal/opt"
)

func TestApplyInsert(t *testing.T) {
	p := []evrp.NodeID{2, 3, 4, 5, 6}
	applyInsert(p, 0, 3)
	want := []evrp.NodeID{3, 4, 5, 2, 6}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("forward insert = %v, want %v", p, want)
		}
	}
	applyInsert(p, 3, 0)
	want = []evrp.NodeID{2, 3, 4, 5, 6}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("backward insert = %v, want %v", p, want)
		}
	}
}

func TestTabuListExpiry(t *testing.T) {
	tl := newTabuList(8)
	k := moveKey(5, 1, 2)
	tl.Add(k, 10)
	if !tl.IsTabu(k, 9) {
		t.Fatalf("move must be tabu before expiry")
	}
	if tl.IsTabu(k, 10) {
		t.Fatalf("move must be free at expiry")
	}
	if tl.IsTabu(moveKey(5, 2, 1), 0) {
		t.Fatalf("reverse move was never added")
	}

	// Переполнение кольца вытесняет самый старый ключ.
	for i := 0; i < 8; i++ {
		tl.Add(moveKey(evrp.NodeID(100+i), 0, 1), 1000)
	}
	if tl.IsTabu(k, 0) {
		t.Fatalf("evicted key is still tabu")
	}
}

func TestSolve(t *testing.T) {
	for _, nb := range []Neighborhood{NeighborhoodInsert, NeighborhoodSwap} {
		t.Run(string(nb), func(t *testing.T) {
			inst := evrptest.Grid(20, 3, 2, 41)
			cfg := DefaultConfig()
			cfg.Iterations = 60
			cfg.NeighborsPerIter = 15
			cfg.Neighborhood = nb
			s, err := New(cfg, rand.New(rand.NewSource(2)))
			if err != nil {
				t.Fatal(err)
			}
			res, err := s.Solve(context.Background(), inst)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			evrptest.CheckInvariants(t, inst, res.Solution)
			if got := evrptest.RouteLength(inst, res.Solution.Routes[0]) + evrptest.RouteLength(inst, res.Solution.Routes[1]); math.Abs(got-res.Distance) > 1e-9 {
				t.Fatalf("Distance = %v, routes sum to %v", res.Distance, got)
			}
		})
	}
}

func TestSolveSquare(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 30
	s, err := New(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Solve(context.Background(), evrptest.Square(t))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(res.Distance-14) > 1e-9 {
		t.Fatalf("Distance = %v, want 14", res.Distance)
	}
}

func TestSolveReportsNoFeasibleSolution(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	s, err := New(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Solve(context.Background(), evrptest.Degenerate(t)); !errors.Is(err, opt.ErrNoFeasibleSolution) {
		t.Fatalf("err = %v, want ErrNoFeasibleSolution", err)
	}
}
