package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"evrp/internal/aco"
	"evrp/internal/evrp"
	"evrp/internal/evrp/evrptest"
	"evrp/internal/opt"
)

// stubOptimizer возвращает заранее заданный результат.
type stubOptimizer struct {
	res opt.Result
	err error
}

func (s stubOptimizer) Solve(ctx context.Context, inst *evrp.Instance) (opt.Result, error) {
	return s.res, s.err
}

func stubAlgorithm(name string, res opt.Result, err error) Algorithm {
	return Algorithm{Name: name, Factory: func(int64) opt.Optimizer { return stubOptimizer{res: res, err: err} }}
}

func squareCase(t *testing.T) Case {
	return Case{Name: "square", Instance: evrptest.Square(t), Expected: 15}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 2, 6})
	if s.N != 3 || s.Best != 2 || s.Mean != 4 || math.Abs(s.Std-2) > 1e-12 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if empty := Summarize([]float64(nil)); empty.N != 0 || empty.Mean != 0 {
		t.Fatalf("unexpected stats for empty input %+v", empty)
	}
	if one := Summarize([]int{7}); one.Std != 0 || one.Best != 7 {
		t.Fatalf("unexpected stats for one value %+v", one)
	}
}

func TestRunCaseCollectsFeasibleRuns(t *testing.T) {
	c := squareCase(t)
	sol := evrp.Solution{Routes: []evrp.Route{{1, 2, 3, 4, 1}}}
	algo := stubAlgorithm("stub", opt.Result{Solution: sol, Distance: 99, Feasible: true, Evaluations: 3}, nil)

	m := NewMetrics()
	r := Runner{Runs: 3, BaseSeed: 1, Metrics: m}
	rec, err := r.RunCase(context.Background(), c, algo)
	if err != nil {
		t.Fatalf("RunCase: %v", err)
	}
	if rec.Feasible != 3 || rec.Runs != 3 {
		t.Fatalf("feasible=%d runs=%d", rec.Feasible, rec.Runs)
	}
	// Длина пересчитывается по решению, а не берётся из результата.
	if math.Abs(rec.DistanceBest-14) > 1e-9 || rec.DistanceStd != 0 {
		t.Fatalf("DistanceBest=%v DistanceStd=%v", rec.DistanceBest, rec.DistanceStd)
	}
	if !rec.MeetsExpected || !rec.WithinTimeLimit {
		t.Fatalf("MeetsExpected=%v WithinTimeLimit=%v", rec.MeetsExpected, rec.WithinTimeLimit)
	}
	if rec.EvaluationsMean != 3 || rec.RunID == "" || rec.Customers != 3 {
		t.Fatalf("unexpected record %+v", rec)
	}

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				found[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				found[mf.GetName()] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				found[mf.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	if found["evrp_runs_total"] != 3 || found["evrp_evaluations_total"] != 9 || found["evrp_run_duration_seconds"] != 3 {
		t.Fatalf("unexpected metrics %v", found)
	}
	if math.Abs(found["evrp_best_distance"]-14) > 1e-9 {
		t.Fatalf("evrp_best_distance = %v", found["evrp_best_distance"])
	}
}

func TestRunCaseRechecksClaimedFeasibility(t *testing.T) {
	c := squareCase(t)
	broken := evrp.Solution{Routes: []evrp.Route{{1, 2, 3, 1}}}
	algo := stubAlgorithm("liar", opt.Result{Solution: broken, Feasible: true}, nil)

	rec, err := Runner{Runs: 2}.RunCase(context.Background(), c, algo)
	if err != nil {
		t.Fatalf("RunCase: %v", err)
	}
	if rec.Feasible != 0 || rec.MeetsExpected || rec.Best.Routes != nil {
		t.Fatalf("an infeasible solution was accepted: %+v", rec)
	}
}

func TestRunCaseToleratesNoFeasibleSolution(t *testing.T) {
	c := squareCase(t)
	algo := stubAlgorithm("none", opt.Result{}, opt.ErrNoFeasibleSolution)

	rec, err := Runner{Runs: 2}.RunCase(context.Background(), c, algo)
	if err != nil {
		t.Fatalf("RunCase: %v", err)
	}
	if rec.Feasible != 0 {
		t.Fatalf("Feasible = %d", rec.Feasible)
	}
}

func TestRunCaseFailsOnSolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Runner{Runs: 1}.RunCase(context.Background(), squareCase(t), stubAlgorithm("bad", opt.Result{}, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunCaseWithACO(t *testing.T) {
	cfg := aco.DefaultConfig()
	cfg.Iterations = 5
	cfg.Ants = 5
	algo := Algorithm{Name: "ACO", Factory: func(seed int64) opt.Optimizer {
		s, err := aco.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}}

	c := RandomCase(20, 2, 2, 77)
	r := Runner{Runs: 2, BaseSeed: 10, PerRunTimeout: time.Minute}
	rec, err := r.RunCase(context.Background(), c, algo)
	if err != nil {
		t.Fatalf("RunCase: %v", err)
	}
	if rec.Feasible != 2 {
		t.Fatalf("Feasible = %d, want 2", rec.Feasible)
	}
	evrptest.CheckInvariants(t, c.Instance, rec.Best)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.csv")
	records := []Record{{
		RunID:         "id-1",
		Algo:          "ACO",
		Instance:      "square",
		Customers:     3,
		Vehicles:      1,
		Runs:          1,
		Feasible:      1,
		DistanceBest:  14,
		MeetsExpected: true,
		System:        SysInfo{Platform: "linux", CPU: "cpu", RAM: "1 GB"},
	}}
	if err := WriteCSV(path, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || len(rows[0]) != len(rows[1]) {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[0][0] != "run_id" || rows[1][1] != "ACO" || rows[1][10] != "14.000000" {
		t.Fatalf("unexpected content %v", rows)
	}
}

func TestLoadCases(t *testing.T) {
	dir := t.TempDir()
	text := strings.Join([]string{
		"OPTIMUM: 14", "VEHICLES: 1", "DIMENSION: 4", "STATIONS: 0",
		"CAPACITY: 100", "ENERGY_CAPACITY: 100", "ENERGY_CONSUMPTION: 1",
		"NODE_COORD_SECTION", "1 0 0", "2 3 0", "3 3 4", "4 0 4",
		"SECCION_DEMANDA", "1 0", "2 1", "3 1", "4 1",
		"ID_NODOS_ESTACIONES_CARGA", "",
	}, "\n")
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadCases(dir, map[string]float64{"a.txt": 14})
	if err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
	if len(cases) != 2 || cases[0].Name != "a.txt" || cases[0].Expected != 14 || cases[1].Expected != 0 {
		t.Fatalf("unexpected cases %+v", cases)
	}
	if _, err := LoadCases(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for an empty directory")
	}
}

func TestMetricsWriteFile(t *testing.T) {
	m := NewMetrics()
	m.Runs.WithLabelValues("ACO", "square", statusFeasible).Inc()
	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `evrp_runs_total{algo="ACO",instance="square",status="feasible"} 1`) {
		t.Fatalf("metrics file does not contain the run counter:\n%s", data)
	}
}
