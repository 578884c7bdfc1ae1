package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"evrp/internal/evrp"
	"evrp/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

type Record struct {
	RunID     string
	Algo      string
	Instance  string
	Customers int
	Vehicles  int
	Runs      int
	Feasible  int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	DistanceBest float64
	DistanceMean float64
	DistanceStd  float64

	EvaluationsMean float64

	Optimum         float64
	Expected        float64
	MeetsExpected   bool
	WithinTimeLimit bool

	Best   evrp.Solution
	System SysInfo
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	// MaxTimePerInstance - средний бюджет времени на один запуск; 0 - без проверки.
	MaxTimePerInstance time.Duration

	Metrics *Metrics
	System  SysInfo
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	inst := c.Instance
	eval, err := evrp.NewEvaluator(inst)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", c.Name, err)
	}

	distances := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	evals := make([]int, 0, r.Runs)
	var best *opt.Result
	var total time.Duration

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()
		total += dur

		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		evals = append(evals, res.Evaluations)
		r.observe(algo.Name, c.Name, dur, res.Evaluations)

		status := statusFeasible
		switch {
		case err != nil && ctx.Err() != nil:
			return Record{}, fmt.Errorf("run %d: cancelled: %w", i, err)
		case err != nil && runCtx.Err() != nil:
			log.Warnf("[bench] %s/%s run %d: timeout after %v", algo.Name, c.Name, i, dur)
			status = statusTimeout
		case errors.Is(err, opt.ErrNoFeasibleSolution):
			log.Warnf("[bench] %s/%s run %d: %v", algo.Name, c.Name, i, err)
			status = statusInfeasible
		case err != nil:
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}

		// Независимая проверка допустимости возвращённого решения
		if res.Feasible {
			if verr := eval.Check(res.Solution); verr != nil {
				log.Warnf("[bench] %s/%s run %d: %v", algo.Name, c.Name, i, verr)
				res.Feasible = false
				status = statusInfeasible
			}
		} else if status == statusFeasible {
			status = statusInfeasible
		}
		if r.Metrics != nil {
			r.Metrics.Runs.WithLabelValues(algo.Name, c.Name, status).Inc()
		}
		if !res.Feasible {
			continue
		}

		res.Distance = eval.Evaluate(res.Solution)
		distances = append(distances, res.Distance)
		if best == nil || res.Distance < best.Distance {
			kept := res
			best = &kept
		}
	}

	dStats := Summarize(distances)
	tStats := Summarize(timesMs)
	eStats := Summarize(evals)

	rec := Record{
		RunID:     uuid.New().String(),
		Algo:      algo.Name,
		Instance:  c.Name,
		Customers: inst.NumCustomers() - 1,
		Vehicles:  inst.Vehicles,
		Runs:      r.Runs,
		Feasible:  dStats.N,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		DistanceBest: dStats.Best,
		DistanceMean: dStats.Mean,
		DistanceStd:  dStats.Std,

		EvaluationsMean: eStats.Mean,

		Optimum:         inst.OptimumValue,
		Expected:        c.Expected,
		WithinTimeLimit: r.MaxTimePerInstance <= 0 || r.Runs == 0 || total < r.MaxTimePerInstance*time.Duration(r.Runs),
		System:          r.System,
	}
	if best != nil {
		rec.Best = best.Solution
		rec.MeetsExpected = c.Expected <= 0 || best.Distance <= c.Expected
		if r.Metrics != nil {
			r.Metrics.BestDistance.WithLabelValues(algo.Name, c.Name).Set(best.Distance)
		}
	}
	return rec, nil
}

func (r Runner) observe(algo, instance string, dur time.Duration, evals int) {
	if r.Metrics == nil {
		return
	}
	r.Metrics.RunDuration.WithLabelValues(algo, instance).Observe(dur.Seconds())
	r.Metrics.Evaluations.WithLabelValues(algo).Add(float64(evals))
}

func WriteCSV(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"run_id", "algo", "instance", "customers", "vehicles", "runs", "feasible",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"distance_best", "distance_mean", "distance_std",
		"evaluations_mean",
		"optimum", "expected", "meets_expected", "within_time_limit",
		"platform", "cpu", "ram",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func csvRow(r Record) []string {
	itoa := strconv.Itoa
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	btoa := strconv.FormatBool
	return []string{
		r.RunID,
		r.Algo,
		r.Instance,
		itoa(r.Customers),
		itoa(r.Vehicles),
		itoa(r.Runs),
		itoa(r.Feasible),

		ftoa(r.TimeBestMs),
		ftoa(r.TimeMeanMs),
		ftoa(r.TimeStdMs),

		ftoa(r.DistanceBest),
		ftoa(r.DistanceMean),
		ftoa(r.DistanceStd),

		ftoa(r.EvaluationsMean),

		ftoa(r.Optimum),
		ftoa(r.Expected),
		btoa(r.MeetsExpected),
		btoa(r.WithinTimeLimit),

		r.System.Platform,
		r.System.CPU,
		r.System.RAM,
	}
}
