package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"evrp/internal/aco"
	"evrp/internal/bench"
	"evrp/internal/config"
	"evrp/internal/ga"
	"evrp/internal/opt"
	"evrp/internal/sa"
	"evrp/internal/ts"
)

// Фабрики

func newACOFactory(cfg aco.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := aco.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newGAFactory(cfg ga.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ga.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newSAFactory(cfg sa.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := sa.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newTSFactory(cfg ts.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ts.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func main() {
	var (
		cfgPath      = flag.String("config", "", "YAML-файл конфигурации алгоритмов и бенчмарка (необязательный)")
		instances    = flag.String("instances", "", "каталог с файлами экземпляров")
		random       = flag.String("random", "", "случайные экземпляры: клиенты X машины (через запятую), например 20x3,50x5")
		stations     = flag.Int("stations", 4, "количество станций зарядки в случайных экземплярах")
		instanceSeed = flag.Int64("instance_seed", 777, "базовый сид для генерации случайных экземпляров")
		algos        = flag.String("algos", "ACO,GA", "список алгоритмов: ACO, GA, SA, TS (через запятую)")
		out          = flag.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		metricsOut   = flag.String("metrics", "", "путь к файлу метрик Prometheus (text format); пусто — не писать")
		verbose      = flag.Bool("v", false, "подробный журнал (debug)")

		runs      = flag.Int("runs", 0, "количество запусков каждого алгоритма (0 — из конфигурации)")
		baseSeed  = flag.Int64("seed", 0, "базовый сид для запусков алгоритмов (0 — из конфигурации)")
		perRunTO  = flag.Duration("per_run_timeout", 0, "таймаут одного запуска; 0 — из конфигурации")
		maxTimeTO = flag.Duration("max_time_per_instance", 0, "средний бюджет времени на запуск; 0 — из конфигурации")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Конфликт в конфигурации: %v", err)
		}
	}
	if *runs > 0 {
		cfg.Bench.Runs = *runs
	}
	if *baseSeed != 0 {
		cfg.Bench.Seed = *baseSeed
	}
	if *perRunTO > 0 {
		cfg.Bench.PerRunTimeout = *perRunTO
	}
	if *maxTimeTO > 0 {
		cfg.Bench.MaxTimePerInstance = *maxTimeTO
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Конфликт в конфигурации: %v", err)
	}

	var cases []bench.Case
	if *instances != "" {
		loaded, err := bench.LoadCases(*instances, cfg.Bench.Expected)
		if err != nil {
			log.Fatalf("Ошибка чтения экземпляров: %v", err)
		}
		cases = append(cases, loaded...)
	}
	if *random != "" {
		generated, err := parsePairs(*random, *stations, *instanceSeed)
		if err != nil {
			log.Fatalf("Конфликт: %v", err)
		}
		cases = append(cases, generated...)
	}
	if len(cases) == 0 {
		fmt.Fprintln(os.Stderr, "нужно указать -instances или -random")
		flag.Usage()
		os.Exit(2)
	}

	available := map[string]bench.Algorithm{
		"ACO": {Name: "ACO", Factory: newACOFactory(cfg.ACO)},
		"GA":  {Name: "GA", Factory: newGAFactory(cfg.GA)},
		"SA":  {Name: "SA", Factory: newSAFactory(cfg.SA)},
		"TS":  {Name: "TS", Factory: newTSFactory(cfg.TS)},
	}

	var selected []bench.Algorithm
	for _, a := range splitCSV(*algos) {
		al, ok := available[strings.ToUpper(a)]
		if !ok {
			log.Fatalf("Алгоритм не предоставлен в программе %q; доступные: %v", a, keys(available))
		}
		selected = append(selected, al)
	}

	metrics := bench.NewMetrics()
	runner := bench.Runner{
		Runs:               cfg.Bench.Runs,
		BaseSeed:           cfg.Bench.Seed,
		PerRunTimeout:      cfg.Bench.PerRunTimeout,
		MaxTimePerInstance: cfg.Bench.MaxTimePerInstance,
		Metrics:            metrics,
		System:             bench.CollectSysInfo(),
	}
	log.Infof("Система: %s, %s, %s", runner.System.Platform, runner.System.CPU, runner.System.RAM)

	ctx := context.Background()
	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			log.Infof("Запущен алгоритм %s; экземпляр %s: %d клиентов, %d машин (общее кол-во запусков=%d)",
				a.Name, c.Name, c.Instance.NumCustomers()-1, c.Instance.Vehicles, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				log.Fatalf("Ошибка: %v", err)
			}
			records = append(records, rec)

			if rec.Feasible == 0 {
				log.Warnf("  %s: допустимое решение не найдено", c.Name)
				continue
			}
			fmt.Printf("  Длина маршрутов: лучшее=%.2f среднее=%.2f стандартное отклонение=%.2f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.DistanceBest, rec.DistanceMean, rec.DistanceStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
			fmt.Print(indent(rec.Best.String(), "    "))
			if !rec.MeetsExpected {
				log.Warnf("  %s: качество недостаточно: %.2f vs %.2f", c.Name, rec.DistanceBest, rec.Expected)
			}
			if !rec.WithinTimeLimit {
				log.Warnf("  %s: превышен бюджет времени %v на запуск", c.Name, runner.MaxTimePerInstance)
			}
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		log.Fatalf("Ошибка при записи в CSV: %v", err)
	}
	log.Infof("Saved: %s", *out)

	if *metricsOut != "" {
		if err := metrics.WriteFile(*metricsOut); err != nil {
			log.Fatalf("Ошибка при записи метрик: %v", err)
		}
		log.Infof("Metrics: %s", *metricsOut)
	}
}

// helpers

func parsePairs(s string, stations int, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		cv := strings.Split(p, "x")
		if len(cv) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x5", p)
		}
		customers, err := atoiStrict(cv[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества клиентов: %w", p, err)
		}
		vehicles, err := atoiStrict(cv[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if customers <= 0 || vehicles <= 0 || stations < 0 {
			return nil, fmt.Errorf("пара %q: количество клиентов и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(customers)*100 + int64(vehicles)
		cases = append(cases, bench.RandomCase(customers, stations, vehicles, seed))
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}
