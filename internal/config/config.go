package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"evrp/internal/aco"
	"evrp/internal/ga"
	"evrp/internal/sa"
	"evrp/internal/ts"
)

// File is the YAML configuration of the benchmark CLI. Keys missing from the
// file keep their defaults.
type File struct {
	ACO   aco.Config `yaml:"aco"`
	GA    ga.Config  `yaml:"ga"`
	SA    sa.Config  `yaml:"sa"`
	TS    ts.Config  `yaml:"ts"`
	Bench Bench      `yaml:"bench"`
}

type Bench struct {
	Runs               int           `yaml:"runs"`
	Seed               int64         `yaml:"seed"`
	PerRunTimeout      time.Duration `yaml:"per_run_timeout"`
	MaxTimePerInstance time.Duration `yaml:"max_time_per_instance"`
	// Expected maps an instance file name to the distance a run has to reach.
	Expected map[string]float64 `yaml:"expected"`
}

func Default() File {
	return File{
		ACO: aco.DefaultConfig(),
		GA:  ga.DefaultConfig(),
		SA:  sa.DefaultConfig(),
		TS:  ts.DefaultConfig(),
		Bench: Bench{
			Runs:               1,
			Seed:               1000,
			MaxTimePerInstance: 60 * time.Second,
			Expected: map[string]float64{
				"instancia_00.txt": 245.7,
				"instancia_01.txt": 484.41,
				"instancia_02.txt": 813.00,
				"instancia_03.txt": 807.04,
				"instancia_04.txt": 1150.00,
				"instancia_05.txt": 1122.45,
				"instancia_06.txt": 1784.10,
				"instancia_07.txt": 2349.78,
			},
		},
	}
}

// Load overlays the YAML file at path on Default and validates the result.
func Load(path string) (File, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (f File) Validate() error {
	if err := f.ACO.Validate(); err != nil {
		return fmt.Errorf("aco: %w", err)
	}
	if err := f.GA.Validate(); err != nil {
		return fmt.Errorf("ga: %w", err)
	}
	if err := f.SA.Validate(); err != nil {
		return fmt.Errorf("sa: %w", err)
	}
	if err := f.TS.Validate(); err != nil {
		return fmt.Errorf("ts: %w", err)
	}
	if f.Bench.Runs <= 0 {
		return fmt.Errorf("bench: runs must be > 0 (got %d)", f.Bench.Runs)
	}
	if f.Bench.PerRunTimeout < 0 || f.Bench.MaxTimePerInstance < 0 {
		return fmt.Errorf("bench: timeouts must be >= 0")
	}
	return nil
}
