package bench

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"evrp/internal/evrp"
)

type Case struct {
	Name     string
	Instance *evrp.Instance
	// Expected - требуемое качество решения; 0 - без проверки.
	Expected float64
}

// LoadCases parses every regular file of dir, in name order.
func LoadCases(dir string, expected map[string]float64) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	cases := make([]Case, 0, len(names))
	for _, name := range names {
		inst, err := evrp.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cases = append(cases, Case{Name: name, Instance: inst, Expected: expected[name]})
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no instance files in %s", dir)
	}
	return cases, nil
}

// RandomCase генерирует экземпляр с фиксированным сидом.
func RandomCase(customers, stations, vehicles int, seed int64) Case {
	inst := evrp.RandomInstance(customers, stations, vehicles, rand.New(rand.NewSource(seed)))
	return Case{Name: inst.Name, Instance: inst}
}
