package evrp_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"evrp/internal/evrp"
)

const sampleInstance = `OPTIMUM: 20.0
VEHICLES: 1
DIMENSION: 3
STATIONS: 1
CAPACITY: 10
ENERGY_CAPACITY: 7
ENERGY_CONSUMPTION: 1.0
NODE_COORD_SECTION
1 0 0
2 3 0
3 6 0
4 3 4
SECCION_DEMANDA
1 0
2 1
3 1

ID_NODOS_ESTACIONES_CARGA
4
`

func TestParse(t *testing.T) {
	inst, err := evrp.Parse(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if inst.OptimumValue != 20 {
		t.Errorf("OptimumValue = %v, want 20", inst.OptimumValue)
	}
	if inst.Vehicles != 1 || inst.CarryingCapacity != 10 || inst.BatteryCapacity != 7 || inst.ConsumptionRate != 1 {
		t.Errorf("unexpected fleet %+v", inst.Fleet)
	}
	if inst.NumCustomers() != 3 {
		t.Errorf("NumCustomers = %d, want 3", inst.NumCustomers())
	}
	if !inst.IsChargeStation(4) || !inst.IsChargeStation(evrp.Depot) {
		t.Errorf("stations not registered: %v", inst.ChargeStations())
	}
	if p, ok := inst.Coordinates(4); !ok || p.X != 3 || p.Y != 4 {
		t.Errorf("Coordinates(4) = %v, %v", p, ok)
	}
	if inst.Demand(3) != 1 {
		t.Errorf("Demand(3) = %v, want 1", inst.Demand(3))
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"truncated header":  "OPTIMUM: 1\nVEHICLES: 1\n",
		"bad vehicles":      strings.Replace(sampleInstance, "VEHICLES: 1", "VEHICLES: one", 1),
		"no demand marker":  strings.Split(sampleInstance, "SECCION_DEMANDA")[0],
		"no station marker": strings.Split(sampleInstance, "ID_NODOS_ESTACIONES_CARGA")[0],
		"bad coordinate":    strings.Replace(sampleInstance, "2 3 0", "2 x 0", 1),
		"short demand line": strings.Replace(sampleInstance, "2 1\n", "2\n", 1),
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := evrp.Parse(strings.NewReader(text)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFileNamesInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instancia_99.txt")
	if err := os.WriteFile(path, []byte(sampleInstance), 0o644); err != nil {
		t.Fatal(err)
	}
	inst, err := evrp.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if inst.Name != "instancia_99.txt" {
		t.Errorf("Name = %q", inst.Name)
	}
	if _, err := evrp.LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Errorf("expected error for a missing file")
	}
}
