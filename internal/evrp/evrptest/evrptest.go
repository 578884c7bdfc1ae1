// Package evrptest provides small instances and invariant checks shared by the
// solver tests.
package evrptest

import (
	"math/rand"
	"testing"

	"evrp/internal/evrp"
)

func mustInstance(t testing.TB, fleet evrp.Fleet, coords map[evrp.NodeID]evrp.Point, demand map[evrp.NodeID]float64, stations []evrp.NodeID) *evrp.Instance {
	t.Helper()
	inst, err := evrp.NewInstance(fleet, coords, demand, stations)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

// Square: depot and three customers on the corners of a 3x4 rectangle, one
// vehicle, the depot as the only charge station. Capacity and battery are
// large enough that no detour is needed.
func Square(t testing.TB) *evrp.Instance {
	return mustInstance(t,
		evrp.Fleet{Vehicles: 1, CarryingCapacity: 100, BatteryCapacity: 100, ConsumptionRate: 1},
		map[evrp.NodeID]evrp.Point{1: {X: 0, Y: 0}, 2: {X: 3, Y: 0}, 3: {X: 3, Y: 4}, 4: {X: 0, Y: 4}},
		map[evrp.NodeID]float64{1: 0, 2: 1, 3: 1, 4: 1},
		nil,
	)
}

// Detour: customers 2 (3,0) and 3 (6,0), charge station 4 at (3,4). The
// battery equals the consumption depot->2 plus 2->4.
func Detour(t testing.TB) *evrp.Instance {
	return mustInstance(t,
		evrp.Fleet{Vehicles: 1, CarryingCapacity: 10, BatteryCapacity: 7, ConsumptionRate: 1},
		map[evrp.NodeID]evrp.Point{1: {X: 0, Y: 0}, 2: {X: 3, Y: 0}, 3: {X: 6, Y: 0}, 4: {X: 3, Y: 4}},
		map[evrp.NodeID]float64{1: 0, 2: 1, 3: 1},
		[]evrp.NodeID{4},
	)
}

// Degenerate: customer 3 demands more than a vehicle can carry.
func Degenerate(t testing.TB) *evrp.Instance {
	return mustInstance(t,
		evrp.Fleet{Vehicles: 2, CarryingCapacity: 10, BatteryCapacity: 100, ConsumptionRate: 1},
		map[evrp.NodeID]evrp.Point{1: {X: 0, Y: 0}, 2: {X: 1, Y: 0}, 3: {X: 2, Y: 0}},
		map[evrp.NodeID]float64{1: 0, 2: 5, 3: 20},
		nil,
	)
}

// Grid returns a seeded random instance.
func Grid(customers, stations, vehicles int, seed int64) *evrp.Instance {
	return evrp.RandomInstance(customers, stations, vehicles, rand.New(rand.NewSource(seed)))
}

// CheckInvariants verifies a solution without the Evaluator: coverage of
// every customer exactly once, depot at both ends, capacity and the battery
// trace.
func CheckInvariants(t testing.TB, inst *evrp.Instance, sol evrp.Solution) {
	t.Helper()
	if len(sol.Routes) != inst.Vehicles {
		t.Fatalf("got %d routes, want %d", len(sol.Routes), inst.Vehicles)
	}
	seen := make(map[evrp.NodeID]int)
	for ri, r := range sol.Routes {
		if len(r) < 2 || r[0] != evrp.Depot || r[len(r)-1] != evrp.Depot {
			t.Fatalf("route %d does not start and end at the depot: %v", ri, r)
		}
		load := 0.0
		battery := inst.BatteryCapacity
		for j, id := range r {
			if inst.IsChargeStation(id) {
				battery = inst.BatteryCapacity
				continue
			}
			seen[id]++
			load += inst.Demand(id)
			battery -= inst.Consumption(r[j-1], id)
			if battery < 0 {
				t.Fatalf("route %d: battery %.4f below zero at node %d", ri, battery, id)
			}
		}
		if load > inst.CarryingCapacity {
			t.Fatalf("route %d: load %.2f exceeds capacity %.2f", ri, load, inst.CarryingCapacity)
		}
	}
	for _, id := range inst.Customers() {
		if seen[id] != 1 {
			t.Fatalf("customer %d visited %d times", id, seen[id])
		}
	}
	if len(seen) != inst.NumCustomers()-1 {
		t.Fatalf("visited %d distinct customers, want %d", len(seen), inst.NumCustomers()-1)
	}
}

// RouteLength sums euclidean distances along r.
func RouteLength(inst *evrp.Instance, r evrp.Route) float64 {
	total := 0.0
	for j := 1; j < len(r); j++ {
		total += inst.Distance(r[j-1], r[j])
	}
	return total
}
