package evrp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// NodeID - идентификатор вершины из файла экземпляра (нумерация с 1).
type NodeID int

// Depot is the start and end node of every route.
const Depot NodeID = 1

type Point struct {
	X, Y float64
}

// Fleet describes the homogeneous vehicle fleet of an instance.
type Fleet struct {
	Vehicles         int
	CarryingCapacity float64
	BatteryCapacity  float64
	// ConsumptionRate is the battery drained per unit of distance (h).
	ConsumptionRate float64
}

// Instance is an immutable EVRP problem description. Build it with NewInstance;
// the zero value is not usable.
type Instance struct {
	Name string
	// OptimumValue is the best known objective value, informational only.
	OptimumValue float64
	Fleet

	coords   map[NodeID]Point
	demand   map[NodeID]float64
	stations []NodeID

	nodes     []NodeID
	slot      []int
	dist      []float64
	customers []NodeID
	custIdx   []int
	station   []bool
	closest   []NodeID
}

// NewInstance validates the raw data and precomputes distances, the customer
// index and the closest charge station of every node. The depot is always
// treated as a charge station.
func NewInstance(fleet Fleet, coords map[NodeID]Point, demand map[NodeID]float64, stations []NodeID) (*Instance, error) {
	if fleet.Vehicles <= 0 {
		return nil, fmt.Errorf("vehicles must be > 0 (got %d)", fleet.Vehicles)
	}
	if fleet.CarryingCapacity < 0 || math.IsNaN(fleet.CarryingCapacity) {
		return nil, fmt.Errorf("carrying capacity must be >= 0 (got %v)", fleet.CarryingCapacity)
	}
	if fleet.BatteryCapacity < 0 || math.IsNaN(fleet.BatteryCapacity) {
		return nil, fmt.Errorf("battery capacity must be >= 0 (got %v)", fleet.BatteryCapacity)
	}
	if fleet.ConsumptionRate < 0 || math.IsNaN(fleet.ConsumptionRate) {
		return nil, fmt.Errorf("consumption rate must be >= 0 (got %v)", fleet.ConsumptionRate)
	}
	if _, ok := coords[Depot]; !ok {
		return nil, fmt.Errorf("depot %d has no coordinates", Depot)
	}

	inst := &Instance{
		Fleet:  fleet,
		coords: make(map[NodeID]Point, len(coords)),
		demand: make(map[NodeID]float64, len(demand)),
	}
	for id, p := range coords {
		if id < 1 {
			return nil, fmt.Errorf("node id must be >= 1 (got %d)", id)
		}
		inst.coords[id] = p
	}
	for id, d := range demand {
		if _, ok := coords[id]; !ok {
			return nil, fmt.Errorf("customer %d has no coordinates", id)
		}
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("customer %d: demand must be finite and >= 0 (got %v)", id, d)
		}
		inst.demand[id] = d
	}
	// Спрос депо необязателен и по умолчанию равен нулю
	if _, ok := inst.demand[Depot]; !ok {
		inst.demand[Depot] = 0
	}

	seen := map[NodeID]bool{Depot: true}
	inst.stations = append(inst.stations, Depot)
	for _, id := range stations {
		if seen[id] {
			continue
		}
		if _, ok := coords[id]; !ok {
			return nil, fmt.Errorf("charge station %d has no coordinates", id)
		}
		if _, ok := demand[id]; ok {
			return nil, fmt.Errorf("node %d is both a customer and a charge station", id)
		}
		seen[id] = true
		inst.stations = append(inst.stations, id)
	}
	sort.Slice(inst.stations, func(i, j int) bool { return inst.stations[i] < inst.stations[j] })

	inst.precompute()
	return inst, nil
}

func (inst *Instance) precompute() {
	inst.nodes = make([]NodeID, 0, len(inst.coords))
	for id := range inst.coords {
		inst.nodes = append(inst.nodes, id)
	}
	sort.Slice(inst.nodes, func(i, j int) bool { return inst.nodes[i] < inst.nodes[j] })

	n := len(inst.nodes)
	maxID := inst.nodes[n-1]
	inst.slot = make([]int, maxID+1)
	inst.custIdx = make([]int, maxID+1)
	for i := range inst.slot {
		inst.slot[i] = -1
		inst.custIdx[i] = -1
	}
	for i, id := range inst.nodes {
		inst.slot[id] = i
	}

	// Матрица расстояний по позициям вершин
	inst.dist = make([]float64, n*n)
	for i, a := range inst.nodes {
		pa := inst.coords[a]
		for j := i + 1; j < n; j++ {
			pb := inst.coords[inst.nodes[j]]
			dx := pa.X - pb.X
			dy := pa.Y - pb.Y
			d := math.Sqrt(dx*dx + dy*dy)
			inst.dist[i*n+j] = d
			inst.dist[j*n+i] = d
		}
	}

	// Индекс клиентов: депо всегда получает индекс 0
	inst.customers = append(inst.customers, Depot)
	for _, id := range inst.nodes {
		if _, ok := inst.demand[id]; ok && id != Depot {
			inst.customers = append(inst.customers, id)
		}
	}
	for i, id := range inst.customers {
		inst.custIdx[id] = i
	}

	inst.station = make([]bool, n)
	for _, id := range inst.stations {
		inst.station[inst.slot[id]] = true
	}

	inst.closest = make([]NodeID, n)
	for i, id := range inst.nodes {
		inst.closest[i] = inst.scanClosestStation(id)
	}
}

// scanClosestStation takes the first station as the initial answer without
// measuring it; later stations replace it only when strictly closer than the
// best distance measured so far.
func (inst *Instance) scanClosestStation(id NodeID) NodeID {
	closest := NodeID(-1)
	best := math.Inf(1)
	for _, cs := range inst.stations {
		if closest == -1 {
			closest = cs
			continue
		}
		if d := inst.Distance(id, cs); d < best {
			best = d
			closest = cs
		}
	}
	return closest
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if len(inst.nodes) == 0 || inst.dist == nil {
		return errors.New("instance is not initialised (use NewInstance)")
	}
	if inst.Vehicles <= 0 {
		return fmt.Errorf("vehicles must be > 0 (got %d)", inst.Vehicles)
	}
	return nil
}

func (inst *Instance) pos(id NodeID) int {
	if id < 0 || int(id) >= len(inst.slot) {
		return -1
	}
	return inst.slot[id]
}

func (inst *Instance) mustPos(id NodeID) int {
	p := inst.pos(id)
	if p < 0 {
		panic(fmt.Sprintf("evrp: unknown node %d", id))
	}
	return p
}

// HasNode reports whether id has coordinates in the instance.
func (inst *Instance) HasNode(id NodeID) bool {
	return inst.pos(id) >= 0
}

// NumCustomers counts the demand entries, depot included.
func (inst *Instance) NumCustomers() int {
	return len(inst.customers)
}

// Customers returns the customer ids in ascending order, depot excluded.
func (inst *Instance) Customers() []NodeID {
	out := make([]NodeID, len(inst.customers)-1)
	copy(out, inst.customers[1:])
	return out
}

func (inst *Instance) Nodes() []NodeID {
	out := make([]NodeID, len(inst.nodes))
	copy(out, inst.nodes)
	return out
}

// ChargeStations returns the station ids in ascending order, depot included.
func (inst *Instance) ChargeStations() []NodeID {
	out := make([]NodeID, len(inst.stations))
	copy(out, inst.stations)
	return out
}

func (inst *Instance) Coordinates(id NodeID) (Point, bool) {
	p, ok := inst.coords[id]
	return p, ok
}

// CustomerIndex maps a demand node onto [0, NumCustomers()); the depot is 0.
// Charge stations and unknown ids map to -1.
func (inst *Instance) CustomerIndex(id NodeID) int {
	if id < 0 || int(id) >= len(inst.custIdx) {
		return -1
	}
	return inst.custIdx[id]
}

// CustomerAt is the inverse of CustomerIndex.
func (inst *Instance) CustomerAt(idx int) NodeID {
	return inst.customers[idx]
}

// IsCustomer reports whether id is a demand node other than the depot.
func (inst *Instance) IsCustomer(id NodeID) bool {
	return id != Depot && inst.CustomerIndex(id) >= 0
}

func (inst *Instance) IsChargeStation(id NodeID) bool {
	p := inst.pos(id)
	return p >= 0 && inst.station[p]
}

// Demand returns 0 for charge stations and unknown ids.
func (inst *Instance) Demand(id NodeID) float64 {
	return inst.demand[id]
}

func (inst *Instance) Distance(a, b NodeID) float64 {
	return inst.dist[inst.mustPos(a)*len(inst.nodes)+inst.mustPos(b)]
}

// Consumption is the battery needed to drive from a to b.
func (inst *Instance) Consumption(a, b NodeID) float64 {
	return inst.ConsumptionRate * inst.Distance(a, b)
}

func (inst *Instance) ClosestChargeStation(id NodeID) NodeID {
	return inst.closest[inst.mustPos(id)]
}
