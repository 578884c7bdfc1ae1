package construct

import "evrp/internal/evrp"

// Vehicle - состояние машины во время построения одного маршрута.
type Vehicle struct {
	Current evrp.NodeID
	// LastCustomer - последний посещённый клиент (или депо), станции зарядки пропускаются.
	LastCustomer evrp.NodeID
	Carry        float64
	Battery      float64
	Route        evrp.Route
	// Stops - количество клиентов, посещённых этой машиной.
	Stops int
}

// State is the construction state shared with a Selector while one solution
// is being built.
type State struct {
	inst      *evrp.Instance
	visited   []bool
	remaining int
	vehicle   Vehicle
	cand      []evrp.NodeID
}

// Selector picks the next customer for the current vehicle. Returning false
// closes the vehicle's route.
type Selector interface {
	Next(st *State) (evrp.NodeID, bool)
}

// Builder turns a Selector into one route per vehicle, honouring capacity and
// inserting charge-station detours. A Builder reuses its buffers and must not
// be shared between goroutines.
type Builder struct {
	inst *evrp.Instance
	st   State
}

func NewBuilder(inst *evrp.Instance) *Builder {
	return &Builder{
		inst: inst,
		st: State{
			inst:    inst,
			visited: make([]bool, inst.NumCustomers()),
			cand:    make([]evrp.NodeID, 0, inst.NumCustomers()),
		},
	}
}

func (b *Builder) Instance() *evrp.Instance {
	return b.inst
}

// Build constructs a full solution. Battery feasibility is only checked one
// leg ahead, so the result still has to pass the Evaluator.
func (b *Builder) Build(sel Selector) evrp.Solution {
	st := &b.st
	st.reset()

	routes := make([]evrp.Route, b.inst.Vehicles)
	for v := range routes {
		st.startVehicle()
		for st.vehicle.Carry > 0 && st.remaining > 0 {
			next, ok := sel.Next(st)
			if !ok || !st.admissible(next) {
				break
			}
			st.moveTo(next)
		}
		st.returnToDepot()
		routes[v] = st.vehicle.Route
	}
	return evrp.Solution{Routes: routes}
}

func (st *State) reset() {
	for i := range st.visited {
		st.visited[i] = false
	}
	st.visited[0] = true
	st.remaining = len(st.visited) - 1
}

func (st *State) startVehicle() {
	st.vehicle = Vehicle{
		Current:      evrp.Depot,
		LastCustomer: evrp.Depot,
		Carry:        st.inst.CarryingCapacity,
		Battery:      st.inst.BatteryCapacity,
		Route:        evrp.Route{evrp.Depot},
	}
}

func (st *State) Instance() *evrp.Instance {
	return st.inst
}

// Vehicle returns a copy of the current vehicle state.
func (st *State) Vehicle() Vehicle {
	return st.vehicle
}

func (st *State) Visited(id evrp.NodeID) bool {
	idx := st.inst.CustomerIndex(id)
	return idx >= 0 && st.visited[idx]
}

// Candidates returns the unvisited customers whose demand fits the remaining
// capacity, in ascending id order. The slice is reused by the next call.
func (st *State) Candidates() []evrp.NodeID {
	st.cand = st.cand[:0]
	for idx := 1; idx < len(st.visited); idx++ {
		if st.visited[idx] {
			continue
		}
		id := st.inst.CustomerAt(idx)
		if st.inst.Demand(id) <= st.vehicle.Carry {
			st.cand = append(st.cand, id)
		}
	}
	return st.cand
}

// Reachable reports whether the vehicle can drive to id and from there to the
// charge station closest to id without recharging first.
func (st *State) Reachable(id evrp.NodeID) bool {
	inst := st.inst
	cur := st.vehicle.Current
	need := inst.Consumption(cur, id) + inst.Consumption(id, inst.ClosestChargeStation(id))
	return st.vehicle.Battery >= need
}

func (st *State) admissible(id evrp.NodeID) bool {
	return st.inst.IsCustomer(id) && !st.Visited(id) && st.inst.Demand(id) <= st.vehicle.Carry
}

func (st *State) moveTo(id evrp.NodeID) {
	if !st.Reachable(id) {
		st.recharge()
	}
	st.step(id)
}

func (st *State) returnToDepot() {
	if !st.Reachable(evrp.Depot) {
		st.recharge()
	}
	st.step(evrp.Depot)
}

// recharge объезжает ближайшую к текущей позиции станцию зарядки.
func (st *State) recharge() {
	v := &st.vehicle
	cs := st.inst.ClosestChargeStation(v.Current)
	if cs != v.Current {
		v.Route = append(v.Route, cs)
		v.Current = cs
	}
	v.Battery = st.inst.BatteryCapacity
}

func (st *State) step(id evrp.NodeID) {
	inst := st.inst
	v := &st.vehicle
	v.Battery -= inst.Consumption(v.Current, id)
	if !inst.IsChargeStation(id) {
		v.Carry -= inst.Demand(id)
		st.visited[inst.CustomerIndex(id)] = true
		st.remaining--
		v.LastCustomer = id
		v.Stops++
	}
	v.Current = id
	v.Route = append(v.Route, id)
}
