package evrp

import (
	"fmt"
	"math"
)

// Rule names one feasibility condition, in the order Check tests them.
type Rule string

const (
	RuleVehicleCount   Rule = "vehicle-count"
	RuleDuplicateVisit Rule = "duplicate-visit"
	RuleCoverage       Rule = "coverage"
	RuleDepotBounds    Rule = "depot-bounds"
	RuleCapacity       Rule = "capacity"
	RuleBattery        Rule = "battery"
)

// Violation describes the first feasibility rule a solution breaks.
type Violation struct {
	Rule   Rule
	Route  int
	Node   NodeID
	Detail string
}

func (v *Violation) Error() string {
	if v.Route < 0 {
		return fmt.Sprintf("infeasible (%s): %s", v.Rule, v.Detail)
	}
	return fmt.Sprintf("infeasible (%s) in route %d at node %d: %s", v.Rule, v.Route, v.Node, v.Detail)
}

type Evaluator struct {
	inst *Instance
}

func NewEvaluator(inst *Instance) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{inst: inst}, nil
}

// Evaluate sums the euclidean length of every leg of every route. A stop
// unknown to the instance makes the solution cost +Inf.
func (e *Evaluator) Evaluate(sol Solution) float64 {
	score := 0.0
	for _, r := range sol.Routes {
		for _, id := range r {
			if !e.inst.HasNode(id) {
				return math.Inf(1)
			}
		}
		for j := 1; j < len(r); j++ {
			score += e.inst.Distance(r[j-1], r[j])
		}
	}
	return score
}

func (e *Evaluator) IsFeasible(sol Solution) bool {
	return e.Check(sol) == nil
}

// Check returns nil for a feasible solution, otherwise a *Violation for the
// first rule that fails.
func (e *Evaluator) Check(sol Solution) error {
	inst := e.inst

	if len(sol.Routes) != inst.Vehicles {
		return &Violation{
			Rule:   RuleVehicleCount,
			Route:  -1,
			Detail: fmt.Sprintf("%d routes for %d vehicles", len(sol.Routes), inst.Vehicles),
		}
	}

	// Каждый клиент посещается не более одного раза
	visited := make([]bool, inst.NumCustomers())
	covered := 0
	for ri, r := range sol.Routes {
		for _, id := range r {
			if id == Depot || inst.IsChargeStation(id) {
				continue
			}
			idx := inst.CustomerIndex(id)
			if idx < 0 {
				return &Violation{Rule: RuleCoverage, Route: ri, Node: id, Detail: "unknown node"}
			}
			if visited[idx] {
				return &Violation{Rule: RuleDuplicateVisit, Route: ri, Node: id, Detail: "customer visited twice"}
			}
			visited[idx] = true
			covered++
		}
	}

	// Каждый клиент посещён
	if covered != inst.NumCustomers()-1 {
		return &Violation{
			Rule:   RuleCoverage,
			Route:  -1,
			Detail: fmt.Sprintf("%d of %d customers visited", covered, inst.NumCustomers()-1),
		}
	}

	for ri, r := range sol.Routes {
		if len(r) == 0 {
			return &Violation{Rule: RuleDepotBounds, Route: ri, Detail: "empty route"}
		}
		if r[0] != Depot || r[len(r)-1] != Depot {
			return &Violation{Rule: RuleDepotBounds, Route: ri, Node: r[0], Detail: "route must start and end at the depot"}
		}
	}

	for ri, r := range sol.Routes {
		load := 0.0
		for _, id := range r {
			if !inst.IsChargeStation(id) {
				load += inst.Demand(id)
			}
		}
		if load > inst.CarryingCapacity {
			return &Violation{
				Rule:   RuleCapacity,
				Route:  ri,
				Node:   r[len(r)-1],
				Detail: fmt.Sprintf("load %.2f exceeds capacity %.2f", load, inst.CarryingCapacity),
			}
		}
	}

	// Заряд батареи восстанавливается на депо и станциях зарядки
	for ri, r := range sol.Routes {
		battery := inst.BatteryCapacity
		for j, id := range r {
			if inst.IsChargeStation(id) {
				battery = inst.BatteryCapacity
			} else {
				battery -= inst.Consumption(r[j-1], id)
			}
			if battery < 0 {
				return &Violation{
					Rule:   RuleBattery,
					Route:  ri,
					Node:   id,
					Detail: fmt.Sprintf("battery %.4f below zero", battery),
				}
			}
		}
	}

	return nil
}

// IsBetter reports whether a beats b. A nil candidate never wins, a nil
// incumbent always loses. Feasibility is not checked here; a solution with
// unknown stops costs +Inf and never beats a known one.
func (e *Evaluator) IsBetter(a, b *Solution) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return e.Evaluate(*a) < e.Evaluate(*b)
}
