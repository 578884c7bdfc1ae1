package evrp

import (
	"strconv"
	"strings"
)

// Route is the ordered list of stops of one vehicle.
type Route []NodeID

// Solution holds one route per vehicle.
type Solution struct {
	Routes []Route
}

func (s Solution) Clone() Solution {
	out := Solution{Routes: make([]Route, len(s.Routes))}
	for i, r := range s.Routes {
		out.Routes[i] = append(Route(nil), r...)
	}
	return out
}

// Customers returns the visited customers in route order, without the depot
// and charge stations.
func (s Solution) Customers(inst *Instance) []NodeID {
	out := make([]NodeID, 0, inst.NumCustomers())
	for _, r := range s.Routes {
		for _, id := range r {
			if !inst.IsChargeStation(id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (r Route) String() string {
	var b strings.Builder
	for i, id := range r {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

func (s Solution) String() string {
	var b strings.Builder
	for i, r := range s.Routes {
		b.WriteString("vehicle ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
