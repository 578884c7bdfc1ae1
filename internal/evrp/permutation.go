package evrp

import "fmt"

// ValidatePermutation checks that perm lists every customer of inst exactly
// once, depot and charge stations excluded.
func ValidatePermutation(inst *Instance, perm []NodeID) error {
	n := inst.NumCustomers() - 1
	if len(perm) != n {
		return fmt.Errorf("permutation length must be %d (got %d)", n, len(perm))
	}
	seen := make([]bool, inst.NumCustomers())
	for i, id := range perm {
		if !inst.IsCustomer(id) {
			return fmt.Errorf("perm[%d]=%d is not a customer", i, id)
		}
		idx := inst.CustomerIndex(id)
		if seen[idx] {
			return fmt.Errorf("duplicate customer id %d in permutation", id)
		}
		seen[idx] = true
	}
	return nil
}
