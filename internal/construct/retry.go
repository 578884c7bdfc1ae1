package construct

import (
	"fmt"

	"evrp/internal/evrp"
	"evrp/internal/opt"
)

// Retry calls build until accept approves the result or attempts run out.
// It returns the accepted solution and the number of attempts used; when no
// attempt is accepted the error wraps opt.ErrNoFeasibleSolution.
func Retry(attempts int, build func() evrp.Solution, accept func(evrp.Solution) bool) (evrp.Solution, int, error) {
	for i := 1; i <= attempts; i++ {
		sol := build()
		if accept(sol) {
			return sol, i, nil
		}
	}
	return evrp.Solution{}, attempts, fmt.Errorf("%w after %d attempts", opt.ErrNoFeasibleSolution, attempts)
}
