// Package robustness implements C10: given a witness transition set for
// one parametrisation, accumulate reaching probability under uniform
// branching to estimate how robustly the property holds. Grounded on
// original_source/synthesis/robustness_compute.hpp
// (computeExits/setInitials/compute/getRobustness).
package robustness

import "parsybone/internal/witness"

// Compute runs lowerBound rounds of uniform-branching probability
// propagation over the witness transition set (stateCount is the
// product's total state count, for sizing the probability vector) and
// returns the summed probability mass landing on final states.
func Compute(stateCount int, initials, finals []int, edges []witness.Edge, lowerBound int) float64 {
	if len(initials) == 0 {
		return 0
	}
	exits := computeExits(stateCount, edges)

	prob := make([]float64, stateCount)
	share := 1.0 / float64(len(initials))
	for _, s := range initials {
		prob[s] += share
	}

	for i := 0; i < lowerBound; i++ {
		next := make([]float64, stateCount)
		for _, e := range edges {
			next[e.Target] += prob[e.Source] / float64(exits[e.Source])
		}
		prob = next
	}

	var total float64
	for _, f := range finals {
		total += prob[f]
	}
	return total
}

// computeExits counts, per state, how many witness-transition edges
// leave it, counting terminal states (exits==0) as having a single exit
// so probability mass is never divided by zero. Mass sitting on a state
// with no witness edge is not carried into the next round.
func computeExits(stateCount int, edges []witness.Edge) []int {
	exits := make([]int, stateCount)
	for _, e := range edges {
		exits[e.Source]++
	}
	for i := range exits {
		if exits[i] == 0 {
			exits[i] = 1
		}
	}
	return exits
}
