package robustness

import (
	"math"
	"testing"

	"parsybone/internal/witness"
)

func TestComputeTrivialSelfLoopGivesFullRobustness(t *testing.T) {
	// A single final state with no outgoing witness edges and
	// lowerBound 0: no propagation round runs, so all starting
	// probability mass stays on the final state and robustness is 1.0
	// (spec.md §8 scenario 5: trivial property, depth 0).
	got := Compute(1, []int{0}, []int{0}, nil, 0)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("Compute = %v, want 1.0", got)
	}
}

func TestComputeSplitsProbabilityAcrossExits(t *testing.T) {
	// state 0 --1--> state1 (final), state0 --1--> state2 (final):
	// two exits, so after one round each final state holds 0.5.
	edges := []witness.Edge{{Source: 0, Target: 1}, {Source: 0, Target: 2}}
	got := Compute(3, []int{0}, []int{1, 2}, edges, 1)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("Compute = %v, want 1.0 (all mass landed on the finals)", got)
	}
}

func TestComputeNoInitialsIsZero(t *testing.T) {
	if got := Compute(1, nil, []int{0}, nil, 1); got != 0 {
		t.Fatalf("Compute with no initials = %v, want 0", got)
	}
}
