// Package uts implements C5: the unparametrised transition system, the
// cartesian state space of species levels with transitions labelled by
// the metadata needed to test "openness" under any ParamNo in O(1).
package uts

import (
	"parsybone/internal/errs"
	"parsybone/internal/network"
	"parsybone/internal/paramspace"
)

// TransConst is the runtime transition label of spec.md §3/§4.4:
// step_size is the GLOBAL species weight (paramspace.Space.Weights[i]),
// targets is the full length-N_i target-value array for the acting
// context, req_dir/comp_value describe the direction and current level.
type TransConst struct {
	StepSize  int
	ReqDir    bool // true: up-transition (strict greater required); false: down
	CompValue int
	Targets   []int
}

// Open reports whether paramNo's decoded target value satisfies the
// direction requirement against CompValue, per spec.md §3.
func (tc TransConst) Open(paramNo int) bool {
	v := tc.Targets[(paramNo/tc.StepSize)%len(tc.Targets)]
	if tc.ReqDir {
		return v > tc.CompValue
	}
	return v < tc.CompValue
}

// isFeasible is the fast path of spec.md §4.4: drop the transition if
// no target value in `targets` could ever satisfy the open condition.
func isFeasible(targets []int, reqDir bool, compValue int) bool {
	for _, v := range targets {
		if reqDir && v > compValue {
			return true
		}
		if !reqDir && v < compValue {
			return true
		}
	}
	return false
}

// Transition is one outgoing edge of a State: the species whose level
// changes, the neighbour State's ID, and the TransConst governing it.
type Transition struct {
	Species  int
	TargetID int
	Const    TransConst
}

// State is one point in the cartesian species-level space.
type State struct {
	ID          int
	Levels      []int
	Transitions []Transition
}

// UTS is the full cartesian state space built from a network.Model and
// its paramspace.Space.
type UTS struct {
	Species []network.Species
	Maxes   []int
	States  []State

	// Jumps[i] is the additive offset in the linearised state array of
	// a +1 change on species axis i (spec.md §4.4: "neighbour-index
	// jumps").
	Jumps []int
}

// Build constructs the full UTS for m, decorating transitions using the
// parametrisation space's per-species target-value arrays.
func Build(m *network.Model, space *paramspace.Space) (*UTS, error) {
	maxes := make([]int, len(m.Species))
	for i, sp := range m.Species {
		maxes[i] = sp.MaxLevel
	}

	jumps := make([]int, len(m.Species))
	stride := 1
	for i := range m.Species {
		jumps[i] = stride
		stride *= maxes[i] + 1
	}
	total := stride

	regulatorsBySpecies := make([][]network.RegulatorInfo, len(m.Species))
	for i, sp := range m.Species {
		regulatorsBySpecies[i] = m.Regulators(sp.Name)
	}

	states := make([]State, total)
	for id := 0; id < total; id++ {
		levels := decompose(id, maxes)
		states[id] = State{ID: id, Levels: levels}
	}

	for id := range states {
		levels := states[id].Levels
		for i := range m.Species {
			contextIdx, err := matchContext(m, i, regulatorsBySpecies[i], levels)
			if err != nil {
				return nil, err
			}
			sp := space.Species[i]
			entry := sp.Entries[contextIdx]
			targets := sp.TargetVals(contextIdx)
			stepSize := space.Weights[i]

			if levels[i] < maxes[i] {
				if t, ok := buildTransition(i, levels, maxes, jumps, entry.Allowed, targets, stepSize, true); ok {
					states[id].Transitions = append(states[id].Transitions, t)
				}
			}
			if levels[i] > 0 {
				if t, ok := buildTransition(i, levels, maxes, jumps, entry.Allowed, targets, stepSize, false); ok {
					states[id].Transitions = append(states[id].Transitions, t)
				}
			}
		}
	}

	return &UTS{Species: m.Species, Maxes: maxes, States: states, Jumps: jumps}, nil
}

func buildTransition(species int, levels, maxes, jumps, allowed, targets []int, stepSize int, up bool) (Transition, bool) {
	compValue := levels[species]
	if !isFeasible(allowed, up, compValue) {
		return Transition{}, false
	}
	targetID := 0
	for i, lv := range levels {
		v := lv
		if i == species {
			if up {
				v++
			} else {
				v--
			}
		}
		targetID += v * jumps[i]
	}
	return Transition{
		Species:  species,
		TargetID: targetID,
		Const: TransConst{
			StepSize:  stepSize,
			ReqDir:    up,
			CompValue: compValue,
			Targets:   targets,
		},
	}, true
}

// matchContext finds the unique regulatory context of species `target`
// matching `levels`, per spec.md §4.4. Failing to find exactly one
// match is an assert-class construction bug (NoContextMatch).
func matchContext(m *network.Model, target int, regulators []network.RegulatorInfo, levels []int) (int, error) {
	intervals := make([]int, len(regulators))
	for i, r := range regulators {
		srcIdx, ok := m.SpeciesIndex(r.Source)
		if !ok {
			return 0, errs.Newf(errs.NoContextMatch, "regulator %q of species %q not found", r.Source, m.Species[target].Name)
		}
		intervals[i] = r.IntervalOf(levels[srcIdx])
	}
	return network.ContextIndex(regulators, intervals), nil
}

func decompose(id int, maxes []int) []int {
	levels := make([]int, len(maxes))
	for i, max := range maxes {
		radix := max + 1
		levels[i] = id % radix
		id /= radix
	}
	return levels
}
