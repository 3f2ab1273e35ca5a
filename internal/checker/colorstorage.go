package checker

import "parsybone/internal/paramset"

// Inf is the "not yet reached" cost sentinel, replacing the original's
// `~0` magic value (spec.md §9).
const Inf = int(^uint(0) >> 1)

// ColorStorage is the per-batch coloring of spec.md §3/§4.7: a Paramset
// per product state, a per-bit BFS-depth cost, and an accepted mask.
// Grounded on original_source/synthesis/color_storage.hpp.
type ColorStorage struct {
	colors     []paramset.Paramset
	cost       []int // length paramset.Width
	acceptable paramset.Paramset
}

// NewColorStorage allocates a ColorStorage for a product of the given
// state count.
func NewColorStorage(stateCount int) *ColorStorage {
	cost := make([]int, paramset.Width)
	for i := range cost {
		cost[i] = Inf
	}
	return &ColorStorage{colors: make([]paramset.Paramset, stateCount), cost: cost}
}

// Reset clears all per-state colors and the accepted mask. Allocated
// memory is reused across batches (color_storage.hpp's reset()).
func (cs *ColorStorage) Reset() {
	for i := range cs.colors {
		cs.colors[i] = 0
	}
	cs.acceptable = 0
	for i := range cs.cost {
		cs.cost[i] = Inf
	}
}

// Color returns the Paramset currently assigned to state id.
func (cs *ColorStorage) Color(id int) paramset.Paramset { return cs.colors[id] }

// Update ORs parameters into state id's color, returning true if any
// new bit was added.
func (cs *ColorStorage) Update(id int, parameters paramset.Paramset) bool {
	merged := cs.colors[id] | parameters
	if merged == cs.colors[id] {
		return false
	}
	cs.colors[id] = merged
	return true
}

// SoftUpdate reports whether Update(id, parameters) would change
// anything, without performing the update.
func (cs *ColorStorage) SoftUpdate(id int, parameters paramset.Paramset) bool {
	return cs.colors[id]|parameters != cs.colors[id]
}

// Remove clears the given parameters from state id's color.
func (cs *ColorStorage) Remove(id int, remove paramset.Paramset) {
	cs.colors[id] &^= remove
}

// AddFrom OR-merges another storage's colors into this one, state-wise.
func (cs *ColorStorage) AddFrom(other *ColorStorage) {
	for i := range cs.colors {
		cs.colors[i] |= other.colors[i]
	}
}

// SetResults records the final BFS-depth cost vector and accepted mask
// (time-series and general-LTL runs share this single setter, and both
// record per-bit costs).
func (cs *ColorStorage) SetResults(cost []int, acceptable paramset.Paramset) {
	cs.cost = cost
	cs.acceptable = acceptable
}

// Cost returns the BFS-depth cost of the bit at batch-local position.
func (cs *ColorStorage) Cost(position int) int { return cs.cost[position] }

// AllCosts returns the full per-bit cost vector.
func (cs *ColorStorage) AllCosts() []int { return cs.cost }

// Acceptable returns the mask of parametrisations accepted this batch.
func (cs *ColorStorage) Acceptable() paramset.Paramset { return cs.acceptable }

// MaxDepth returns the largest finite cost recorded this batch.
func (cs *ColorStorage) MaxDepth() int {
	depth := 0
	for _, v := range cs.cost {
		if v != Inf && v > depth {
			depth = v
		}
	}
	return depth
}
