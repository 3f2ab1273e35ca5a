// Package checker implements C8: the per-batch symbolic BFS model
// checker. Grounded on original_source/synthesis/model_checker.hpp
// (passParameters, getStrongestUpdate, broadcastParameters, doColoring)
// and original_source/synthesis/checker_setting.hpp, generalized to
// spec.md §4.7's stable/transient and self-loop-successor handling.
package checker

import (
	"parsybone/internal/paramset"
	"parsybone/internal/product"
	"parsybone/internal/uts"
)

// Settings mirrors CheckerSettings (checker_setting.hpp): initial and
// final state overrides, the minimality flag, the decoding ParamNo
// offset for this batch, the BFS depth bound, and mark-initials mode.
type Settings struct {
	InitialStates []int
	FinalStates   []int
	Minimal       bool
	BatchFirst    int // absolute ParamNo of batch-local bit 0
	Width         int // this batch's width (<= paramset.Width)
	BFSBound      int
	MarkInitials  bool
}

func (s Settings) initials(p *product.Product) []int {
	if len(s.InitialStates) == 0 {
		return p.InitialStates
	}
	return s.InitialStates
}

func (s Settings) finals(p *product.Product) []int {
	if len(s.FinalStates) == 0 {
		return p.FinalStates
	}
	return s.FinalStates
}

func (s Settings) bound() int {
	if s.BFSBound <= 0 {
		return Inf
	}
	return s.BFSBound
}

// Results is the SynthesisResults of spec.md §4.7.
type Results struct {
	Acceptable   paramset.Paramset
	Cost         []int
	LowerBound   int
	// FoundAtDepth has one key per final product state, each mapped to
	// Inf: per-state discovery depths are not recorded (per-bit depths
	// are in Cost).
	FoundAtDepth map[int]int
}

// Checker is the per-batch symbolic BFS runner. It is built fresh for
// each batch (cheap: it holds only round-scoped bookkeeping), while the
// ColorStorage it's handed is reused and Reset between batches.
type Checker struct {
	product  *product.Product
	settings Settings
	storage  *ColorStorage

	next        *ColorStorage
	updates     map[int]bool
	nextUpdates map[int]bool

	starting     paramset.Paramset
	toFind       paramset.Paramset
	restrictMask paramset.Paramset
	bfsLevel     int
	bfsReach     []int
}

// New builds a Checker over p with the given per-batch settings,
// driving storage (which the caller Resets between batches).
func New(p *product.Product, settings Settings, storage *ColorStorage) *Checker {
	return &Checker{product: p, settings: settings, storage: storage}
}

// openMask is passParameters translated into a standalone mask
// builder: a shift construction of the mask of batch-local bit
// positions for which tc is open, over the range
// [batchFirst, batchFirst+width). Each loop step appends one run of up
// to StepSize consecutive ParamNos that share a target value, so the
// step count is about width/StepSize.
func openMask(batchFirst, width int, tc uts.TransConst) paramset.Paramset {
	targets := tc.Targets
	n := len(targets)
	stepSize := tc.StepSize
	paramNum := batchFirst
	end := batchFirst + width
	valueNum := (paramNum / stepSize) % n

	var built paramset.Paramset
	for {
		for ; valueNum < n; valueNum++ {
			bitsInStep := stepSize
			if remaining := end - paramNum; remaining < bitsInStep {
				bitsInStep = remaining
			}
			built <<= uint(bitsInStep)
			if isOpen(tc, valueNum) {
				built |= paramset.Ones(bitsInStep)
			}
			paramNum += bitsInStep
			if paramNum == end {
				return built << uint(paramset.Width-width)
			}
		}
		valueNum = 0
	}
}

func isOpen(tc uts.TransConst, valueNum int) bool {
	v := tc.Targets[valueNum]
	if tc.ReqDir {
		return v > tc.CompValue
	}
	return v < tc.CompValue
}

// coloring pairs a target product state with the parameters that
// survive a transition into it (model_checker.hpp's Coloring).
type coloring struct {
	target int
	params paramset.Paramset
}

// anyUTSTransitionOpen is the batch-wise "at least one outgoing UTS
// transition fires" mask for the UTS state underlying product state id
// — used to resolve AUT stable/transient edge restrictions.
func (c *Checker) anyUTSTransitionOpen(utsState int) paramset.Paramset {
	var any paramset.Paramset
	for _, tr := range c.product.UTS.States[utsState].Transitions {
		any |= openMask(c.settings.BatchFirst, c.settings.Width, tr.Const)
	}
	return any
}

// broadcastParameters distributes `parameters` out of state id's
// product transitions, applying stable/transient restrictions, and
// routes whatever is left over (no real transition fired) to the
// precomputed self-loop successors, applying the same stable/transient
// restriction to each — spec.md §4.4's "self-loops are inferred at
// check time" plus §4.6/§4.7's self-loop-successor use. A transient
// self-loop edge still requires some real UTS transition to be
// fireable (anyOpen()); since leftover bits are exactly those with no
// fired real transition, a transient self-loop edge must not simply
// inherit the whole leftover mask.
func (c *Checker) broadcastParameters(id int, parameters paramset.Paramset) []coloring {
	state := c.product.States[id]
	trs := c.product.Transitions[id]

	var anyOpenCache paramset.Paramset
	var anyOpenComputed bool
	anyOpen := func() paramset.Paramset {
		if !anyOpenComputed {
			anyOpenCache = c.anyUTSTransitionOpen(state.UTSState)
			anyOpenComputed = true
		}
		return anyOpenCache
	}

	var updates []coloring
	var firedUnion paramset.Paramset
	for _, tr := range trs {
		bits := parameters & openMask(c.settings.BatchFirst, c.settings.Width, tr.Const)
		if tr.Stable {
			bits &^= anyOpen()
		}
		if tr.Transient {
			bits &= anyOpen()
		}
		if bits == 0 {
			continue
		}
		firedUnion |= bits
		updates = append(updates, coloring{target: tr.Target, params: bits})
	}

	leftover := parameters &^ firedUnion
	if leftover != 0 {
		for _, succ := range state.SelfLoopSuccessors {
			bits := leftover
			if succ.Stable {
				bits &^= anyOpen()
			}
			if succ.Transient {
				bits &= anyOpen()
			}
			if bits == 0 {
				continue
			}
			updates = append(updates, coloring{target: succ.Target, params: bits})
		}
	}
	return updates
}

// transferUpdates spreads id's current color out to its successors,
// scheduling every state that actually changed for the next round.
func (c *Checker) transferUpdates(id int, parameters paramset.Paramset) {
	for _, u := range c.broadcastParameters(id, parameters) {
		if u.params == 0 {
			continue
		}
		if c.storage.SoftUpdate(u.target, u.params) {
			c.next.Update(u.target, u.params)
			c.nextUpdates[u.target] = true
		}
	}
}

// getStrongestUpdate picks the updated state whose color is a superset
// of every other updated state's, reducing redundant propagation.
func (c *Checker) getStrongestUpdate() int {
	var best int
	var bestColor paramset.Paramset
	first := true
	for id := range c.updates {
		color := c.storage.Color(id)
		if first {
			best, bestColor, first = id, color, false
			continue
		}
		if color != bestColor && color == (bestColor|color) {
			best, bestColor = id, color
		}
	}
	return best
}

// markLevels records, for every bit newly removed from toFind this
// round, the current BFS level as its first-discovery cost. doColoring
// advances the level before marking, so a final state first reached
// after k steps costs k; markInitialFinals marks at level 0.
func (c *Checker) markLevels(colors paramset.Paramset) {
	if c.toFind == 0 {
		return
	}
	store := c.toFind & colors
	c.toFind &^= colors
	for pos := 0; pos < paramset.Width; pos++ {
		bit := paramset.LeftOne(paramset.Width) >> uint(pos)
		if store&bit != 0 {
			c.bfsReach[pos] = c.bfsLevel
		}
	}
}

func (c *Checker) prepareCheck(parameters paramset.Paramset, startUpdates []int) {
	c.starting = parameters
	c.toFind = parameters
	c.restrictMask = parameters
	c.updates = map[int]bool{}
	for _, id := range startUpdates {
		c.updates[id] = true
	}
	c.nextUpdates = map[int]bool{}
	c.bfsLevel = 0
	c.bfsReach = make([]int, paramset.Width)
	for i := range c.bfsReach {
		c.bfsReach[i] = Inf
	}
	c.next = NewColorStorage(len(c.product.States))
	c.next.AddFrom(c.storage)

	c.markInitialFinals()
}

// markInitialFinals implements spec.md §4.7's mark_initials rule: when
// settings.MarkInitials and any initial state is also final, every
// starting bit is accepted at cost 0 before the round loop begins.
func (c *Checker) markInitialFinals() {
	if !c.settings.MarkInitials || c.toFind == 0 {
		return
	}
	finals := map[int]bool{}
	for _, f := range c.settings.finals(c.product) {
		finals[f] = true
	}
	for _, id := range c.settings.initials(c.product) {
		if finals[id] {
			c.markLevels(c.toFind)
			return
		}
	}
}

// doColoring runs the main BFS round loop (model_checker.hpp's
// doColoring), then records results into the storage.
func (c *Checker) doColoring() {
	for {
		id := c.getStrongestUpdate()
		c.transferUpdates(id, c.storage.Color(id)&c.restrictMask)
		delete(c.updates, id)

		if len(c.updates) == 0 && c.toFind != 0 {
			c.updates = c.nextUpdates
			c.nextUpdates = map[int]bool{}
			c.storage.AddFrom(c.next)
			c.next = NewColorStorage(len(c.product.States))
			c.next.AddFrom(c.storage)
			c.bfsLevel++

			var reachedFinal paramset.Paramset
			for _, f := range c.settings.finals(c.product) {
				reachedFinal |= c.storage.Color(f)
			}
			c.markLevels(reachedFinal)

			c.restrictMask = c.toFind
		}
		if len(c.updates) == 0 {
			break
		}
		if c.bfsLevel > c.settings.bound() {
			break
		}
	}
	c.storage.SetResults(c.bfsReach, c.starting&^c.toFind)
}

// StartFrom runs cycle detection from a single state (general-LTL
// second phase): transferUpdates is seeded once from ID before the
// round loop starts (startColoring(ID, parameters, range)).
func (c *Checker) StartFrom(id int, parameters paramset.Paramset) Results {
	c.prepareCheck(parameters, nil)
	c.transferUpdates(id, parameters)
	c.doColoring()
	return c.results()
}

// StartMulti colors every state in updates with parameters, then runs a
// forward BFS from them (startColoring(parameters, updates, range)).
func (c *Checker) StartMulti(updates []int, parameters paramset.Paramset) Results {
	for _, id := range updates {
		c.storage.Update(id, parameters)
	}
	c.prepareCheck(parameters, updates)
	c.doColoring()
	return c.results()
}

func (c *Checker) results() Results {
	found := map[int]int{}
	for _, f := range c.settings.finals(c.product) {
		found[f] = Inf
	}
	return Results{
		Acceptable:   c.storage.Acceptable(),
		Cost:         append([]int(nil), c.storage.AllCosts()...),
		LowerBound:   minCost(c.storage.AllCosts()),
		FoundAtDepth: found,
	}
}

func minCost(cost []int) int {
	m := Inf
	for _, v := range cost {
		if v < m {
			m = v
		}
	}
	return m
}
