// Package witness implements C9: for a single accepted parametrisation,
// reconstruct a bounded-length product-state path from an initial state
// to a final state. Grounded on spec.md §4.8 only — the original
// witness_searcher.hpp is dead/commented-out code and is not usable as
// grounding.
package witness

import "parsybone/internal/product"

// Edge is one step of a reconstructed witness path.
type Edge struct {
	Source int
	Target int
}

const unknown = -1

// searcher holds the per-bit DFS bookkeeping (path.hpp's busted/succeeded
// markings), reused across the initial states tried.
type searcher struct {
	p        *product.Product
	paramNo  int
	maxDepth int
	finals   map[int]bool

	busted    []int // minimal depth at which state s is known unreachable to a final state, else unknown
	succeeded []int // minimal depth at which state s already led to a recorded witness, else unknown

	path   []Edge
	result []Edge
}

// Find runs the DFS of spec.md §4.8 from every initial state, in
// initials' order, returning the first path it finds with between 1
// and maxDepth steps, or nil if none exists within that bound. Paths
// are not compared by length: the result has minimal length when
// maxDepth equals the length of the shortest such path.
func Find(p *product.Product, initials, finals []int, paramNo, maxDepth int) []Edge {
	finalSet := make(map[int]bool, len(finals))
	for _, f := range finals {
		finalSet[f] = true
	}
	s := &searcher{
		p:         p,
		paramNo:   paramNo,
		maxDepth:  maxDepth,
		finals:    finalSet,
		busted:    fillInt(len(p.States), unknown),
		succeeded: fillInt(len(p.States), unknown),
	}
	for _, init := range initials {
		if s.dfs(init, 0) {
			return append([]Edge(nil), s.result...)
		}
	}
	return nil
}

func fillInt(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// dfs explores from state `s` at ply `d`, returning true the first time
// a final state is reached at d>=1 within maxDepth, recording the path
// taken into s.result.
func (s *searcher) dfs(state, d int) bool {
	if s.busted[state] != unknown && s.busted[state] <= d {
		return false
	}
	if s.succeeded[state] != unknown && s.succeeded[state] <= d {
		return true
	}
	if d >= 1 && s.finals[state] {
		s.succeeded[state] = d
		s.result = append([]Edge(nil), s.path...)
		return true
	}
	if d >= s.maxDepth {
		s.busted[state] = d
		return false
	}

	utsState := s.p.States[state].UTSState
	var anyOpenCache int // 0 unknown, -1 false, 1 true
	anyOpen := func() bool {
		if anyOpenCache == 0 {
			if s.anyUTSTransitionOpenAt(utsState) {
				anyOpenCache = 1
			} else {
				anyOpenCache = -1
			}
		}
		return anyOpenCache == 1
	}

	opened := false
	for _, tr := range s.p.Transitions[state] {
		if !tr.Const.Open(s.paramNo) {
			continue
		}
		if tr.Stable && anyOpen() {
			continue
		}
		if tr.Transient && !anyOpen() {
			continue
		}
		opened = true
		s.path = append(s.path, Edge{Source: state, Target: tr.Target})
		if s.dfs(tr.Target, d+1) {
			return true
		}
		s.path = s.path[:len(s.path)-1]
	}
	if !opened {
		for _, succ := range s.p.States[state].SelfLoopSuccessors {
			if succ.Stable && anyOpen() {
				continue
			}
			if succ.Transient && !anyOpen() {
				continue
			}
			s.path = append(s.path, Edge{Source: state, Target: succ.Target})
			if s.dfs(succ.Target, d+1) {
				return true
			}
			s.path = s.path[:len(s.path)-1]
		}
	}
	s.busted[state] = d
	return false
}

// anyUTSTransitionOpenAt reports whether some outgoing UTS transition
// from utsState is open at s.paramNo — the single-ParamNo analogue of
// checker.anyUTSTransitionOpen, used to apply the same stable/transient
// restriction checker.broadcastParameters applies, so the witness
// searcher never traverses an edge the model checker would not have
// propagated through.
func (s *searcher) anyUTSTransitionOpenAt(utsState int) bool {
	for _, tr := range s.p.UTS.States[utsState].Transitions {
		if tr.Const.Open(s.paramNo) {
			return true
		}
	}
	return false
}
