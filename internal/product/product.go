// Package product implements C7: the synchronous product of the UTS
// (C5) and the property automaton (C6).
package product

import (
	"context"

	"parsybone/internal/automaton"
	"parsybone/internal/errs"
	"parsybone/internal/guard"
	"parsybone/internal/uts"
)

// maxProductStates bounds |UTS| * |AUT| before StateExplosion triggers.
const maxProductStates = 1 << 28

// Transition is one product transition, carrying the UTS transition's
// TransConst verbatim plus the firing automaton edge's transient/stable
// flags (spec.md §4.6/§4.7).
type Transition struct {
	Target    int
	Const     uts.TransConst
	Transient bool
	Stable    bool
}

// SelfLoopSuccessor is one automaton self-guard edge whose UTS side
// stays put: the reachable product state plus the firing edge's
// transient/stable flags, needed to apply the same restriction as an
// ordinary transition (spec.md §4.5/§4.7 — a transient edge still
// requires a real fireable transition, which by construction none of
// these leftover bits have).
type SelfLoopSuccessor struct {
	Target    int
	Transient bool
	Stable    bool
}

// State is one product state (uts_id, aut_id). SelfLoopSuccessors lists
// the product states reachable via an automaton self-guard whose UTS
// side stays put — used by C8 when no outgoing UTS transition fires
// under a given ParamNo.
type State struct {
	ID                 int
	UTSState           int
	AutState           int
	SelfLoopSuccessors []SelfLoopSuccessor
}

// Product is the full synchronous product structure.
type Product struct {
	UTS           *uts.UTS
	Aut           *automaton.Automaton
	States        []State
	Transitions   [][]Transition
	InitialStates []int
	FinalStates   []int
}

// Build constructs the product of u and a, evaluating every automaton
// edge's guard against each UTS state's species levels via ev.
func Build(u *uts.UTS, a *automaton.Automaton, ev *guard.Evaluator) (*Product, error) {
	nAut := len(a.States)
	total := len(u.States) * nAut
	if total <= 0 || total > maxProductStates {
		return nil, errs.Newf(errs.StateExplosion, "product size |UTS|*|AUT| = %d exceeds addressable space", total)
	}

	states := make([]State, total)
	transitions := make([][]Transition, total)
	var initials, finals []int

	for _, us := range u.States {
		levels := make(map[string]int, len(u.Species))
		for i, sp := range u.Species {
			levels[sp.Name] = us.Levels[i]
		}

		for ai, as := range a.States {
			id := us.ID*nAut + ai
			holds := make([]bool, len(as.Edges))
			for ei, edge := range as.Edges {
				ok, err := ev.Eval(context.Background(), edge.Guard, levels)
				if err != nil {
					return nil, err
				}
				holds[ei] = ok
			}

			var selfLoop []SelfLoopSuccessor
			for ei, edge := range as.Edges {
				if holds[ei] {
					selfLoop = append(selfLoop, SelfLoopSuccessor{
						Target:    us.ID*nAut + edge.Target,
						Transient: edge.Transient,
						Stable:    edge.Stable,
					})
				}
			}
			states[id] = State{ID: id, UTSState: us.ID, AutState: ai, SelfLoopSuccessors: selfLoop}

			var trs []Transition
			for _, tr := range us.Transitions {
				for ei, edge := range as.Edges {
					if !holds[ei] {
						continue
					}
					trs = append(trs, Transition{
						Target:    tr.TargetID*nAut + edge.Target,
						Const:     tr.Const,
						Transient: edge.Transient,
						Stable:    edge.Stable,
					})
				}
			}
			transitions[id] = trs

			if ai == 0 {
				initials = append(initials, id)
			}
			if as.Final {
				finals = append(finals, id)
			}
		}
	}

	return &Product{
		UTS:           u,
		Aut:           a,
		States:        states,
		Transitions:   transitions,
		InitialStates: initials,
		FinalStates:   finals,
	}, nil
}

// IsInitial reports whether id is an initial product state.
func (p *Product) IsInitial(id int) bool {
	for _, s := range p.InitialStates {
		if s == id {
			return true
		}
	}
	return false
}

// IsFinal reports whether id is a final product state.
func (p *Product) IsFinal(id int) bool {
	return p.Aut.States[p.States[id].AutState].Final
}
