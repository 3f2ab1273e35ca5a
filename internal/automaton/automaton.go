// Package automaton implements C6: the property automaton, a finite
// graph with guarded edges (spec.md §4.5), plus the implicit
// construction used for time-series properties.
package automaton

import (
	"fmt"

	"parsybone/internal/errs"
	"parsybone/internal/guard"
)

// Edge is one outgoing edge of a State: its target, its compiled
// guard, and the mutually-exclusive transient/stable flags of
// spec.md §4.5.
type Edge struct {
	Target    int
	RawGuard  string
	Guard     *guard.Compiled
	Transient bool
	Stable    bool
}

// State is one automaton state.
type State struct {
	Name  string
	Final bool
	Edges []Edge
}

// Automaton is the whole property graph. State 0 is initial by
// convention (spec.md §3). MinAcc/MaxAcc are only meaningful for
// time-series automata built by Build; an explicit AUTOMATON document
// leaves them at their zero value (no extra depth clamp).
type Automaton struct {
	Name   string
	States []State
	MinAcc int
	MaxAcc int
}

// New builds an empty automaton with the given name.
func New(name string) *Automaton {
	return &Automaton{Name: name}
}

// AddState appends a state, defaulting its name to the automaton's name
// followed by the state's ordinal number when name is empty
// (property_automaton.hpp's
// addState/automaton_name+ID convention).
func (a *Automaton) AddState(name string, final bool) int {
	if name == "" {
		name = fmt.Sprintf("%s%d", a.Name, len(a.States))
	}
	a.States = append(a.States, State{Name: name, Final: final})
	return len(a.States) - 1
}

// AddEdge attaches a guarded edge from source to target. transient and
// stable must not both be true (spec.md §4.5).
func (a *Automaton) AddEdge(source, target int, rawGuard string, transient, stable bool) error {
	if transient && stable {
		return errs.Newf(errs.ParseError, "edge %d->%d: transient and stable are mutually exclusive", source, target)
	}
	compiled, err := guard.Compile(rawGuard)
	if err != nil {
		return err
	}
	a.States[source].Edges = append(a.States[source].Edges, Edge{
		Target:    target,
		RawGuard:  rawGuard,
		Guard:     compiled,
		Transient: transient,
		Stable:    stable,
	})
	return nil
}

// FindID returns the state index with the given name, or -1.
func (a *Automaton) FindID(name string) int {
	for i, s := range a.States {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Series describes a time-series property (spec.md §4.5): an ordered
// list of measurement expressions, plus accepted-depth bounds.
type Series struct {
	Expressions []string
	MinAcc      int
	MaxAcc      int
}

// Build constructs the implicit automaton for a time-series property:
// state k has a self-loop guarded by ¬φ_k and an edge to k+1 guarded
// by φ_k; the last state is final with no outgoing edge.
func Build(s Series) (*Automaton, error) {
	if len(s.Expressions) == 0 {
		return nil, errs.New(errs.ParseError, "time-series property has no measurements")
	}
	a := New("series")
	a.MinAcc = s.MinAcc
	a.MaxAcc = s.MaxAcc
	for i := range s.Expressions {
		a.AddState(fmt.Sprintf("series%d", i), i == len(s.Expressions)-1)
	}
	for k, expr := range s.Expressions {
		if k == len(s.Expressions)-1 {
			break // the final state has no outgoing edge
		}
		if err := a.AddEdge(k, k, negate(expr), false, false); err != nil {
			return nil, err
		}
		if err := a.AddEdge(k, k+1, expr, false, false); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func negate(expr string) string {
	return "!(" + expr + ")"
}
