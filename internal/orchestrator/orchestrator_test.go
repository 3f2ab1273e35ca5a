package orchestrator

import (
	"bytes"
	"strings"
	"testing"

	"parsybone/internal/automaton"
	"parsybone/internal/guard"
	"parsybone/internal/network"
	"parsybone/internal/paramspace"
	"parsybone/internal/product"
	"parsybone/internal/resultsink"
	"parsybone/internal/uts"
)

func buildFixture(t *testing.T) (*network.Model, *paramspace.Space, *product.Product) {
	t.Helper()
	m, err := network.New([]network.Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	space, err := paramspace.Build(m, nil)
	if err != nil {
		t.Fatalf("paramspace.Build: %v", err)
	}
	u, err := uts.Build(m, space)
	if err != nil {
		t.Fatalf("uts.Build: %v", err)
	}
	a := automaton.New("buchi")
	a.AddState("s0", false)
	a.AddState("s1", true)
	if err := a.AddEdge(0, 0, "!(AA>0)", false, false); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := a.AddEdge(0, 1, "AA>0", false, false); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := a.AddEdge(1, 1, "tt", false, false); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	ev, err := guard.New()
	if err != nil {
		t.Fatalf("guard.New: %v", err)
	}
	p, err := product.Build(u, a, ev)
	if err != nil {
		t.Fatalf("product.Build: %v", err)
	}
	return m, space, p
}

// buildDeadEndFixture mirrors buildFixture but the final automaton
// state has no outgoing edges at all: every final product state is a
// true dead end, reachable once but with no return path to any final
// state. Non-time-series acceptance requires an admitted infinite run
// (spec.md §1's "Büchi-like automaton"), so cycle detection must
// reject every parametrisation here despite phase-one reachability
// reaching a final state for all of them.
func buildDeadEndFixture(t *testing.T) (*network.Model, *paramspace.Space, *product.Product) {
	t.Helper()
	m, err := network.New([]network.Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	space, err := paramspace.Build(m, nil)
	if err != nil {
		t.Fatalf("paramspace.Build: %v", err)
	}
	u, err := uts.Build(m, space)
	if err != nil {
		t.Fatalf("uts.Build: %v", err)
	}
	a := automaton.New("buchi")
	a.AddState("s0", false)
	a.AddState("s1", true) // no outgoing edges: a dead end once reached
	if err := a.AddEdge(0, 0, "!(AA>0)", false, false); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := a.AddEdge(0, 1, "AA>0", false, false); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	ev, err := guard.New()
	if err != nil {
		t.Fatalf("guard.New: %v", err)
	}
	p, err := product.Build(u, a, ev)
	if err != nil {
		t.Fatalf("product.Build: %v", err)
	}
	return m, space, p
}

func TestRunRejectsDeadEndFinalStateUnderCycleDetection(t *testing.T) {
	m, space, p := buildDeadEndFixture(t)
	var buf bytes.Buffer
	sink := resultsink.New(&buf)

	n, err := Run(m, space, p, Options{ProcessesCount: 1, ProcessNumber: 1}, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 {
		t.Fatalf("accepted %d parametrisations, want 0: a final state with no return path must not be LTL-accepted", n)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output lines, got %q", buf.String())
	}
}

func TestRunEmitsOneLinePerAcceptedParametrisation(t *testing.T) {
	m, space, p := buildFixture(t)
	var buf bytes.Buffer
	sink := resultsink.New(&buf)

	n, err := Run(m, space, p, Options{ProcessesCount: 1, ProcessNumber: 1, Witnesses: true, Robustness: true}, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("wrote %d lines, Run reported %d accepted", len(lines), n)
	}
	for _, l := range lines {
		fields := strings.Split(l, ":")
		if len(fields) != 4 {
			t.Fatalf("line %q has %d fields, want 4", l, len(fields))
		}
		if fields[2] == "" || fields[3] == "" {
			t.Fatalf("line %q missing requested robustness/witness field", l)
		}
	}
}
