package checker

import (
	"testing"

	"parsybone/internal/automaton"
	"parsybone/internal/guard"
	"parsybone/internal/network"
	"parsybone/internal/paramset"
	"parsybone/internal/paramspace"
	"parsybone/internal/product"
	"parsybone/internal/uts"
)

// buildReachabilityFixture is spec.md §8 scenario 1/2: species AA in
// {0,1}, no regulations, property "eventually AA=1" expressed as a
// two-state Büchi automaton with edge AA>0 into a final self-looping
// state.
func buildReachabilityFixture(t *testing.T) (*product.Product, int) {
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
	// Guards are evaluated against the *source* state's level vector
	// (spec.md §4.6), so s0 needs its own self-loop on the negated
	// guard to let the UTS side advance while staying in s0 — the
	// standard Buchi "not yet" / "now" edge pair.
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
	return p, space.Total
}

// openingParamNo returns the single ParamNo that opens u's state-0
// up-transition, discovered by scan rather than assumed.
func openingParamNo(t *testing.T, p *product.Product, total int) int {
	t.Helper()
	for pn := 0; pn < total; pn++ {
		for _, tr := range p.UTS.States[0].Transitions {
			if tr.Const.Open(pn) {
				return pn
			}
		}
	}
	t.Fatal("no parametrisation opens the 0-state's up-transition")
	return -1
}

func TestReachabilityAcceptsOnlyOpeningParametrisation(t *testing.T) {
	p, total := buildReachabilityFixture(t)
	if total != 2 {
		t.Fatalf("space.Total = %d, want 2", total)
	}

	storage := NewColorStorage(len(p.States))
	// Restrict to the (UTS-state-0, s0) initial state: the spec's full
	// default initial set also contains (UTS-state-1, s0), which would
	// accept every parametrisation in a single step and defeat this
	// reachability check.
	settings := Settings{InitialStates: []int{0}, BatchFirst: 0, Width: total}
	c := New(p, settings, storage)

	openParam := openingParamNo(t, p, total)
	start := paramset.Leading(total)
	res := c.StartMulti(settings.InitialStates, start)

	if got := paramset.Count(res.Acceptable); got != 1 {
		t.Fatalf("Acceptable popcount = %d, want 1", got)
	}
	want := paramset.LeftOne(total) >> uint(openParam)
	want <<= uint(paramset.Width - total)
	if res.Acceptable != want {
		t.Fatalf("Acceptable mask = %#x, want %#x (the opening parametrisation, ParamNo %d)", uint64(res.Acceptable), uint64(want), openParam)
	}
}

func TestFinalColorsStayWithinStartingBatch(t *testing.T) {
	p, total := buildReachabilityFixture(t)
	storage := NewColorStorage(len(p.States))
	settings := Settings{InitialStates: []int{0}, BatchFirst: 0, Width: total}
	c := New(p, settings, storage)

	start := paramset.Leading(total)
	c.StartMulti(settings.InitialStates, start)

	for _, id := range p.FinalStates {
		if storage.Color(id)&^start != 0 {
			t.Fatalf("state %d color %#x carries bits outside the starting batch %#x", id, uint64(storage.Color(id)), uint64(start))
		}
	}
}

// TestTransientSelfLoopRequiresFireableTransition checks that a
// transient-flagged automaton self-loop, which by spec.md §4.5 only
// fires when "at least one outgoing transition [is] fireable", does
// not fire on the leftover mask alone — leftover is by construction
// exactly the bits for which no real transition fired, so a transient
// self-loop must receive none of it.
func TestTransientSelfLoopRequiresFireableTransition(t *testing.T) {
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
	if err := a.AddEdge(1, 1, "tt", true, false); err != nil {
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

	f := -1
	for _, st := range p.States {
		if st.UTSState == 1 && st.AutState == 1 {
			f = st.ID
		}
	}
	if f == -1 {
		t.Fatal("fixture is missing the (UTS state 1, s1) product state")
	}

	downOpen := -1
	for pn := 0; pn < space.Total; pn++ {
		for _, tr := range p.UTS.States[1].Transitions {
			if tr.Const.Open(pn) {
				downOpen = pn
			}
		}
	}
	if downOpen == -1 {
		t.Fatal("no parametrisation opens UTS state 1's down-transition")
	}
	stuck := -1
	for pn := 0; pn < space.Total; pn++ {
		if pn != downOpen {
			stuck = pn
			break
		}
	}
	if stuck == -1 {
		t.Fatal("need at least two parametrisations to find one that leaves UTS state 1 stuck")
	}

	storage := NewColorStorage(len(p.States))
	settings := Settings{BatchFirst: 0, Width: space.Total, BFSBound: 3}
	c := New(p, settings, storage)

	bit := paramset.LeftOne(space.Total) >> uint(stuck)
	bit <<= uint(paramset.Width - space.Total)
	res := c.StartFrom(f, bit)

	if res.Acceptable != 0 {
		t.Fatalf("transient self-loop fired with no real transition fireable: Acceptable = %#x, want 0", uint64(res.Acceptable))
	}
}

func TestOpenMaskMatchesTransConstOpen(t *testing.T) {
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
	tr := u.States[0].Transitions[0]

	mask := openMask(0, space.Total, tr.Const)
	for pos := 0; pos < space.Total; pos++ {
		bit := paramset.LeftOne(space.Total) >> uint(pos)
		bit <<= uint(paramset.Width - space.Total)
		want := tr.Const.Open(pos)
		got := mask&bit != 0
		if got != want {
			t.Fatalf("openMask bit %d = %v, want %v (TransConst.Open)", pos, got, want)
		}
	}
}
