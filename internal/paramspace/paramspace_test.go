package paramspace

import (
	"testing"

	"parsybone/internal/network"
)

func TestBuildSingleSpeciesNoRegulations(t *testing.T) {
	m, err := network.New([]network.Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	space, err := Build(m, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if space.Total != 2 {
		t.Fatalf("Total = %d, want 2 (basal {0,1}, single empty context)", space.Total)
	}
	if err := space.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	species := []network.Species{{Name: "AA", MaxLevel: 1}, {Name: "BB", MaxLevel: 1}}
	regs := []network.Regulation{{Source: "AA", Target: "BB", Threshold: 1}}
	m, err := network.New(species, regs)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	space, err := Build(m, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for p := 0; p < space.Total; p++ {
		local := space.Decompose(p)
		rebuilt := 0
		for i, s := range local {
			rebuilt += s * space.Weights[i]
		}
		if rebuilt != p {
			t.Fatalf("Decompose(%d) round-trip mismatch: got %d", p, rebuilt)
		}
	}
}

func TestUnknownContextError(t *testing.T) {
	m, err := network.New([]network.Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	specs := map[string]map[string]UserSpec{
		"AA": {"B:5": {Values: []int{1}}},
	}
	if _, err := Build(m, specs); err == nil {
		t.Fatal("expected UnknownContext error")
	}
}

func TestOutOfRangeValue(t *testing.T) {
	m, err := network.New([]network.Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	specs := map[string]map[string]UserSpec{
		"AA": {"": {Values: []int{9}}},
	}
	if _, err := Build(m, specs); err == nil {
		t.Fatal("expected OutOfRange error")
	}
}

func TestTargetValsLength(t *testing.T) {
	species := []network.Species{{Name: "AA", MaxLevel: 2}}
	m, err := network.New(species, nil)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	space, err := Build(m, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sp := space.Species[0]
	for c := range sp.Entries {
		vals := sp.TargetVals(c)
		if len(vals) != sp.N {
			t.Fatalf("len(TargetVals(%d)) = %d, want %d", c, len(vals), sp.N)
		}
	}
}
