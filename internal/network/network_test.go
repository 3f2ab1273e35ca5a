package network

import "testing"

func TestValidateName(t *testing.T) {
	ok := []string{"Ab", "_foo", "x1"}
	bad := []string{"A", "a", "1x", "", "x-y", "x y"}
	for _, n := range ok {
		if err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q) unexpected error: %v", n, err)
		}
	}
	for _, n := range bad {
		if err := ValidateName(n); err == nil {
			t.Errorf("ValidateName(%q) expected error, got nil", n)
		}
	}
}

func TestNewModelBasalDefaults(t *testing.T) {
	m, err := New([]Species{{Name: "AA", MaxLevel: 1}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(m.Species[0].BasalTargets) != 2 {
		t.Fatalf("basal targets = %v, want [0,1]", m.Species[0].BasalTargets)
	}
}

func TestNewModelDuplicateRegulation(t *testing.T) {
	species := []Species{{Name: "AA", MaxLevel: 1}, {Name: "BB", MaxLevel: 1}}
	regs := []Regulation{
		{Source: "AA", Target: "BB", Threshold: 1},
		{Source: "AA", Target: "BB", Threshold: 1},
	}
	if _, err := New(species, regs); err == nil {
		t.Fatal("expected DuplicateRegulation error")
	}
}

func TestNewModelUnknownSpecies(t *testing.T) {
	species := []Species{{Name: "AA", MaxLevel: 1}}
	regs := []Regulation{{Source: "AA", Target: "Z", Threshold: 1}}
	if _, err := New(species, regs); err == nil {
		t.Fatal("expected InvalidName error for unknown target")
	}
}

func TestRegulatorsAndContexts(t *testing.T) {
	species := []Species{{Name: "AA", MaxLevel: 1}, {Name: "BB", MaxLevel: 1}}
	regs := []Regulation{{Source: "AA", Target: "BB", Threshold: 1}}
	m, err := New(species, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	regulators := m.Regulators("BB")
	if len(regulators) != 1 || regulators[0].Source != "AA" {
		t.Fatalf("Regulators(BB) = %+v", regulators)
	}
	contexts := Contexts(regulators)
	if len(contexts) != 2 {
		t.Fatalf("len(contexts) = %d, want 2", len(contexts))
	}
	seen := map[string]bool{}
	for _, c := range contexts {
		seen[c.Canonical()] = true
	}
	if !seen["AA:0"] || !seen["AA:1"] {
		t.Fatalf("unexpected canonical forms: %v", seen)
	}
}

func TestZeroRegulationsSingleContext(t *testing.T) {
	species := []Species{{Name: "AA", MaxLevel: 1}}
	m, err := New(species, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	regulators := m.Regulators("AA")
	contexts := Contexts(regulators)
	if len(contexts) != 1 {
		t.Fatalf("len(contexts) = %d, want 1 (empty context)", len(contexts))
	}
	if contexts[0].Canonical() != "" {
		t.Fatalf("canonical form of empty context = %q, want empty string", contexts[0].Canonical())
	}
}
