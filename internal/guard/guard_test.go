package guard

import "testing"

func TestCompileSimpleAtom(t *testing.T) {
	c, err := Compile("A>1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.query == "" {
		t.Fatal("expected non-empty compiled query")
	}
}

func TestCompileCombinators(t *testing.T) {
	cases := []string{
		"A>1 & B<2",
		"A>1 | B=0",
		"!(A>1)",
		"(A>1 & B<2) | C=3",
		"tt",
		"ff",
	}
	for _, src := range cases {
		if _, err := Compile(src); err != nil {
			t.Errorf("Compile(%q) unexpected error: %v", src, err)
		}
	}
}

func TestCompileRejectsGarbage(t *testing.T) {
	cases := []string{"A>1 &", "A >", "(A>1", "A>1)"}
	for _, src := range cases {
		if _, err := Compile(src); err == nil {
			t.Errorf("Compile(%q) expected error, got nil", src)
		}
	}
}
