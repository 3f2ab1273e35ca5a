// Package paramspace implements C4: derives, from C3's network model,
// the full enumeration of parametrisations (ParamNo) per spec.md §3 and
// §4.3, steps 1-6.
package paramspace

import (
	"strconv"
	"strings"

	"parsybone/internal/errs"
	"parsybone/internal/network"
)

// UserSpec is one explicit per-context parameter specification from the
// front-end: either an explicit set of allowed levels, or Keep=true to
// mean "?" (leave the basal default untouched).
type UserSpec struct {
	Keep   bool
	Values []int
}

// Entry is one (target species, context) parameter entry: the context
// it belongs to and its admissible target levels.
type Entry struct {
	Context network.Context
	Allowed []int
}

// SpeciesParams is one species' full parametrisation: its entries in
// context-enumeration order, their local strides (used only to build
// TargetVals), and its parametrisation count N_i.
type SpeciesParams struct {
	Name        string
	Entries     []Entry
	LocalStride []int
	N           int
}

// TargetVals returns, for the context at index contextIdx, the
// length-N array giving the target level selected at that context for
// every one of this species' N parametrisations (lexicographic index).
// This is C4's "lex-indexed view over entry lists" (spec.md §4.3).
func (sp *SpeciesParams) TargetVals(contextIdx int) []int {
	allowed := sp.Entries[contextIdx].Allowed
	stride := sp.LocalStride[contextIdx]
	out := make([]int, sp.N)
	for s := 0; s < sp.N; s++ {
		out[s] = allowed[(s/stride)%len(allowed)]
	}
	return out
}

// buildSpeciesParams constructs one species' parameter entries, applying
// basal defaults then user specifications (spec.md §4.3 steps 1-6).
func buildSpeciesParams(m *network.Model, sp network.Species, specs map[string]UserSpec) (*SpeciesParams, error) {
	regulators := m.Regulators(sp.Name)
	contexts := network.Contexts(regulators)

	entries := make([]Entry, len(contexts))
	for i, ctx := range contexts {
		entries[i] = Entry{Context: ctx, Allowed: append([]int(nil), sp.BasalTargets...)}
	}

	byCanonical := make(map[string]int, len(entries))
	for i, e := range entries {
		byCanonical[e.Context.Canonical()] = i
	}

	for ctxStr, spec := range specs {
		idx, ok := byCanonical[canonicalize(ctxStr)]
		if !ok {
			return nil, errs.Newf(errs.UnknownContext, "species %q: unknown context %q", sp.Name, ctxStr)
		}
		if spec.Keep {
			continue
		}
		for _, v := range spec.Values {
			if v < 0 || v > sp.MaxLevel {
				return nil, errs.Newf(errs.OutOfRange, "species %q context %q: value %d out of range [0,%d]", sp.Name, ctxStr, v, sp.MaxLevel)
			}
		}
		entries[idx].Allowed = append([]int(nil), spec.Values...)
	}

	stride := make([]int, len(entries))
	running := 1
	n := 1
	for i, e := range entries {
		stride[i] = running
		running *= len(e.Allowed)
		n *= len(e.Allowed)
	}

	return &SpeciesParams{Name: sp.Name, Entries: entries, LocalStride: stride, N: n}, nil
}

// canonicalize normalises a human-form context string ("R[:t],...")
// into the canonical form used internally. Since the human form with an
// omitted colon only applies to single-threshold regulators, and our
// Canonical() always emits "R:t", the two already coincide whenever the
// caller supplies the colon; this function exists as the single seam
// where that normalisation would be extended.
func canonicalize(s string) string {
	return strings.TrimSpace(s)
}

// Space is the whole-network parametrisation space: every species'
// SpeciesParams plus the global mixed-radix indexing across species.
type Space struct {
	Species []*SpeciesParams
	Weights []int // global species weight_i = Π_{j<i} N_j
	Total   int   // N = Π_i N_i
}

// Build computes the full Space for m, given a per-species,
// per-context map of explicit user specifications.
func Build(m *network.Model, specs map[string]map[string]UserSpec) (*Space, error) {
	sps := make([]*SpeciesParams, len(m.Species))
	weights := make([]int, len(m.Species))
	running := 1
	for i, sp := range m.Species {
		built, err := buildSpeciesParams(m, sp, specs[sp.Name])
		if err != nil {
			return nil, err
		}
		sps[i] = built
		weights[i] = running
		running *= built.N
	}
	return &Space{Species: sps, Weights: weights, Total: running}, nil
}

// Decompose splits a global ParamNo into each species' local
// parametrisation index s_i, per spec.md's mixed-radix formula
// p = Σ_i s_i · Π_{j<i} N_j.
func (s *Space) Decompose(paramNo int) []int {
	out := make([]int, len(s.Species))
	for i := len(s.Species) - 1; i >= 0; i-- {
		out[i] = paramNo / s.Weights[i]
		paramNo -= out[i] * s.Weights[i]
	}
	return out
}

// String renders paramNo as "(v_1,1,v_1,2,...,v_2,1,...)" per spec.md
// §4.3: the target level selected by every species at every context.
func (s *Space) String(paramNo int) string {
	local := s.Decompose(paramNo)
	var parts []string
	for i, sp := range s.Species {
		for c := range sp.Entries {
			vals := sp.TargetVals(c)
			parts = append(parts, strconv.Itoa(vals[local[i]]))
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Validate checks internal consistency: every species has N_i >= 1 and
// the global total matches the product of all species counts.
func (s *Space) Validate() error {
	total := 1
	for _, sp := range s.Species {
		if sp.N < 1 {
			return errs.Newf(errs.OutOfRange, "species %q has zero parametrisations", sp.Name)
		}
		total *= sp.N
	}
	if total != s.Total {
		return errs.Newf(errs.MalformedBits, "space total %d does not match product of species counts %d", s.Total, total)
	}
	return nil
}
