// Package network implements C3: species, regulations, and the derived
// regulatory contexts of a Thomas network, per spec.md §3 and §4.3.
package network

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"parsybone/internal/errs"
)

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName checks the identifier grammar of spec.md §6: names match
// [A-Za-z_][A-Za-z0-9_]* with length >= 2.
func ValidateName(name string) error {
	if len(name) < 2 || !nameRE.MatchString(name) {
		return errs.Newf(errs.InvalidName, "invalid name %q", name)
	}
	return nil
}

// Sign is the observability tag carried by a Regulation.
type Sign int

const (
	SignUnspecified Sign = iota
	SignPositive
	SignNegative
	SignObservable
)

// Species is immutable after parse.
type Species struct {
	Name         string
	MaxLevel     int
	BasalTargets []int // defaults to the full range [0, MaxLevel]
}

// Regulation is a directed edge from Source to Target at Threshold.
type Regulation struct {
	Source    string
	Target    string
	Threshold int
	Sign      Sign
}

// Model holds species and regulations as parsed, before parameter-entry
// construction (C4 builds on top of this).
type Model struct {
	Species     []Species
	Regulations []Regulation

	byName map[string]int
}

// New validates and indexes a freshly parsed model.
func New(species []Species, regulations []Regulation) (*Model, error) {
	m := &Model{Species: species, Regulations: regulations, byName: map[string]int{}}
	for i, sp := range species {
		if err := ValidateName(sp.Name); err != nil {
			return nil, err
		}
		if sp.MaxLevel < 1 {
			return nil, errs.Newf(errs.OutOfRange, "species %q: max_level must be >= 1, got %d", sp.Name, sp.MaxLevel)
		}
		if _, dup := m.byName[sp.Name]; dup {
			return nil, errs.Newf(errs.InvalidName, "duplicate species name %q", sp.Name)
		}
		m.byName[sp.Name] = i
		if len(species[i].BasalTargets) == 0 {
			full := make([]int, sp.MaxLevel+1)
			for v := range full {
				full[v] = v
			}
			m.Species[i].BasalTargets = full
		}
		for _, v := range m.Species[i].BasalTargets {
			if v < 0 || v > sp.MaxLevel {
				return nil, errs.Newf(errs.OutOfRange, "species %q: basal target %d out of range [0,%d]", sp.Name, v, sp.MaxLevel)
			}
		}
	}

	seen := map[[3]interface{}]bool{}
	for _, r := range regulations {
		if _, ok := m.byName[r.Source]; !ok {
			return nil, errs.Newf(errs.InvalidName, "regulation source %q is not a known species", r.Source)
		}
		tgtIdx, ok := m.byName[r.Target]
		if !ok {
			return nil, errs.Newf(errs.InvalidName, "regulation target %q is not a known species", r.Target)
		}
		srcMax := m.Species[m.byName[r.Source]].MaxLevel
		if r.Threshold < 1 || r.Threshold > srcMax {
			return nil, errs.Newf(errs.OutOfRange, "regulation %s->%s: threshold %d out of range [1,%d]", r.Source, r.Target, r.Threshold, srcMax)
		}
		key := [3]interface{}{r.Source, tgtIdx, r.Threshold}
		if seen[key] {
			return nil, errs.Newf(errs.DuplicateRegulation, "duplicate regulation (%s,%s,%d)", r.Source, r.Target, r.Threshold)
		}
		seen[key] = true
	}
	return m, nil
}

// SpeciesIndex returns the index of the species with the given name.
func (m *Model) SpeciesIndex(name string) (int, bool) {
	idx, ok := m.byName[name]
	return idx, ok
}

// Regulators returns the distinct source species regulating target, in
// a fixed (alphabetical) order, each with its sorted unique thresholds.
func (m *Model) Regulators(target string) []RegulatorInfo {
	bySource := map[string][]int{}
	for _, r := range m.Regulations {
		if r.Target != target {
			continue
		}
		bySource[r.Source] = append(bySource[r.Source], r.Threshold)
	}
	names := make([]string, 0, len(bySource))
	for n := range bySource {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]RegulatorInfo, 0, len(names))
	for _, n := range names {
		th := bySource[n]
		sort.Ints(th)
		th = dedupInts(th)
		out = append(out, RegulatorInfo{Source: n, Thresholds: th})
	}
	return out
}

// RegulatorInfo is one regulator of a target species, with the sorted,
// deduplicated thresholds it contributes.
type RegulatorInfo struct {
	Source     string
	Thresholds []int
}

// Intervals returns the number of activity intervals for this regulator
// (|thresholds|+1), i.e. t0=0 .. t_{last+1}=max+1 half-open brackets.
func (ri RegulatorInfo) Intervals() int { return len(ri.Thresholds) + 1 }

// IntervalOf returns the 0-indexed activity interval containing level.
func (ri RegulatorInfo) IntervalOf(level int) int {
	for i, t := range ri.Thresholds {
		if level < t {
			return i
		}
	}
	return len(ri.Thresholds)
}

// Context is one regulatory situation for a target species: the chosen
// activity-interval index per regulator, in regulator order.
type Context struct {
	Regulators []RegulatorInfo
	Intervals  []int // per-regulator chosen interval index
}

// Canonical renders the context as "r1:t1,r2:t2,..." per spec.md §6,
// using each regulator's lower threshold bound of the chosen interval.
func (c Context) Canonical() string {
	parts := make([]string, len(c.Regulators))
	for i, r := range c.Regulators {
		lower := 0
		if c.Intervals[i] > 0 {
			lower = r.Thresholds[c.Intervals[i]-1]
		}
		parts[i] = fmt.Sprintf("%s:%d", r.Source, lower)
	}
	return strings.Join(parts, ",")
}

// Contexts enumerates all regulatory contexts for target in
// mixed-radix order over its regulators' interval counts.
func Contexts(regulators []RegulatorInfo) []Context {
	n := 1
	for _, r := range regulators {
		n *= r.Intervals()
	}
	out := make([]Context, 0, n)
	idx := make([]int, len(regulators))
	for i := 0; i < n; i++ {
		cp := append([]int(nil), idx...)
		out = append(out, Context{Regulators: regulators, Intervals: cp})
		for d := len(regulators) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < regulators[d].Intervals() {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// ContextIndex returns the enumeration index Contexts(regulators) would
// assign to the context selecting the given per-regulator interval
// indices, without materialising the full context list.
func ContextIndex(regulators []RegulatorInfo, intervals []int) int {
	idx := 0
	for i, r := range regulators {
		idx = idx*r.Intervals() + intervals[i]
	}
	return idx
}

func dedupInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
