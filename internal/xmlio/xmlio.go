// Package xmlio implements the §6 XML front-end: it loads a <MODEL>
// document into the in-memory network.Model, paramspace.UserSpec
// overrides, and the property automaton (either explicit or built from
// a <SERIES> of measurements), using encoding/xml — justified in
// DESIGN.md since this schema has no teacher-library equivalent and
// the standard library's decoder is the idiomatic Go tool for it.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"parsybone/internal/automaton"
	"parsybone/internal/errs"
	"parsybone/internal/network"
	"parsybone/internal/paramspace"
)

type xmlModel struct {
	XMLName   xml.Name      `xml:"MODEL"`
	Structure xmlStructure  `xml:"STRUCTURE"`
	Automaton *xmlAutomaton `xml:"AUTOMATON"`
	Series    *xmlSeries    `xml:"SERIES"`
}

type xmlStructure struct {
	Species []xmlSpecie `xml:"SPECIE"`
}

type xmlSpecie struct {
	Name  string     `xml:"name,attr"`
	Max   int        `xml:"max,attr"`
	Basal string     `xml:"basal,attr"`
	Regul []xmlRegul `xml:"REGUL"`
	Param []xmlParam `xml:"PARAM"`
}

type xmlRegul struct {
	Source    string `xml:"source,attr"`
	Threshold int    `xml:"threshold,attr"`
	Label     string `xml:"label,attr"`
}

type xmlParam struct {
	Context string `xml:"context,attr"`
	Value   string `xml:"value,attr"`
}

type xmlAutomaton struct {
	States []xmlState `xml:"STATE"`
}

type xmlState struct {
	Name  string    `xml:"name,attr"`
	Final bool      `xml:"final,attr"`
	Edges []xmlEdge `xml:"EDGE"`
}

type xmlEdge struct {
	Target    string `xml:"target,attr"`
	Values    string `xml:"values,attr"`
	Transient bool   `xml:"transient,attr"`
	Stable    bool   `xml:"stable,attr"`
}

type xmlSeries struct {
	MinAcc int       `xml:"min_acc,attr"`
	MaxAcc int       `xml:"max_acc,attr"`
	Expr   []xmlExpr `xml:"EXPR"`
}

type xmlExpr struct {
	Values string `xml:"values,attr"`
}

// Document is the fully decoded, cross-referenced input: the network,
// its per-context parameter overrides, and the property automaton.
type Document struct {
	Model *network.Model
	Specs map[string]map[string]paramspace.UserSpec
	Aut   *automaton.Automaton
}

// Load decodes a <MODEL> document from r.
func Load(r io.Reader) (*Document, error) {
	var x xmlModel
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, errs.Wrap(errs.ParseError, "decoding MODEL xml", err)
	}

	species, specs, err := buildSpecies(x.Structure.Species)
	if err != nil {
		return nil, err
	}
	regs, err := buildRegulations(x.Structure.Species)
	if err != nil {
		return nil, err
	}

	m, err := network.New(species, regs)
	if err != nil {
		return nil, err
	}

	switch {
	case x.Automaton != nil && x.Series != nil:
		return nil, errs.New(errs.ParseError, "MODEL carries both AUTOMATON and SERIES; exactly one is required")
	case x.Automaton != nil:
		aut, err := buildAutomaton(x.Automaton)
		if err != nil {
			return nil, err
		}
		return &Document{Model: m, Specs: specs, Aut: aut}, nil
	case x.Series != nil:
		aut, err := buildSeries(x.Series)
		if err != nil {
			return nil, err
		}
		return &Document{Model: m, Specs: specs, Aut: aut}, nil
	default:
		return nil, errs.New(errs.ParseError, "MODEL carries neither AUTOMATON nor SERIES")
	}
}

func buildSpecies(xs []xmlSpecie) ([]network.Species, map[string]map[string]paramspace.UserSpec, error) {
	species := make([]network.Species, 0, len(xs))
	specs := make(map[string]map[string]paramspace.UserSpec, len(xs))

	for _, xs := range xs {
		if err := network.ValidateName(xs.Name); err != nil {
			return nil, nil, err
		}
		basal, err := parseIntList(xs.Basal)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ParseError, fmt.Sprintf("SPECIE %q basal attribute", xs.Name), err)
		}
		species = append(species, network.Species{Name: xs.Name, MaxLevel: xs.Max, BasalTargets: basal})

		perContext := make(map[string]paramspace.UserSpec, len(xs.Param))
		for _, p := range xs.Param {
			spec, err := parseUserSpec(p.Value)
			if err != nil {
				return nil, nil, errs.Wrap(errs.ParseError, fmt.Sprintf("SPECIE %q PARAM context %q", xs.Name, p.Context), err)
			}
			perContext[p.Context] = spec
		}
		if len(perContext) > 0 {
			specs[xs.Name] = perContext
		}
	}
	return species, specs, nil
}

func buildRegulations(xs []xmlSpecie) ([]network.Regulation, error) {
	var regs []network.Regulation
	for _, s := range xs {
		for _, r := range s.Regul {
			regs = append(regs, network.Regulation{
				Source:    r.Source,
				Target:    s.Name,
				Threshold: r.Threshold,
			})
		}
	}
	return regs, nil
}

func parseIntList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing %q as an integer list: %w", raw, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseUserSpec(raw string) (paramspace.UserSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "?" {
		return paramspace.UserSpec{Keep: true}, nil
	}
	values, err := parseIntList(raw)
	if err != nil {
		return paramspace.UserSpec{}, err
	}
	return paramspace.UserSpec{Values: values}, nil
}

func buildAutomaton(x *xmlAutomaton) (*automaton.Automaton, error) {
	a := automaton.New("property")
	for _, s := range x.States {
		if err := network.ValidateName(s.Name); err != nil {
			return nil, err
		}
		a.AddState(s.Name, s.Final)
	}
	for si, s := range x.States {
		for _, e := range s.Edges {
			target := a.FindID(e.Target)
			if target < 0 {
				return nil, errs.Newf(errs.ParseError, "EDGE target %q not found among AUTOMATON states", e.Target)
			}
			if err := a.AddEdge(si, target, e.Values, e.Transient, e.Stable); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

func buildSeries(x *xmlSeries) (*automaton.Automaton, error) {
	exprs := make([]string, 0, len(x.Expr))
	for _, e := range x.Expr {
		exprs = append(exprs, e.Values)
	}
	return automaton.Build(automaton.Series{Expressions: exprs, MinAcc: x.MinAcc, MaxAcc: x.MaxAcc})
}
