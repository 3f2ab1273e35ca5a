// Package orchestrator implements C11: the batch loop that drives C2
// through C10 to completion for one worker process. Grounded on
// spec.md §4.10 plus the teacher's cmd/turducken/main.go top-level
// wiring style (flag-driven setup, log.Fatalf on unrecoverable error).
package orchestrator

import (
	"strconv"
	"strings"

	"parsybone/internal/batch"
	"parsybone/internal/checker"
	"parsybone/internal/network"
	"parsybone/internal/paramset"
	"parsybone/internal/paramspace"
	"parsybone/internal/product"
	"parsybone/internal/resultsink"
	"parsybone/internal/robustness"
	"parsybone/internal/sqlitestore"
	"parsybone/internal/witness"
)

// Options controls one worker's run (spec.md §6's CLI surface, minus
// the flag-parsing mechanics owned by cmd/parsybone).
type Options struct {
	ProcessesCount int
	ProcessNumber  int

	Witnesses     bool
	LongWitnesses bool
	Robustness    bool
	BFSBound      int
	TimeSeries    bool
	MinAcc        int // time-series mode: drop accepted bits whose cost < MinAcc

	FilterDB string // optional sqlitestore path, §6
}

// Run drives every batch assigned to this worker, writing accepted
// results to sink.
func Run(m *network.Model, space *paramspace.Space, p *product.Product, opts Options, sink *resultsink.Sink) (int, error) {
	splitter, err := batch.New(opts.ProcessesCount, opts.ProcessNumber, space.Total)
	if err != nil {
		return 0, err
	}
	rounds := splitter.Rounds()

	var startMasks []paramset.Paramset
	if opts.FilterDB != "" {
		store, err := sqlitestore.Open(opts.FilterDB)
		if err != nil {
			return 0, err
		}
		defer store.Close()
		startMasks, err = store.LoadMasks(len(rounds))
		if err != nil {
			return 0, err
		}
	}

	storage := checker.NewColorStorage(len(p.States))
	accepted := 0

	for roundIdx, round := range rounds {
		storage.Reset()

		start := round.Initial
		if startMasks != nil {
			start = startMasks[roundIdx]
		}

		settings := checker.Settings{
			BatchFirst: round.First,
			Width:      round.Width,
			BFSBound:   opts.BFSBound,
		}
		c := checker.New(p, settings, storage)
		res := c.StartMulti(p.InitialStates, start)

		if !opts.TimeSeries {
			res.Acceptable &= cycleAcceptingMask(p, settings, storage)
		}

		n, err := emitAccepted(p, space, settings, res, round, opts, sink)
		if err != nil {
			return accepted, err
		}
		accepted += n
	}

	return accepted, sink.Flush()
}

// cycleAcceptingMask implements spec.md §4.7's two-phase cycle
// detection for general-LTL (non-time-series) properties. phase1 is
// the ColorStorage left behind by the forward reachability BFS that
// already ran this batch: for every final state f whose phase-one
// color is non-empty, a fresh BFS runs from f back to f (f is its own
// sole initial and sole final state, so a zero-length "cycle" can
// never register — StartFrom only colors f's successors, never f
// itself, before the first real step completes). The union of what
// each such second-phase search accepts, intersected with phase one's
// result by the caller, is the sound Büchi-acceptance mask: a
// parametrisation only qualifies if some final state is both reachable
// and revisitable.
func cycleAcceptingMask(p *product.Product, settings checker.Settings, phase1 *checker.ColorStorage) paramset.Paramset {
	var accepting paramset.Paramset
	for _, f := range p.FinalStates {
		seed := phase1.Color(f)
		if seed == 0 {
			continue
		}
		cycleSettings := settings
		cycleSettings.InitialStates = []int{f}
		cycleSettings.FinalStates = []int{f}
		cycleStorage := checker.NewColorStorage(len(p.States))
		cycleChecker := checker.New(p, cycleSettings, cycleStorage)
		cycleRes := cycleChecker.StartFrom(f, seed)
		accepting |= cycleRes.Acceptable
	}
	return accepting
}

// emitAccepted walks res.Acceptable's set bits in batch-local,
// ascending-ParamNo order and writes one resultsink.Line per bit,
// optionally attaching a witness path and robustness value.
func emitAccepted(p *product.Product, space *paramspace.Space, settings checker.Settings, res checker.Results, round batch.Round, opts Options, sink *resultsink.Sink) (int, error) {
	n := 0
	for _, bitMask := range paramset.SingleMasks(res.Acceptable) {
		pos, err := paramset.BitNum(bitMask)
		if err != nil {
			return n, err
		}
		if opts.TimeSeries && res.Cost[pos] < opts.MinAcc {
			continue
		}
		paramNo := settings.BatchFirst + pos

		line := resultsink.Line{
			ParamNo:  paramNo,
			Explicit: space.String(paramNo),
		}

		var edges []witness.Edge
		if opts.Witnesses || opts.Robustness {
			edges = witness.Find(p, p.InitialStates, p.FinalStates, paramNo, res.LowerBound)
		}
		if opts.Witnesses && edges != nil {
			line.Witness = renderWitness(p, edges, opts.LongWitnesses)
			line.HasWitness = true
		}
		if opts.Robustness {
			line.Robustness = robustness.Compute(len(p.States), p.InitialStates, p.FinalStates, edges, res.LowerBound)
			line.HasRobust = true
		}

		if err := sink.Write(line); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// renderWitness concatenates the path's state sequence either as raw
// product-state IDs or, with long=true, as UTS level-tuples per
// spec.md §6's --long-witnesses flag.
func renderWitness(p *product.Product, edges []witness.Edge, long bool) string {
	if len(edges) == 0 {
		return ""
	}
	labels := make([]string, 0, len(edges)+1)
	labels = append(labels, witnessStateLabel(p, edges[0].Source, long))
	for _, e := range edges {
		labels = append(labels, witnessStateLabel(p, e.Target, long))
	}
	return strings.Join(labels, "->")
}

func witnessStateLabel(p *product.Product, id int, long bool) string {
	if !long {
		return strconv.Itoa(id)
	}
	levels := p.UTS.States[p.States[id].UTSState].Levels
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
