package main

import (
	"flag"
	"log"
	"os"

	"parsybone/internal/guard"
	"parsybone/internal/orchestrator"
	"parsybone/internal/paramspace"
	"parsybone/internal/paramset"
	"parsybone/internal/product"
	"parsybone/internal/resultsink"
	"parsybone/internal/uts"
	"parsybone/internal/xmlio"
)

func main() {
	modelPath := flag.String("model", "", "path to the MODEL xml input file")
	processes := flag.Int("processes", 1, "total number of cooperating worker processes")
	worker := flag.Int("worker", 1, "this process's 1-indexed worker number")
	witnesses := flag.Bool("witnesses", false, "emit a witness path for every accepted parametrisation")
	longWitnesses := flag.Bool("long-witnesses", false, "render witnesses as UTS level-tuples instead of product-state IDs")
	robust := flag.Bool("robustness", false, "compute a robustness value for every accepted parametrisation")
	bound := flag.Int("bound", 0, "BFS depth bound (0 means unbounded)")
	timeSeries := flag.Bool("time-series", false, "check the property as a time-series: skip cycle detection and apply the SERIES min_acc/max_acc bounds (the automaton is built from whichever of AUTOMATON or SERIES the model file holds)")
	filterDB := flag.String("filter-db", "", "optional sqlite database of per-batch starting Paramsets")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("--model is required")
	}

	if err := paramset.SelfTest(); err != nil {
		log.Fatalf("paramset self-test failed: %v", err)
	}

	f, err := os.Open(*modelPath)
	if err != nil {
		log.Fatalf("opening model file: %v", err)
	}
	doc, err := xmlio.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("loading model: %v", err)
	}
	space, err := paramspace.Build(doc.Model, doc.Specs)
	if err != nil {
		log.Fatalf("building parameter space: %v", err)
	}

	u, err := uts.Build(doc.Model, space)
	if err != nil {
		log.Fatalf("building the unparametrised transition system: %v", err)
	}

	ev, err := guard.New()
	if err != nil {
		log.Fatalf("starting the guard evaluator: %v", err)
	}

	p, err := product.Build(u, doc.Aut, ev)
	if err != nil {
		log.Fatalf("building the product structure: %v", err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("creating output file: %v", err)
		}
		defer f.Close()
		w = f
	}
	sink := resultsink.New(w)

	effectiveBound := *bound
	if *timeSeries && doc.Aut.MaxAcc > 0 && (effectiveBound == 0 || doc.Aut.MaxAcc < effectiveBound) {
		effectiveBound = doc.Aut.MaxAcc
	}

	opts := orchestrator.Options{
		ProcessesCount: *processes,
		ProcessNumber:  *worker,
		Witnesses:      *witnesses,
		LongWitnesses:  *longWitnesses,
		Robustness:     *robust,
		BFSBound:       effectiveBound,
		TimeSeries:     *timeSeries,
		MinAcc:         doc.Aut.MinAcc,
		FilterDB:       *filterDB,
	}

	accepted, err := orchestrator.Run(doc.Model, space, p, opts, sink)
	if err != nil {
		log.Fatalf("synthesis run failed: %v", err)
	}
	log.Printf("accepted %d parametrisation(s) in this worker's slice, out of %d in the whole space", accepted, space.Total)
}
