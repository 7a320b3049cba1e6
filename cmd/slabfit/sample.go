package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/slabfit/go-slabfit/results"
	"github.com/slabfit/go-slabfit/sample"
	"github.com/slabfit/go-slabfit/store"
)

func sampleCmd(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	steps := fs.Int("steps", 1000, "Ensemble steps to sample")
	burn := fs.Int("burn", 0, "Burn-in steps discarded before sampling")
	walkers := fs.Int("walkers", 0, "Ensemble walkers (0 picks from dimensionality)")
	thin := fs.Int("thin", 1, "Keep every thin-th step")
	output := fs.String("output", "", "Output file for the JSON report")
	dbPath := fs.String("db", "", "Session database; stores the chain")
	name := fs.String("name", "", "Session name (defaults to the model file)")
	structs := fs.String("structs", "", "Comma-separated structure names, one per data file")
	dqq := fs.Float64("dqq", 0, "Constant fractional resolution dq/q (FWHM) when data carries no dq column")
	seed := fs.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	workers := fs.Int("workers", 0, "Parallel evaluation workers (0 = GOMAXPROCS)")
	varyScale := fs.Bool("vary-scale", false, "Sample the per-dataset scale factor")
	varyBkg := fs.Bool("vary-background", false, "Sample the per-dataset constant background")
	verbose := fs.Bool("verbose", false, "Log sampler progress")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit sample <model.json> <data.dat> [more data files] [options]

Draw posterior samples around the model's current parameter values with
an affine-invariant walker ensemble. Start from refined values (run
slabfit fit first, or set values in the model definition) so burn-in
stays short.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  slabfit sample model.json data.dat --steps 2000 --burn 500
  slabfit sample model.json data.dat --walkers 64 --thin 10 --db sessions.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("model file and at least one data file required")
	}

	prob, err := loadProblem(fs.Arg(0), fs.Args()[1:], *structs, *dqq, *varyScale, *varyBkg)
	if err != nil {
		return err
	}

	opts := sample.DefaultOptions()
	opts.Walkers = *walkers
	opts.Thin = *thin
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	opts.Seed = *seed
	opts.Workers = workerCount(*workers)
	if *verbose {
		opts.Logger = newLogger(true)
	}

	sampler, err := sample.New(prob.post, opts)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	var db *store.Store
	var sess *store.Session
	if *dbPath != "" {
		db, err = store.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if *name == "" {
			*name = fs.Arg(0)
		}
		sess, err = db.Begin(*name, store.KindSample, *seed)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *burn > 0 {
		if _, err := sampler.Sample(ctx, *burn); err != nil {
			return fmt.Errorf("burn-in: %w", err)
		}
		sampler.Reset()
	}
	samples, err := sampler.Sample(ctx, *steps)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	report, err := results.Build(prob.post, nil)
	if err != nil {
		return err
	}
	report.AttachChain(sampler)

	if sess != nil {
		report.Session = sess.ID
		if err := db.AppendChain(sess.ID, samples); err != nil {
			return err
		}
		if err := db.FinishSample(sess.ID, sampler.Acceptance(), len(samples)); err != nil {
			return err
		}
		if err := db.SaveParameters(sess.ID, prob.post.VaryingParameters()); err != nil {
			return err
		}
	}

	fmt.Printf("%d samples from %d walkers, acceptance %.2f\n",
		len(samples), sampler.Walkers(), sampler.Acceptance())
	printReport(report)
	if *output != "" {
		if err := results.WriteJSON(report, *output); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", *output)
	}
	return nil
}
