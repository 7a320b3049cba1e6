package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/slabfit/go-slabfit/fit"
	"github.com/slabfit/go-slabfit/results"
	"github.com/slabfit/go-slabfit/store"
)

func fitCmd(args []string) error {
	fs := flag.NewFlagSet("fit", flag.ExitOnError)
	output := fs.String("output", "", "Output file for the JSON fit report")
	dbPath := fs.String("db", "", "Session database (created if missing)")
	name := fs.String("name", "", "Session name (defaults to the model file)")
	structs := fs.String("structs", "", "Comma-separated structure names, one per data file")
	dqq := fs.Float64("dqq", 0, "Constant fractional resolution dq/q (FWHM) when data carries no dq column")
	preset := fs.String("preset", "default", "Optimizer preset: fast, default, or accurate")
	generations := fs.Int("generations", 0, "Override maximum generations")
	seed := fs.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	workers := fs.Int("workers", 0, "Parallel evaluation workers (0 = GOMAXPROCS)")
	varyScale := fs.Bool("vary-scale", false, "Refine the per-dataset scale factor")
	varyBkg := fs.Bool("vary-background", false, "Refine the per-dataset constant background")
	verbose := fs.Bool("verbose", false, "Log optimizer progress")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit fit <model.json> <data.dat> [more data files] [options]

Refine the model's varying parameters against the data by differential
evolution. With several data files the datasets are co-refined: shared
materials contribute one degree of freedom across all of them.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Single dataset
  slabfit fit model.json data.dat --output report.json

  # Two contrasts, shared film parameters
  slabfit fit model.json air.dat d2o.dat --structs "in air,in d2o"

  # Reproducible run with a stored session
  slabfit fit model.json data.dat --seed 42 --db sessions.db
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

	opts, err := presetOptions(*preset)
	if err != nil {
		return err
	}
	if *generations > 0 {
		opts.MaxGenerations = *generations
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	opts.Seed = *seed
	opts.Workers = workerCount(*workers)
	if *verbose {
		opts.Logger = newLogger(true)
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
		sess, err = db.Begin(*name, store.KindFit, *seed)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := fit.Minimize(ctx, prob.post, opts)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	report, err := results.Build(prob.post, res)
	if err != nil {
		return err
	}
	if sess != nil {
		report.Session = sess.ID
		if err := db.FinishFit(sess.ID, res.Cost, res.Generations, res.Evaluations, res.Converged); err != nil {
			return err
		}
		if err := db.SaveParameters(sess.ID, prob.post.VaryingParameters()); err != nil {
			return err
		}
	}

	printReport(report)
	if *output != "" {
		if err := results.WriteJSON(report, *output); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", *output)
	}
	return nil
}

func presetOptions(name string) (*fit.Options, error) {
	switch name {
	case "fast":
		return fit.FastOptions(), nil
	case "default", "":
		return fit.DefaultOptions(), nil
	case "accurate":
		return fit.AccurateOptions(), nil
	}
	return nil, fmt.Errorf("unknown preset %q (want fast, default, or accurate)", name)
}

func printReport(r *results.FitReport) {
	fmt.Printf("chi-squared: %.4g over %d points", r.ChiSquared, r.Points)
	if dof := r.Points - len(r.Parameters); dof > 0 {
		fmt.Printf(" (reduced %.4g)", r.ReducedChiSquared())
	}
	fmt.Println()
	if r.Generations > 0 {
		status := "stopped"
		if r.Converged {
			status = "converged"
		}
		fmt.Printf("%s after %d generations, %d evaluations\n", status, r.Generations, r.Evaluations)
	}
	for _, p := range r.Parameters {
		fmt.Printf("  %-28s %12.6g", p.Name, p.Value)
		if p.Stderr > 0 {
			fmt.Printf(" +/- %.3g  [p16 %.6g, p84 %.6g]", p.Stderr, p.P16, p.P84)
		}
		fmt.Println()
	}
	for _, w := range r.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
