package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/slabfit/go-slabfit/dataset"
)

func convertCmd(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("output", "", "Output data file (required)")
	qmin := fs.Float64("qmin", 0, "Drop points below this q")
	qmax := fs.Float64("qmax", math.Inf(1), "Drop points above this q")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit convert <data.dat> [options]

Rewrite a reflectivity data file in canonical whitespace-separated
column form (q, R, dR, dq), optionally trimming the q range. Accepts
any file the fit command accepts.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("data file required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	data, err := dataset.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	var q, r, dr, dq []float64
	for i := range data.Q {
		if data.Q[i] < *qmin || data.Q[i] > *qmax {
			continue
		}
		q = append(q, data.Q[i])
		r = append(r, data.R[i])
		if data.HasUncertainty() {
			dr = append(dr, data.DR[i])
		}
		if data.HasResolution() {
			dq = append(dq, data.DQ[i])
		}
	}
	trimmed, err := dataset.New(data.Name, q, r, dr, dq)
	if err != nil {
		return fmt.Errorf("trim: %w", err)
	}

	if err := dataset.Save(trimmed, *output); err != nil {
		return err
	}
	fmt.Printf("%d of %d points written to %s\n", trimmed.Len(), data.Len(), *output)
	return nil
}
