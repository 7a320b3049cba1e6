package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/slabfit/go-slabfit/plotter"
)

func plotCmd(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	output := fs.String("output", "", "Output SVG file (required)")
	structs := fs.String("structs", "", "Comma-separated structure names, one per data file")
	dqq := fs.Float64("dqq", 0, "Constant fractional resolution dq/q (FWHM) when data carries no dq column")
	width := fs.Float64("width", 800, "Plot width in pixels")
	height := fs.Float64("height", 500, "Plot height in pixels")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit plot <model.json> <data.dat> [more data files] [options]

Render the model reflectivity curve over the measured data as SVG, on a
log reflectivity axis. With several data files every curve and dataset
shares one plot.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("model file and at least one data file required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	prob, err := loadProblem(fs.Arg(0), fs.Args()[1:], *structs, *dqq, false, false)
	if err != nil {
		return err
	}

	var svg string
	if prob.global != nil {
		svg, err = plotter.CoRefinementPlot(prob.global, *width, *height)
	} else {
		svg, err = plotter.ReflectivityPlot(prob.objectives[0], *width, *height)
	}
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	if err := os.WriteFile(*output, []byte(svg), 0644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	fmt.Printf("Plot written to %s\n", *output)
	return nil
}
