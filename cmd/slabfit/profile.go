package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/slabfit/go-slabfit/parser"
	"github.com/slabfit/go-slabfit/plotter"
)

func profileCmd(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	output := fs.String("output", "", "Output SVG file (required)")
	structName := fs.String("struct", "", "Structure name (required when the model holds several)")
	width := fs.Float64("width", 800, "Plot width in pixels")
	height := fs.Float64("height", 500, "Plot height in pixels")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit profile <model.json> [options]

Render the structure's scattering length density depth profile as SVG,
with interfacial roughness broadening applied.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	def, err := parser.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	s := def.Structures[*structName]
	if *structName == "" {
		if s, err = def.Structure(); err != nil {
			return fmt.Errorf("%w (use --struct)", err)
		}
	} else if s == nil {
		return fmt.Errorf("unknown structure %q", *structName)
	}

	svg := plotter.SLDProfilePlot(s, *width, *height)
	if err := os.WriteFile(*output, []byte(svg), 0644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	fmt.Printf("Profile written to %s\n", *output)
	return nil
}
