package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "fit":
		if err := fitCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sample":
		if err := sampleCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "plot":
		if err := plotCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "profile":
		if err := profileCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "convert":
		if err := convertCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sessions":
		if err := sessionsCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("slabfit version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`slabfit - neutron reflectometry slab model fitting

Usage:
  slabfit <command> [options]

Commands:
  fit        Refine a slab model against measured reflectivity data
  sample     Draw posterior samples around a refined model
  plot       Generate SVG of model curves against data
  profile    Generate SVG of the model SLD depth profile
  convert    Rewrite a reflectivity data file in canonical form
  sessions   List or inspect stored fit and sampling sessions
  help       Show this help message
  version    Show version information

Examples:
  # Refine a single-dataset model
  slabfit fit model.json data.dat --output report.json

  # Co-refine two contrasts of the same sample
  slabfit fit model.json air.dat d2o.dat --structs "in air,in d2o"

  # Sample the posterior after refinement
  slabfit sample model.json data.dat --steps 2000 --burn 500

  # Plot fit against data
  slabfit plot model.json data.dat --output fit.svg

For command-specific help, run:
  slabfit <command> --help`)
}
