// Package fit drives the varying parameters of an objective to the minimum
// of its negative log-posterior with bounded differential evolution. All
// candidate evaluations in a generation complete before selection is
// applied, and parameter values are written only by the coordinating
// goroutine; workers evaluate frozen snapshots.
package fit

import (
	"log/slog"
)

// Options configures the differential evolution search. The zero value is
// not usable; start from DefaultOptions.
type Options struct {
	PopSize          int     // population members; 0 picks 15 per dimension
	Mutation         float64 // differential weight F
	Crossover        float64 // crossover probability CR
	MaxGenerations   int     // generation budget
	Tol              float64 // relative improvement treated as progress
	StallGenerations int     // stop after this many generations below Tol
	Seed             int64   // 0 draws a seed from the clock
	Workers          int     // parallel cost evaluations; <=1 is sequential

	// Logger receives per-generation progress at debug level. Nil disables
	// logging.
	Logger *slog.Logger
}

// DefaultOptions returns balanced settings suitable for most fits.
func DefaultOptions() *Options {
	return &Options{
		Mutation:         0.7,
		Crossover:        0.9,
		MaxGenerations:   1000,
		Tol:              1e-8,
		StallGenerations: 50,
	}
}

// FastOptions returns settings for quick exploratory fits: smaller budget,
// looser convergence. Good for interactive model building.
func FastOptions() *Options {
	o := DefaultOptions()
	o.MaxGenerations = 150
	o.Tol = 1e-5
	o.StallGenerations = 20
	return o
}

// AccurateOptions returns settings for final refinement runs: larger
// population and budget, tight tolerance.
func AccurateOptions() *Options {
	o := DefaultOptions()
	o.MaxGenerations = 5000
	o.Tol = 1e-10
	o.StallGenerations = 200
	return o
}

func (o *Options) populationSize(dim int) int {
	if o.PopSize > 0 {
		if o.PopSize < 4 {
			return 4
		}
		return o.PopSize
	}
	n := 15 * dim
	if n < 8 {
		n = 8
	}
	return n
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
