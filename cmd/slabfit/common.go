package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/parser"
	"github.com/slabfit/go-slabfit/reflectivity"
)

// posterior is what both fitting and reporting need from a problem.
type posterior interface {
	objective.Posterior
	ChiSquared() (float64, error)
}

// problem bundles a loaded model definition with the objective built
// against the data files.
type problem struct {
	def        *parser.Definition
	objectives []*objective.Objective
	global     *objective.Global // nil for a single dataset
	post       posterior
}

// workerCount expands the CLI's zero default to one worker per CPU.
// The libraries treat anything below two as sequential.
func workerCount(n int) int {
	if n == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

// loadProblem parses the model definition, loads each data file, and
// pairs datasets with structures. structSel is a comma-separated list of
// structure names in data-file order; it may be empty when the
// definition holds a single structure.
func loadProblem(modelFile string, dataFiles []string, structSel string, dqq float64, varyScale, varyBkg bool) (*problem, error) {
	if len(dataFiles) == 0 {
		return nil, fmt.Errorf("at least one data file required")
	}

	def, err := parser.Load(modelFile)
	if err != nil {
		return nil, err
	}

	names, err := structureNames(def, structSel, len(dataFiles))
	if err != nil {
		return nil, err
	}

	p := &problem{def: def}
	for i, file := range dataFiles {
		data, err := dataset.Load(file)
		if err != nil {
			return nil, err
		}
		s := def.Structures[names[i]]
		model := reflectivity.NewModel(s).WithCache(256)
		model.ConstantDQQ = dqq
		if len(dataFiles) > 1 {
			model.Scale.Name = data.Name + " scale"
			model.Background.Name = data.Name + " bkg"
		}
		if varyScale {
			model.Scale.Bounds = param.Bounds{Low: 0.5, High: 1.5}
			if err := model.Scale.SetVary(true); err != nil {
				return nil, err
			}
		}
		if varyBkg {
			model.Background.Bounds = param.Bounds{Low: 0, High: 1e-4}
			if err := model.Background.SetVary(true); err != nil {
				return nil, err
			}
		}
		p.objectives = append(p.objectives, objective.New(model, data))
	}

	if len(p.objectives) == 1 {
		p.post = p.objectives[0]
	} else {
		p.global = objective.NewGlobal(p.objectives...)
		p.post = p.global
	}
	return p, nil
}

func structureNames(def *parser.Definition, structSel string, n int) ([]string, error) {
	if structSel == "" {
		if _, err := def.Structure(); err != nil {
			return nil, fmt.Errorf("%w (use --structs)", err)
		}
		var only string
		for name := range def.Structures {
			only = name
		}
		out := make([]string, n)
		for i := range out {
			out[i] = only
		}
		return out, nil
	}

	names := strings.Split(structSel, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	if len(names) == 1 && n > 1 {
		one := names[0]
		names = make([]string, n)
		for i := range names {
			names[i] = one
		}
	}
	if len(names) != n {
		return nil, fmt.Errorf("--structs names %d structures for %d data files", len(names), n)
	}
	for _, name := range names {
		if _, ok := def.Structures[name]; !ok {
			return nil, fmt.Errorf("unknown structure %q in --structs", name)
		}
	}
	return names, nil
}
