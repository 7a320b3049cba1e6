// Package sensitivity analyzes how the goodness of fit responds to each
// varying parameter: impact ranking under perturbation, one-dimensional
// sweeps, and covariance estimates from the residual Jacobian.
package sensitivity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
)

// ErrSingular indicates the Jacobian carries too little information to
// estimate a covariance matrix, usually because two parameters are fully
// correlated or a parameter does not affect the model.
var ErrSingular = errors.New("sensitivity: singular normal matrix")

// Target is the part of an objective sensitivity analysis needs.
// Both objective.Objective and objective.Global satisfy it.
type Target interface {
	VaryingParameters() []*param.Parameter
	ChiSquared() (float64, error)
}

// Result holds the outcome of a perturbation analysis.
type Result struct {
	Baseline float64            // chi-squared at the current values
	Scores   map[string]float64 // chi-squared with each parameter perturbed
	Impact   map[string]float64 // change from baseline
	Ranking  []RankedParam      // parameters sorted by absolute impact
}

// RankedParam is one parameter and its impact on the fit.
type RankedParam struct {
	Name   string
	Impact float64
}

// Analyzer perturbs one parameter at a time around the current values.
// Evaluations mutate the shared parameter handles, so an Analyzer must
// not run concurrently with fitting or sampling; every method restores
// the entry values before returning.
type Analyzer struct {
	target Target
	step   float64
}

// NewAnalyzer creates an analyzer perturbing each parameter by the given
// fraction of its bounds width. step <= 0 selects 1%.
func NewAnalyzer(target Target, step float64) *Analyzer {
	if step <= 0 {
		step = 0.01
	}
	return &Analyzer{target: target, step: step}
}

// Analyze perturbs each varying parameter in turn and ranks them by the
// resulting change in chi-squared.
func (a *Analyzer) Analyze() (*Result, error) {
	params := a.target.VaryingParameters()
	result := &Result{
		Scores: make(map[string]float64, len(params)),
		Impact: make(map[string]float64, len(params)),
	}

	baseline, err := a.target.ChiSquared()
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	result.Baseline = baseline

	for _, p := range params {
		entry := p.Value
		p.Value = perturbed(p, a.step)
		score, err := a.target.ChiSquared()
		p.Value = entry
		if err != nil {
			return nil, fmt.Errorf("perturbing %s: %w", p.Name, err)
		}
		result.Scores[p.Name] = score
		result.Impact[p.Name] = score - baseline
	}

	result.Ranking = rankByImpact(result.Impact)
	return result, nil
}

// perturbed steps the value by a fraction of the bounds width, flipping
// direction when the step would leave the bounds.
func perturbed(p *param.Parameter, step float64) float64 {
	h := step * p.Bounds.Width()
	if v := p.Value + h; v <= p.Bounds.High {
		return v
	}
	return p.Value - h
}

func rankByImpact(impact map[string]float64) []RankedParam {
	ranking := make([]RankedParam, 0, len(impact))
	for name, imp := range impact {
		ranking = append(ranking, RankedParam{Name: name, Impact: imp})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if a, b := math.Abs(ranking[i].Impact), math.Abs(ranking[j].Impact); a != b {
			return a > b
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// SweepResult holds chi-squared over a grid of values for one parameter.
type SweepResult struct {
	Parameter string
	Values    []float64
	Scores    []float64
	Best      struct {
		Value float64
		Score float64
	}
}

// Sweep evaluates chi-squared at each value of the parameter, restoring
// the entry value afterwards.
func (a *Analyzer) Sweep(p *param.Parameter, values []float64) (*SweepResult, error) {
	result := &SweepResult{
		Parameter: p.Name,
		Values:    values,
		Scores:    make([]float64, len(values)),
	}
	result.Best.Score = math.Inf(1)

	entry := p.Value
	defer func() { p.Value = entry }()

	for i, val := range values {
		p.Value = val
		score, err := a.target.ChiSquared()
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", p.Name, val, err)
		}
		result.Scores[i] = score
		if score < result.Best.Score {
			result.Best.Value = val
			result.Best.Score = score
		}
	}
	return result, nil
}

// Covariance estimates the parameter covariance matrix at the current
// values by finite-difference Jacobian of the weighted residuals,
// cov = (J^T J)^-1. Row and column order follows VaryingParameters.
func (a *Analyzer) Covariance() ([][]float64, error) {
	params := a.target.VaryingParameters()
	n := len(params)
	if n == 0 {
		return nil, fmt.Errorf("%w: no varying parameters", ErrSingular)
	}

	base, err := residuals(a.target)
	if err != nil {
		return nil, err
	}

	// Jacobian columns, one per parameter.
	jac := make([][]float64, n)
	for j, p := range params {
		entry := p.Value
		p.Value = perturbed(p, a.step)
		shifted, err := residuals(a.target)
		step := p.Value - entry
		p.Value = entry
		if err != nil {
			return nil, fmt.Errorf("jacobian %s: %w", p.Name, err)
		}
		if step == 0 {
			return nil, fmt.Errorf("%w: %s has zero-width bounds", ErrSingular, p.Name)
		}
		col := make([]float64, len(base))
		for i := range base {
			col[i] = (shifted[i] - base[i]) / step
		}
		jac[j] = col
	}

	// Normal matrix J^T J.
	normal := make([][]float64, n)
	for i := range normal {
		normal[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			var sum float64
			for k := range base {
				sum += jac[i][k] * jac[j][k]
			}
			normal[i][j] = sum
			normal[j][i] = sum
		}
	}

	cov, err := invert(normal)
	if err != nil {
		return nil, err
	}
	return cov, nil
}

// Correlation converts a covariance matrix into a correlation matrix.
func Correlation(cov [][]float64) [][]float64 {
	n := len(cov)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			d := math.Sqrt(cov[i][i] * cov[j][j])
			if d == 0 {
				continue
			}
			out[i][j] = cov[i][j] / d
		}
	}
	return out
}

// residuals collects weighted residuals across every dataset in the target.
func residuals(target Target) ([]float64, error) {
	switch o := target.(type) {
	case *objective.Objective:
		return o.Residuals()
	case *objective.Global:
		var out []float64
		for _, c := range o.Objectives {
			r, err := c.Residuals()
			if err != nil {
				return nil, err
			}
			out = append(out, r...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("sensitivity: unsupported target %T", target)
}

// invert performs Gauss-Jordan elimination with partial pivoting.
func invert(m [][]float64) ([][]float64, error) {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-300 {
			return nil, ErrSingular
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := 1 / aug[col][col]
		for c := range aug[col] {
			aug[col][c] *= inv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			for c := range aug[r] {
				aug[r][c] -= f * aug[col][c]
			}
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = aug[i][n:]
	}
	return out, nil
}
