package results

import (
	"fmt"
	"sort"

	"github.com/slabfit/go-slabfit/fit"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/sample"
)

// scorable is the subset of objective behaviour a report needs beyond the
// Posterior interface. Both Objective and Global provide it.
type scorable interface {
	objective.Posterior
	ChiSquared() (float64, error)
}

// Build assembles a report from a completed fit. res may be nil when only
// the current parameter values should be reported.
func Build(post scorable, res *fit.Result) (*FitReport, error) {
	chi2, err := post.ChiSquared()
	if err != nil {
		return nil, fmt.Errorf("scoring fit: %w", err)
	}

	report := &FitReport{ChiSquared: chi2}
	switch o := post.(type) {
	case *objective.Objective:
		report.Datasets = []string{o.Data.Name}
		report.Points = o.Data.Len()
	case *objective.Global:
		for _, c := range o.Objectives {
			report.Datasets = append(report.Datasets, c.Data.Name)
			report.Points += c.Data.Len()
		}
	}
	if res != nil {
		report.Cost = res.Cost
		report.Generations = res.Generations
		report.Evaluations = res.Evaluations
		report.Converged = res.Converged
	}

	for _, p := range post.VaryingParameters() {
		report.Parameters = append(report.Parameters, ParamSummary{
			Name:  p.Name,
			Value: p.Value,
			Low:   p.Bounds.Low,
			High:  p.Bounds.High,
		})
	}
	return report, nil
}

// AttachChain folds posterior samples into the report: per-parameter
// standard error and 16/50/84 percentiles, plus sampler diagnostics.
func (r *FitReport) AttachChain(s *sample.Sampler) {
	chain := s.FlatChain()
	if len(chain) == 0 {
		return
	}
	std := s.Std()
	r.Walkers = s.Walkers()
	r.Samples = len(chain)
	r.Acceptance = s.Acceptance()
	if w := s.Diagnose(); w != nil {
		r.Warnings = append(r.Warnings, w.Messages...)
	}

	for d := range r.Parameters {
		if d >= s.Dim() {
			break
		}
		col := make([]float64, len(chain))
		for i, v := range chain {
			col[i] = v[d]
		}
		sort.Float64s(col)
		r.Parameters[d].Stderr = std[d]
		r.Parameters[d].P16 = quantile(col, 0.16)
		r.Parameters[d].Median = quantile(col, 0.5)
		r.Parameters[d].P84 = quantile(col, 0.84)
	}
}

// quantile interpolates the p-quantile of sorted values.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
