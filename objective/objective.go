// Package objective pairs forward models with measured datasets and scores
// parameter values: residuals, chi-squared, Gaussian log-likelihood and
// log-posterior. A GlobalObjective sums several objectives that share
// parameter handles, which is how multiple contrasts are co-refined.
package objective

import (
	"math"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/reflectivity"
)

// LogPriorFunc returns an additional log-prior contribution. It is summed
// into the log-posterior after the hard bounds check.
type LogPriorFunc func() float64

// Objective scores one model against one dataset.
type Objective struct {
	Model *reflectivity.Model
	Data  *dataset.Dataset

	// Extra log-prior terms beyond the uniform bounds prior, optional.
	LogPriors []LogPriorFunc
}

// New creates an objective for the model/dataset pair.
func New(model *reflectivity.Model, data *dataset.Dataset) *Objective {
	return &Objective{Model: model, Data: data}
}

// WithLogPrior appends an extra log-prior term and returns the objective
// for chaining.
func (o *Objective) WithLogPrior(f LogPriorFunc) *Objective {
	o.LogPriors = append(o.LogPriors, f)
	return o
}

// Parameters returns every parameter handle the model exposes,
// deduplicated in declaration order.
func (o *Objective) Parameters() *param.Set {
	return o.Model.Parameters()
}

// VaryingParameters returns the varying parameters in stable declaration
// order. This order is the contract with the optimizer: position i in the
// search vector maps to the same parameter for the life of the fit.
func (o *Objective) VaryingParameters() []*param.Parameter {
	return o.Parameters().Varying()
}

// Generative evaluates the model curve at the dataset's q grid using its
// pointwise resolution. Read-only accessor for plotting.
func (o *Objective) Generative() ([]float64, error) {
	return o.Model.Compute(o.Data.Q, o.Data.DQ)
}

// Residuals returns (model - data) / dR at every point.
func (o *Objective) Residuals() ([]float64, error) {
	model, err := o.Generative()
	if err != nil {
		return nil, err
	}
	dr := o.Data.Uncertainties()
	out := make([]float64, len(model))
	for i := range model {
		out[i] = (model[i] - o.Data.R[i]) / dr[i]
	}
	return out, nil
}

// ChiSquared returns the sum of squared residuals.
func (o *Objective) ChiSquared() (float64, error) {
	res, err := o.Residuals()
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, r := range res {
		sum += r * r
	}
	return sum, nil
}

// LogLikelihood returns the Gaussian log-likelihood
// -0.5*chi2 - 0.5*sum(log(2*pi*dR^2)).
func (o *Objective) LogLikelihood() (float64, error) {
	chi2, err := o.ChiSquared()
	if err != nil {
		return 0, err
	}
	norm := 0.0
	for _, dr := range o.Data.Uncertainties() {
		norm += math.Log(2 * math.Pi * dr * dr)
	}
	return -0.5*chi2 - 0.5*norm, nil
}

// LogPosterior returns the log-posterior of the current parameter values.
// Any varying parameter outside its bounds, or a numerical failure in the
// forward model, yields -Inf; the invalid model is never clipped to a
// finite score.
func (o *Objective) LogPosterior() float64 {
	return logPosterior(o.VaryingParameters(), o.LogPriors, func() (float64, error) {
		return o.LogLikelihood()
	})
}

// NegLogPosterior is the scalar cost minimized by the optimizer.
func (o *Objective) NegLogPosterior() float64 {
	return -o.LogPosterior()
}

func logPosterior(varying []*param.Parameter, priors []LogPriorFunc, logl func() (float64, error)) float64 {
	for _, p := range varying {
		if !p.InBounds() {
			return math.Inf(-1)
		}
	}
	lp := 0.0
	for _, f := range priors {
		lp += f()
	}
	if math.IsInf(lp, -1) {
		return math.Inf(-1)
	}
	ll, err := logl()
	if err != nil || math.IsNaN(ll) {
		return math.Inf(-1)
	}
	return ll + lp
}
