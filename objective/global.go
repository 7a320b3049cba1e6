package objective

import (
	"github.com/slabfit/go-slabfit/param"
)

// Global aggregates several objectives under the conditional-independence
// assumption: the joint log-likelihood is the sum over constituents. A
// parameter handle shared between constituents appears exactly once in the
// varying set, so the optimizer adjusts it once and every dataset that
// references it feels the change.
type Global struct {
	Objectives []*Objective

	// Extra log-prior terms applied to the joint posterior, optional.
	LogPriors []LogPriorFunc
}

// NewGlobal creates a global objective over the given constituents, in order.
func NewGlobal(objectives ...*Objective) *Global {
	return &Global{Objectives: objectives}
}

// WithLogPrior appends an extra joint log-prior term.
func (g *Global) WithLogPrior(f LogPriorFunc) *Global {
	g.LogPriors = append(g.LogPriors, f)
	return g
}

// Parameters returns the union of all constituents' parameters,
// deduplicated by identity in first-seen order.
func (g *Global) Parameters() *param.Set {
	set := param.NewSet()
	for _, o := range g.Objectives {
		set.Add(o.Parameters().All()...)
	}
	return set
}

// VaryingParameters returns the deduplicated varying union, first-seen order.
func (g *Global) VaryingParameters() []*param.Parameter {
	return g.Parameters().Varying()
}

// ChiSquared sums chi-squared over constituents.
func (g *Global) ChiSquared() (float64, error) {
	total := 0.0
	for _, o := range g.Objectives {
		c, err := o.ChiSquared()
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

// LogLikelihood sums the constituents' log-likelihoods.
func (g *Global) LogLikelihood() (float64, error) {
	total := 0.0
	for _, o := range g.Objectives {
		ll, err := o.LogLikelihood()
		if err != nil {
			return 0, err
		}
		total += ll
	}
	return total, nil
}

// LogPosterior returns the joint log-posterior, -Inf when any varying
// parameter is out of bounds or any constituent's model fails numerically.
// Constituent-level extra priors are included.
func (g *Global) LogPosterior() float64 {
	priors := make([]LogPriorFunc, 0, len(g.LogPriors))
	priors = append(priors, g.LogPriors...)
	for _, o := range g.Objectives {
		priors = append(priors, o.LogPriors...)
	}
	return logPosterior(g.VaryingParameters(), priors, func() (float64, error) {
		return g.LogLikelihood()
	})
}

// NegLogPosterior is the scalar cost minimized by the optimizer.
func (g *Global) NegLogPosterior() float64 {
	return -g.LogPosterior()
}
