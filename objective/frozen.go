package objective

import (
	"math"

	"github.com/slabfit/go-slabfit/param"
)

// Frozen captures the current parameter values and returns a pure
// log-posterior evaluation. Bounds and extra priors are resolved at capture
// time; the expensive forward-model computation runs inside the returned
// function on immutable data. The coordinator captures candidates one at a
// time and hands the closures to workers, so parameters are only ever
// written by a single goroutine.
func (o *Objective) Frozen() func() float64 {
	return freeze(o.VaryingParameters(), o.LogPriors, o.frozenLikelihoods())
}

func (o *Objective) frozenLikelihoods() []func() (float64, error) {
	model := o.Model.Frozen(o.Data.Q, o.Data.DQ)
	data := o.Data
	return []func() (float64, error){func() (float64, error) {
		curve, err := model()
		if err != nil {
			return 0, err
		}
		dr := data.Uncertainties()
		chi2, norm := 0.0, 0.0
		for i := range curve {
			res := (curve[i] - data.R[i]) / dr[i]
			chi2 += res * res
			norm += math.Log(2 * math.Pi * dr[i] * dr[i])
		}
		return -0.5*chi2 - 0.5*norm, nil
	}}
}

// Frozen captures the joint posterior; see Objective.Frozen.
func (g *Global) Frozen() func() float64 {
	priors := make([]LogPriorFunc, 0, len(g.LogPriors))
	priors = append(priors, g.LogPriors...)
	var likelihoods []func() (float64, error)
	for _, o := range g.Objectives {
		priors = append(priors, o.LogPriors...)
		likelihoods = append(likelihoods, o.frozenLikelihoods()...)
	}
	return freeze(g.VaryingParameters(), priors, likelihoods)
}

func freeze(varying []*param.Parameter, priors []LogPriorFunc, likelihoods []func() (float64, error)) func() float64 {
	for _, p := range varying {
		if !p.InBounds() {
			return negInf
		}
	}
	lp := 0.0
	for _, f := range priors {
		lp += f()
	}
	if math.IsInf(lp, -1) || math.IsNaN(lp) {
		return negInf
	}
	return func() float64 {
		total := lp
		for _, ll := range likelihoods {
			v, err := ll()
			if err != nil || math.IsNaN(v) {
				return math.Inf(-1)
			}
			total += v
		}
		return total
	}
}

func negInf() float64 { return math.Inf(-1) }
