package sample

import (
	"fmt"
	"math"
)

// Acceptance fractions outside this window usually indicate a chain that is
// mixing poorly: too low and the walkers are stuck, too high and they are
// taking timid steps through a region the posterior barely constrains.
const (
	minHealthyAcceptance = 0.15
	maxHealthyAcceptance = 0.70
)

// ConvergenceWarning is a non-fatal mixing diagnostic. It is surfaced as a
// value, never as an error: a poorly mixed chain is still usable, just
// suspect.
type ConvergenceWarning struct {
	Acceptance float64
	Messages   []string
}

func (w *ConvergenceWarning) String() string {
	return fmt.Sprintf("convergence warning (acceptance %.2f): %v", w.Acceptance, w.Messages)
}

// Diagnose inspects the chain gathered since the last Reset and reports a
// warning when mixing looks poor, or nil when nothing stands out.
func (s *Sampler) Diagnose() *ConvergenceWarning {
	var msgs []string
	acc := s.Acceptance()
	if s.proposed > 0 {
		if acc < minHealthyAcceptance {
			msgs = append(msgs, fmt.Sprintf("acceptance %.2f below %.2f: walkers may be stuck", acc, minHealthyAcceptance))
		}
		if acc > maxHealthyAcceptance {
			msgs = append(msgs, fmt.Sprintf("acceptance %.2f above %.2f: posterior may be unconstrained", acc, maxHealthyAcceptance))
		}
	}
	if len(s.chain) > 0 && len(s.chain) < 10*len(s.walkers) {
		msgs = append(msgs, fmt.Sprintf("only %d retained steps per walker: too short for stable estimates", len(s.chain)/len(s.walkers)))
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ConvergenceWarning{Acceptance: acc, Messages: msgs}
}

// Mean returns the per-parameter mean of the retained chain.
func (s *Sampler) Mean() []float64 {
	dim := len(s.varying)
	out := make([]float64, dim)
	if len(s.chain) == 0 {
		return out
	}
	for _, v := range s.chain {
		for d := 0; d < dim; d++ {
			out[d] += v[d]
		}
	}
	for d := 0; d < dim; d++ {
		out[d] /= float64(len(s.chain))
	}
	return out
}

// Std returns the per-parameter standard deviation of the retained chain.
func (s *Sampler) Std() []float64 {
	dim := len(s.varying)
	out := make([]float64, dim)
	if len(s.chain) < 2 {
		return out
	}
	mean := s.Mean()
	for _, v := range s.chain {
		for d := 0; d < dim; d++ {
			diff := v[d] - mean[d]
			out[d] += diff * diff
		}
	}
	for d := 0; d < dim; d++ {
		out[d] = math.Sqrt(out[d] / float64(len(s.chain)-1))
	}
	return out
}
