package objective

import "github.com/slabfit/go-slabfit/param"

// Posterior is what the optimizer and sampler need from an objective: a
// stable ordered list of varying parameters and a log-posterior score for
// their current values. Both Objective and Global satisfy it.
type Posterior interface {
	VaryingParameters() []*param.Parameter
	LogPosterior() float64

	// Frozen snapshots the current parameter values into a pure
	// log-posterior evaluation that workers may run concurrently.
	Frozen() func() float64
}

var (
	_ Posterior = (*Objective)(nil)
	_ Posterior = (*Global)(nil)
)
