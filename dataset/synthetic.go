package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/slabfit/go-slabfit/reflectivity"
	"github.com/slabfit/go-slabfit/slab"
)

// Synthesize generates a noisy dataset from a known structure: the smeared
// model curve plus Gaussian noise with relative standard deviation noise.
// Deterministic for a fixed seed. Used for end-to-end fit validation and
// worked examples.
func Synthesize(name string, s *slab.Structure, q []float64, dqq, noise float64, seed int64) (*Dataset, error) {
	var (
		r   []float64
		err error
	)
	if dqq > 0 {
		r, err = reflectivity.ComputeSmearedConstant(s, q, dqq)
	} else {
		r, err = reflectivity.Compute(s, q)
	}
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", name, err)
	}

	rng := rand.New(rand.NewSource(seed))
	noisy := make([]float64, len(q))
	dr := make([]float64, len(q))
	dq := make([]float64, len(q))
	for i := range q {
		sigma := noise * r[i]
		noisy[i] = r[i] + sigma*rng.NormFloat64()
		// Keep reflectivity physical even in the noise tails.
		noisy[i] = math.Max(noisy[i], 1e-12)
		dr[i] = math.Max(sigma, 1e-12)
		dq[i] = dqq * q[i]
	}
	return New(name, q, noisy, dr, dq)
}

// QRange builds an evenly spaced q grid, a convenience for synthetic data
// and model evaluation.
func QRange(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
