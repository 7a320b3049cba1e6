package reflectivity

import (
	"fmt"
	"math"

	"github.com/slabfit/go-slabfit/slab"
)

// Resolution smearing approximates the convolution of the ideal curve with a
// Gaussian resolution function by Gauss-Legendre quadrature over a local
// window of ±smearWidth standard deviations around each point. A fixed
// 17-point rule is a deliberate accuracy/speed trade-off: full continuous
// convolution is far more expensive and indistinguishable at typical
// measurement precision.
const (
	quadraturePoints = 17
	smearWidth       = 3.5
	// fwhmToSigma converts a resolution width quoted as FWHM to a Gaussian
	// standard deviation: 1 / (2 sqrt(2 ln 2)).
	fwhmToSigma = 0.42466090014400953
)

var quadNodes, quadWeights = gaussLegendre(quadraturePoints)

// ComputeSmeared evaluates the reflectivity at each q, smeared point-by-point
// with a Gaussian kernel whose FWHM is dq[i]. dq must have the same length as
// q; entries that are zero or negative skip smearing for that point.
func ComputeSmeared(s *slab.Structure, q, dq []float64) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
	}
	return smearProfile(s.Flatten(), q, dq)
}

// smearProfile is the smearing kernel over an already-flattened stack.
// Pure: safe to run concurrently on a captured profile.
func smearProfile(prof *slab.Profile, q, dq []float64) ([]float64, error) {
	if len(dq) != len(q) {
		return computeProfile(prof, q)
	}

	// Build the full quadrature grid so the kernel runs once over all
	// evaluation points.
	grid := make([]float64, 0, len(q)*quadraturePoints)
	for i, qv := range q {
		sigma := dq[i] * fwhmToSigma
		if sigma <= 0 {
			grid = append(grid, qv)
			continue
		}
		for _, x := range quadNodes {
			grid = append(grid, qv+smearWidth*sigma*x)
		}
	}

	raw, err := computeProfile(prof, grid)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(q))
	pos := 0
	for i := range q {
		sigma := dq[i] * fwhmToSigma
		if sigma <= 0 {
			out[i] = raw[pos]
			pos++
			continue
		}
		num, den := 0.0, 0.0
		for j, x := range quadNodes {
			// Gaussian density at the node, times the quadrature weight.
			g := math.Exp(-0.5 * (smearWidth * x) * (smearWidth * x))
			w := quadWeights[j] * g
			num += w * raw[pos+j]
			den += w
		}
		out[i] = num / den
		pos += quadraturePoints
	}
	return out, nil
}

// ComputeSmearedConstant smears every point with the same fractional
// resolution dqq = dq/q (FWHM), the common constant-dQ/Q instrument mode.
func ComputeSmearedConstant(s *slab.Structure, q []float64, dqq float64) ([]float64, error) {
	dq := make([]float64, len(q))
	for i, qv := range q {
		dq[i] = dqq * qv
	}
	return ComputeSmeared(s, q, dq)
}

// gaussLegendre computes the nodes and weights of the n-point Gauss-Legendre
// rule on [-1, 1] by Newton iteration on the Legendre polynomial roots.
func gaussLegendre(n int) (nodes, weights []float64) {
	nodes = make([]float64, n)
	weights = make([]float64, n)
	m := (n + 1) / 2
	for i := 0; i < m; i++ {
		// Chebyshev-based initial guess for the i-th root.
		x := math.Cos(math.Pi * (float64(i) + 0.75) / (float64(n) + 0.5))
		var pp float64
		for iter := 0; iter < 100; iter++ {
			p0, p1 := 1.0, 0.0
			for j := 0; j < n; j++ {
				p2 := p1
				p1 = p0
				p0 = ((2*float64(j)+1)*x*p1 - float64(j)*p2) / (float64(j) + 1)
			}
			pp = float64(n) * (x*p0 - p1) / (x*x - 1)
			dx := p0 / pp
			x -= dx
			if math.Abs(dx) < 1e-15 {
				break
			}
		}
		nodes[i] = -x
		nodes[n-1-i] = x
		w := 2 / ((1 - x*x) * pp * pp)
		weights[i] = w
		weights[n-1-i] = w
	}
	return nodes, weights
}
