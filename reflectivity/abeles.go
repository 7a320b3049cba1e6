// Package reflectivity computes specular neutron reflectivity for layered
// structures using the Abeles/Parratt recursion. Interfacial roughness is
// applied as a Nevot-Croce error-function damping factor on each Fresnel
// coefficient. Instrument resolution is handled by Gaussian-quadrature
// smearing of the ideal curve.
package reflectivity

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/slabfit/go-slabfit/slab"
)

// ErrNumerical indicates the forward model produced a non-finite value or
// was asked to evaluate an unphysical stack. The model never returns a
// partially computed curve alongside this error.
var ErrNumerical = errors.New("reflectivity: numerical failure")

// sldScale converts SLD in 1e-6 Å⁻² units to Å⁻².
const sldScale = 1e-6

// Compute evaluates the unsmeared reflectivity of the structure at each q
// (Å⁻¹) using the Parratt recursion. The result has the same length as q
// and every value is real and non-negative.
func Compute(s *slab.Structure, q []float64) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
	}
	return computeProfile(s.Flatten(), q)
}

// computeProfile runs the recursion on a flattened stack. Split out so the
// smearing path can reuse one Flatten per curve.
func computeProfile(p *slab.Profile, q []float64) ([]float64, error) {
	n := len(p.SLD)
	out := make([]float64, len(q))

	// Complex SLD contrast against the fronting medium, in Å⁻².
	rho0 := complex(p.SLD[0], p.ISLD[0])
	contrast := make([]complex128, n)
	for i := 0; i < n; i++ {
		contrast[i] = (complex(p.SLD[i], p.ISLD[i]) - rho0) * complex(4*math.Pi*sldScale, 0)
	}

	k := make([]complex128, n)
	for iq, qv := range q {
		kz2 := complex(qv*qv/4, 0)
		for i := 0; i < n; i++ {
			k[i] = cmplx.Sqrt(kz2 - contrast[i])
		}

		// Parratt recursion from the backing interface up.
		var r complex128
		for i := n - 2; i >= 0; i-- {
			denom := k[i] + k[i+1]
			var rf complex128
			if denom != 0 {
				rf = (k[i] - k[i+1]) / denom
			}
			// Nevot-Croce roughness damping for the i/i+1 interface.
			if sigma := p.Rough[i+1]; sigma > 0 {
				rf *= cmplx.Exp(-2 * k[i] * k[i+1] * complex(sigma*sigma, 0))
			}
			if i == n-2 {
				r = rf
				continue
			}
			beta := cmplx.Exp(complex(0, 1) * k[i+1] * complex(p.Thick[i+1], 0))
			phased := r * beta * beta
			r = (rf + phased) / (1 + rf*phased)
		}

		rv := real(r)*real(r) + imag(r)*imag(r)
		if math.IsNaN(rv) || math.IsInf(rv, 0) {
			return nil, fmt.Errorf("%w: non-finite reflectivity at q=%g", ErrNumerical, qv)
		}
		out[iq] = rv
	}
	return out, nil
}

// Fresnel returns the closed-form reflectivity of a single sharp interface
// between media of the given SLDs (1e-6 Å⁻²) at each q. Useful as an
// analytic check and for the large-q asymptote of any stack.
func Fresnel(sldFront, sldBack float64, q []float64) []float64 {
	out := make([]float64, len(q))
	contrast := complex(4*math.Pi*(sldBack-sldFront)*sldScale, 0)
	for i, qv := range q {
		kz2 := complex(qv*qv/4, 0)
		k0 := cmplx.Sqrt(kz2)
		k1 := cmplx.Sqrt(kz2 - contrast)
		denom := k0 + k1
		if denom == 0 {
			// Only possible with zero contrast, i.e. no interface.
			continue
		}
		r := (k0 - k1) / denom
		out[i] = real(r)*real(r) + imag(r)*imag(r)
	}
	return out
}
