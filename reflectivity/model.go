package reflectivity

import (
	"fmt"

	"github.com/slabfit/go-slabfit/cache"
	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/slab"
)

// Model wraps a structure with the measurement-scale parameters that sit
// outside the stack itself: an overall scale factor and a constant
// incoherent background added to every point. Resolution is taken from the
// dataset (pointwise dq) or from ConstantDQQ when the dataset carries none.
type Model struct {
	Structure  *slab.Structure
	Scale      *param.Parameter
	Background *param.Parameter

	// ConstantDQQ is the fractional resolution dq/q (FWHM) applied when no
	// pointwise dq is supplied. Zero disables smearing.
	ConstantDQQ float64

	curves *cache.CurveCache
}

// NewModel creates a model with scale 1 and zero background, both fixed.
func NewModel(s *slab.Structure) *Model {
	return &Model{
		Structure:  s,
		Scale:      param.New("scale", 1),
		Background: param.New("bkg", 0),
	}
}

// Parameters returns the model's parameter handles: the structure's set,
// then scale and background, deduplicated in declaration order.
func (m *Model) Parameters() *param.Set {
	set := m.Structure.Parameters()
	set.Add(m.Scale, m.Background)
	return set
}

// WithCache memoizes unscaled curves across repeated evaluations at the
// same structure values, which sensitivity analysis and restored-value
// replots hit constantly. size bounds the entry count, 0 is unbounded.
func (m *Model) WithCache(size int) *Model {
	m.curves = cache.New(size)
	return m
}

// Compute evaluates the smeared, scaled model at each q. dq holds pointwise
// resolution FWHMs; pass nil to use ConstantDQQ (or no smearing when that is
// zero too).
func (m *Model) Compute(q, dq []float64) ([]float64, error) {
	var (
		r   []float64
		err error
	)
	if m.curves != nil {
		r, err = m.curves.GetOrCompute(m.curveKey(q, dq), func() ([]float64, error) {
			return m.computeRaw(q, dq)
		})
	} else {
		r, err = m.computeRaw(q, dq)
	}
	if err != nil {
		return nil, err
	}
	scale := m.Scale.Value
	bkg := m.Background.Value
	out := make([]float64, len(r))
	for i := range r {
		out[i] = scale*r[i] + bkg
	}
	return out, nil
}

func (m *Model) computeRaw(q, dq []float64) ([]float64, error) {
	switch {
	case len(dq) == len(q) && len(dq) > 0:
		return ComputeSmeared(m.Structure, q, dq)
	case m.ConstantDQQ > 0:
		return ComputeSmearedConstant(m.Structure, q, m.ConstantDQQ)
	default:
		return Compute(m.Structure, q)
	}
}

// curveKey hashes the structure values and evaluation grid. Scale and
// background stay outside the key so the cached curve survives their
// refinement.
func (m *Model) curveKey(q, dq []float64) string {
	vals := param.Values(m.Structure.Parameters().All())
	vals = append(vals, m.ConstantDQQ)
	grid := make([]float64, 0, len(q)+len(dq))
	grid = append(grid, q...)
	grid = append(grid, dq...)
	return cache.Key(vals, grid)
}

// Frozen captures the current parameter values into a pure evaluation of
// the model at q. The returned function reads no shared state, so it can
// run on a worker while the coordinator writes the next candidate vector
// into the parameters.
func (m *Model) Frozen(q, dq []float64) func() ([]float64, error) {
	if err := m.Structure.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrNumerical, err)
		return func() ([]float64, error) { return nil, err }
	}
	prof := m.Structure.Flatten()
	scale := m.Scale.Value
	bkg := m.Background.Value
	if len(dq) != len(q) && m.ConstantDQQ > 0 {
		full := make([]float64, len(q))
		for i, qv := range q {
			full[i] = m.ConstantDQQ * qv
		}
		dq = full
	}
	return func() ([]float64, error) {
		r, err := smearProfile(prof, q, dq)
		if err != nil {
			return nil, err
		}
		for i := range r {
			r[i] = scale*r[i] + bkg
		}
		return r, nil
	}
}
