// Package param provides the bounded, nameable scalar parameters that drive
// every model in slabfit. Parameters are shared by pointer: a *Parameter held
// by two structures is the same degree of freedom in both, which is what makes
// co-refinement across datasets work.
package param

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBounds indicates a bounds pair with low > high, or a varying
// parameter declared without finite bounds.
var ErrInvalidBounds = errors.New("param: invalid bounds")

// Bounds is a closed interval constraining a parameter value.
type Bounds struct {
	Low  float64
	High float64
}

// Unbounded returns bounds spanning the whole real line.
func Unbounded() Bounds {
	return Bounds{Low: math.Inf(-1), High: math.Inf(1)}
}

// Contains reports whether v lies inside the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Finite reports whether both ends of the interval are finite.
func (b Bounds) Finite() bool {
	return !math.IsInf(b.Low, 0) && !math.IsInf(b.High, 0)
}

// Width returns High - Low.
func (b Bounds) Width() float64 {
	return b.High - b.Low
}

// Parameter is a named scalar with optional bounds and a vary flag.
// The optimizer mutates Value in place; everything holding the same
// *Parameter observes the new value on its next evaluation.
type Parameter struct {
	Name   string
	Value  float64
	Bounds Bounds
	Vary   bool
}

// New creates a fixed (non-varying) parameter with unbounded range.
func New(name string, value float64) *Parameter {
	return &Parameter{Name: name, Value: value, Bounds: Unbounded()}
}

// NewBounded creates a fixed parameter with the given bounds.
// Invalid bounds (low > high) are rejected immediately rather than at fit time.
func NewBounded(name string, value, low, high float64) (*Parameter, error) {
	if low > high {
		return nil, fmt.Errorf("%w: %s has low %g > high %g", ErrInvalidBounds, name, low, high)
	}
	return &Parameter{Name: name, Value: value, Bounds: Bounds{Low: low, High: high}}, nil
}

// NewVarying creates a varying parameter. Varying parameters define the
// optimizer's search space, so their bounds must be finite.
func NewVarying(name string, value, low, high float64) (*Parameter, error) {
	p, err := NewBounded(name, value, low, high)
	if err != nil {
		return nil, err
	}
	if !p.Bounds.Finite() {
		return nil, fmt.Errorf("%w: varying parameter %s requires finite bounds", ErrInvalidBounds, name)
	}
	p.Vary = true
	return p, nil
}

// MustVarying is like NewVarying but panics on invalid bounds.
// Intended for literals in examples and tests.
func MustVarying(name string, value, low, high float64) *Parameter {
	p, err := NewVarying(name, value, low, high)
	if err != nil {
		panic(err)
	}
	return p
}

// SetVary toggles whether the parameter participates in fitting.
// Enabling vary on a parameter without finite bounds returns ErrInvalidBounds.
func (p *Parameter) SetVary(vary bool) error {
	if vary && !p.Bounds.Finite() {
		return fmt.Errorf("%w: cannot vary %s without finite bounds", ErrInvalidBounds, p.Name)
	}
	p.Vary = vary
	return nil
}

// InBounds reports whether the current value lies within the declared bounds.
func (p *Parameter) InBounds() bool {
	return p.Bounds.Contains(p.Value)
}

func (p *Parameter) String() string {
	if p.Vary {
		return fmt.Sprintf("%s = %g (vary, [%g, %g])", p.Name, p.Value, p.Bounds.Low, p.Bounds.High)
	}
	return fmt.Sprintf("%s = %g (fixed)", p.Name, p.Value)
}
