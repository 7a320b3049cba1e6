package slab

import (
	"errors"
	"fmt"

	"github.com/slabfit/go-slabfit/param"
)

// ErrBadStructure indicates a structure that cannot produce a physical model,
// such as fewer than two media or a negative layer thickness.
var ErrBadStructure = errors.New("slab: invalid structure")

// Structure is an ordered stack of slabs, first-to-last in the direction the
// beam travels: the incident medium first, finite layers in between, and the
// semi-infinite backing (substrate or bulk solvent) last. The stack topology
// is fixed once built; the slabs' parameters remain mutable.
type Structure struct {
	slabs []*Slab
}

// NewStructure builds a structure from front to back. At least two slabs
// (incident medium and backing) are required.
func NewStructure(slabs ...*Slab) (*Structure, error) {
	if len(slabs) < 2 {
		return nil, fmt.Errorf("%w: need at least fronting and backing, got %d slabs", ErrBadStructure, len(slabs))
	}
	s := &Structure{slabs: make([]*Slab, len(slabs))}
	copy(s.slabs, slabs)
	return s, nil
}

// MustStructure is like NewStructure but panics on error. For examples and
// tests where the stack is a literal.
func MustStructure(slabs ...*Slab) *Structure {
	s, err := NewStructure(slabs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of slabs including the semi-infinite media.
func (s *Structure) Len() int {
	return len(s.slabs)
}

// At returns the i-th slab, front first.
func (s *Structure) At(i int) *Slab {
	return s.slabs[i]
}

// Fronting returns the incident-medium slab.
func (s *Structure) Fronting() *Slab {
	return s.slabs[0]
}

// Backing returns the semi-infinite backing slab.
func (s *Structure) Backing() *Slab {
	return s.slabs[len(s.slabs)-1]
}

// Validate checks the structure invariants: at least two media and
// non-negative thickness on every finite layer.
func (s *Structure) Validate() error {
	if len(s.slabs) < 2 {
		return fmt.Errorf("%w: %d slabs", ErrBadStructure, len(s.slabs))
	}
	for i := 1; i < len(s.slabs)-1; i++ {
		if t := s.slabs[i].Thickness.Value; t < 0 {
			return fmt.Errorf("%w: layer %d (%s) has negative thickness %g",
				ErrBadStructure, i, s.slabs[i].Material.Name, t)
		}
	}
	return nil
}

// Parameters returns every parameter handle in the structure, deduplicated
// by identity in declaration order (front slab first).
func (s *Structure) Parameters() *param.Set {
	set := param.NewSet()
	for _, sl := range s.slabs {
		set.Add(sl.Parameters()...)
	}
	return set
}

// VaryingParameters returns the varying subset of Parameters in stable
// declaration order.
func (s *Structure) VaryingParameters() []*param.Parameter {
	return s.Parameters().Varying()
}

// Profile describes the stack as flat tables for the reflectivity kernel:
// effective SLD (after solvent mixing), imaginary SLD, thickness, and the
// roughness of the interface between layer i-1 and layer i. Thickness of the
// two semi-infinite media is reported as zero; Rough[0] is unused.
type Profile struct {
	SLD   []float64
	ISLD  []float64
	Thick []float64
	Rough []float64
}

// Flatten evaluates the current parameter values into a Profile.
func (s *Structure) Flatten() *Profile {
	n := len(s.slabs)
	p := &Profile{
		SLD:   make([]float64, n),
		ISLD:  make([]float64, n),
		Thick: make([]float64, n),
		Rough: make([]float64, n),
	}
	solvRe := s.Backing().Material.SLD.Value
	solvIm := s.Backing().Material.ISLD.Value
	for i, sl := range s.slabs {
		re, im := sl.EffectiveSLD(solvRe, solvIm)
		p.SLD[i] = re
		p.ISLD[i] = im
		if i > 0 && i < n-1 {
			p.Thick[i] = sl.Thickness.Value
		}
		p.Rough[i] = sl.Roughness.Value
	}
	return p
}
