// Package slab models layered samples for neutron reflectometry: materials
// with scattering length density (SLD), slabs of finite thickness and
// interfacial roughness, and structures stacking slabs from the incident
// medium down to the semi-infinite backing.
package slab

import (
	"github.com/slabfit/go-slabfit/param"
)

// Material is a substance characterized by its neutron scattering length
// density, in units of 1e-6 Å⁻². The imaginary part captures absorption and
// is usually zero for common reflectometry materials.
type Material struct {
	Name string
	SLD  *param.Parameter // real part
	ISLD *param.Parameter // imaginary (absorption) part
}

// NewMaterial creates a material with a fixed real SLD and zero absorption.
func NewMaterial(name string, sld float64) *Material {
	return &Material{
		Name: name,
		SLD:  param.New(name+" sld", sld),
		ISLD: param.New(name+" isld", 0),
	}
}

// NewAbsorbingMaterial creates a material with real and imaginary SLD parts.
func NewAbsorbingMaterial(name string, sld, isld float64) *Material {
	m := NewMaterial(name, sld)
	m.ISLD.Value = isld
	return m
}

// Slab returns a layer of this material with the given thickness and
// roughness (both in Å). Roughness describes the interface to the layer
// in front of this one (closer to the incident medium). The returned slab
// holds handles to this material's SLD parameters, so a material used in
// two structures contributes one shared degree of freedom.
func (m *Material) Slab(thickness, roughness float64) *Slab {
	return &Slab{
		Material:  m,
		Thickness: param.New(m.Name+" thickness", thickness),
		Roughness: param.New(m.Name+" roughness", roughness),
	}
}

// Fronting returns a semi-infinite incident-medium slab of this material.
func (m *Material) Fronting() *Slab {
	return m.Slab(0, 0)
}

// Backing returns a semi-infinite substrate slab of this material with the
// given roughness against the layer above.
func (m *Material) Backing(roughness float64) *Slab {
	return m.Slab(0, roughness)
}

// Slab is one layer in a structure. Thickness and roughness are parameter
// handles so they can vary during fitting. SolventFraction, when non-nil,
// mixes the material SLD with the backing medium SLD (volume fraction of
// solvent penetrating the layer).
type Slab struct {
	Material        *Material
	Thickness       *param.Parameter
	Roughness       *param.Parameter
	SolventFraction *param.Parameter
}

// WithSolvent attaches a solvent volume fraction parameter and returns the
// slab for chaining.
func (s *Slab) WithSolvent(fraction *param.Parameter) *Slab {
	s.SolventFraction = fraction
	return s
}

// Parameters returns this slab's parameter handles in declaration order:
// sld, isld, thickness, roughness, then solvent fraction if present.
func (s *Slab) Parameters() []*param.Parameter {
	out := []*param.Parameter{s.Material.SLD, s.Material.ISLD, s.Thickness, s.Roughness}
	if s.SolventFraction != nil {
		out = append(out, s.SolventFraction)
	}
	return out
}

// EffectiveSLD returns the slab's SLD after solvent mixing against the
// given solvent SLD. With no solvent fraction the material SLD is returned
// unchanged.
func (s *Slab) EffectiveSLD(solventSLD, solventISLD float64) (re, im float64) {
	re = s.Material.SLD.Value
	im = s.Material.ISLD.Value
	if s.SolventFraction == nil {
		return re, im
	}
	f := s.SolventFraction.Value
	re = (1-f)*re + f*solventSLD
	im = (1-f)*im + f*solventISLD
	return re, im
}
