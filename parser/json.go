// Package parser loads slab model definitions from JSON documents.
//
// A definition names a set of materials, one or more structures built
// from those materials, and the parameters that are free to vary. Two
// structures that reference the same material share its parameter
// handles, so loading a multi-structure definition yields models that
// co-refine naturally.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/slab"
)

// ErrBadDefinition is returned when a definition document is
// syntactically valid JSON but does not describe a usable model.
var ErrBadDefinition = errors.New("parser: bad model definition")

// MaterialSpec declares a material by its scattering length density,
// in 1e-6 inverse square angstroms.
type MaterialSpec struct {
	SLD  float64 `json:"sld"`
	ISLD float64 `json:"isld,omitempty"`
}

// LayerSpec places one material in a structure. Thickness and
// roughness are in angstroms. The first layer of a structure is the
// fronting and the last the backing: their thickness entries are
// ignored. Solvent is the volume fraction of the backing medium mixed
// into the layer, so solvated solid-liquid models put the substrate
// first and the liquid last.
type LayerSpec struct {
	Material  string   `json:"material"`
	Thickness float64  `json:"thickness,omitempty"`
	Roughness float64  `json:"roughness,omitempty"`
	Solvent   *float64 `json:"solvent,omitempty"`
}

// VarySpec frees one named parameter inside the given bounds.
type VarySpec struct {
	Param string  `json:"param"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// Document is the on-disk shape of a model definition.
type Document struct {
	Materials  map[string]MaterialSpec `json:"materials"`
	Structures map[string][]LayerSpec  `json:"structures"`
	Vary       []VarySpec              `json:"vary,omitempty"`
}

// Definition is a loaded model definition with live parameter handles.
type Definition struct {
	Materials  map[string]*slab.Material
	Structures map[string]*slab.Structure
}

// Load reads a definition from a file.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a definition from r.
func Parse(r io.Reader) (*Definition, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDefinition, err)
	}
	return build(&doc)
}

func build(doc *Document) (*Definition, error) {
	if len(doc.Materials) == 0 {
		return nil, fmt.Errorf("%w: no materials", ErrBadDefinition)
	}
	if len(doc.Structures) == 0 {
		return nil, fmt.Errorf("%w: no structures", ErrBadDefinition)
	}

	def := &Definition{
		Materials:  make(map[string]*slab.Material, len(doc.Materials)),
		Structures: make(map[string]*slab.Structure, len(doc.Structures)),
	}
	for name, ms := range doc.Materials {
		if ms.ISLD != 0 {
			def.Materials[name] = slab.NewAbsorbingMaterial(name, ms.SLD, ms.ISLD)
		} else {
			def.Materials[name] = slab.NewMaterial(name, ms.SLD)
		}
	}

	for name, layers := range doc.Structures {
		s, err := buildStructure(def, name, layers)
		if err != nil {
			return nil, err
		}
		def.Structures[name] = s
	}

	for _, v := range doc.Vary {
		p := def.FindParameter(v.Param)
		if p == nil {
			return nil, fmt.Errorf("%w: vary names unknown parameter %q", ErrBadDefinition, v.Param)
		}
		if v.Low > v.High {
			return nil, fmt.Errorf("%w: vary %q has low %g > high %g", ErrBadDefinition, v.Param, v.Low, v.High)
		}
		p.Bounds = param.Bounds{Low: v.Low, High: v.High}
		if err := p.SetVary(true); err != nil {
			return nil, fmt.Errorf("%w: vary %q: %v", ErrBadDefinition, v.Param, err)
		}
	}
	return def, nil
}

func buildStructure(def *Definition, name string, layers []LayerSpec) (*slab.Structure, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: structure %q needs a fronting and a backing", ErrBadDefinition, name)
	}
	slabs := make([]*slab.Slab, 0, len(layers))
	for i, ls := range layers {
		mat, ok := def.Materials[ls.Material]
		if !ok {
			return nil, fmt.Errorf("%w: structure %q references unknown material %q", ErrBadDefinition, name, ls.Material)
		}
		var sl *slab.Slab
		switch i {
		case 0:
			sl = mat.Fronting()
		case len(layers) - 1:
			sl = mat.Backing(ls.Roughness)
		default:
			sl = mat.Slab(ls.Thickness, ls.Roughness)
			if ls.Solvent != nil {
				sl = sl.WithSolvent(param.New(ls.Material+" solvent", *ls.Solvent))
			}
		}
		slabs = append(slabs, sl)
	}
	s, err := slab.NewStructure(slabs...)
	if err != nil {
		return nil, fmt.Errorf("%w: structure %q: %v", ErrBadDefinition, name, err)
	}
	return s, nil
}

// FindParameter looks a parameter up by name across every structure.
// It returns nil when no parameter carries the name.
func (d *Definition) FindParameter(name string) *param.Parameter {
	set := param.NewSet()
	for _, s := range d.Structures {
		set.Add(s.Parameters().All()...)
	}
	for _, p := range set.All() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Structure returns the single structure of a one-structure
// definition, or an error naming the choices when there are several.
func (d *Definition) Structure() (*slab.Structure, error) {
	if len(d.Structures) == 1 {
		for _, s := range d.Structures {
			return s, nil
		}
	}
	names := make([]string, 0, len(d.Structures))
	for name := range d.Structures {
		names = append(names, name)
	}
	return nil, fmt.Errorf("%w: definition holds %d structures %v, name one", ErrBadDefinition, len(d.Structures), names)
}
