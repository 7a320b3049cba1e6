package plotter

import (
	"fmt"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/slab"
)

// ReflectivityPlot renders a measured dataset against its fitted model
// curve on a log10 reflectivity axis.
func ReflectivityPlot(o *objective.Objective, width, height float64) (string, error) {
	curve, err := o.Generative()
	if err != nil {
		return "", fmt.Errorf("evaluating model: %w", err)
	}
	p := New(width, height).
		SetTitle(o.Data.Name).
		SetLogY(true).
		AddPoints(o.Data.Q, o.Data.R, "data", "#555555").
		AddSeries(o.Data.Q, curve, "fit", "#e41a1c")
	return p.Render(), nil
}

// CoRefinementPlot overlays every dataset and model curve of a global
// objective on one log10 axis.
func CoRefinementPlot(g *objective.Global, width, height float64) (string, error) {
	p := New(width, height).SetTitle("co-refinement").SetLogY(true)
	for _, o := range g.Objectives {
		curve, err := o.Generative()
		if err != nil {
			return "", fmt.Errorf("evaluating %s: %w", o.Data.Name, err)
		}
		p.AddPoints(o.Data.Q, o.Data.R, o.Data.Name, "")
		p.AddSeries(o.Data.Q, curve, o.Data.Name+" fit", "")
	}
	return p.Render(), nil
}

// SLDProfilePlot renders the structure's scattering length density versus
// depth.
func SLDProfilePlot(s *slab.Structure, width, height float64) string {
	pts := s.SLDProfile(0.5)
	depth := make([]float64, len(pts))
	sld := make([]float64, len(pts))
	for i, pt := range pts {
		depth[i] = pt.Depth
		sld[i] = pt.SLD
	}
	p := New(width, height).
		SetTitle("SLD profile").
		SetLabels("depth / Å", "SLD / 1e-6 Å⁻²").
		AddSeries(depth, sld, "", "#377eb8")
	return p.Render()
}

// DatasetPlot renders a dataset alone, before any model exists.
func DatasetPlot(d *dataset.Dataset, width, height float64) string {
	p := New(width, height).
		SetTitle(d.Name).
		SetLogY(true).
		AddPoints(d.Q, d.R, "data", "#555555")
	return p.Render()
}
