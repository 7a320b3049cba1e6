package plotter

import (
	"strings"
	"testing"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/reflectivity"
	"github.com/slabfit/go-slabfit/slab"
)

func TestRenderBasicSVG(t *testing.T) {
	p := New(600, 400).
		SetTitle("test plot").
		AddSeries([]float64{0, 1, 2}, []float64{1, 2, 3}, "line", "")

	svg := p.Render()
	for _, want := range []string{"<svg", "</svg>", "test plot", "<path"} {
		if !strings.Contains(svg, want) {
			t.Errorf("rendered SVG missing %q", want)
		}
	}
}

func TestLogYSkipsNonPositive(t *testing.T) {
	p := New(600, 400).
		SetLogY(true).
		AddSeries([]float64{1, 2, 3}, []float64{0.1, 0, 0.001}, "", "")

	svg := p.Render()
	if !strings.Contains(svg, "<path") {
		t.Error("log-y plot should still draw the positive points")
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`a<b & "c"`); got != "a&lt;b &amp; &quot;c&quot;" {
		t.Errorf("escape = %q", got)
	}
}

func TestReflectivityPlot(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), si.Backing(3))

	q := dataset.QRange(0.01, 0.3, 30)
	d, err := dataset.Synthesize("film", s, q, 0.05, 0.02, 21)
	if err != nil {
		t.Fatal(err)
	}
	o := objective.New(reflectivity.NewModel(s), d)

	svg, err := ReflectivityPlot(o, 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, "film") || !strings.Contains(svg, "<circle") {
		t.Error("reflectivity plot should show the dataset name and data markers")
	}
}

func TestSLDProfilePlot(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	sio2 := slab.NewMaterial("SiO2", 3.47)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))

	svg := SLDProfilePlot(s, 640, 480)
	if !strings.Contains(svg, "SLD profile") {
		t.Error("missing title")
	}
}
