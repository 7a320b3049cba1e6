package results

import (
	"context"
	"math"
	"testing"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/reflectivity"
	"github.com/slabfit/go-slabfit/sample"
	"github.com/slabfit/go-slabfit/slab"
)

func testObjective(t *testing.T) *objective.Objective {
	t.Helper()
	air := slab.NewMaterial("air", 0)
	sio2 := slab.NewMaterial("SiO2", 3.47)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))

	oxide := s.At(1)
	oxide.Thickness.Bounds = param.Bounds{Low: 5, High: 30}
	oxide.Thickness.Vary = true

	q := dataset.QRange(0.01, 0.3, 50)
	d, err := dataset.Synthesize("oxide", s, q, 0.05, 0.02, 17)
	if err != nil {
		t.Fatal(err)
	}
	return objective.New(reflectivity.NewModel(s), d)
}

func TestBuildReport(t *testing.T) {
	o := testObjective(t)
	r, err := Build(o, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Datasets) != 1 || r.Datasets[0] != "oxide" {
		t.Errorf("datasets = %v", r.Datasets)
	}
	if r.Points != 50 {
		t.Errorf("points = %d, want 50", r.Points)
	}
	if len(r.Parameters) != 1 || r.Parameters[0].Name != "SiO2 thickness" {
		t.Errorf("parameters = %+v", r.Parameters)
	}
	if r.ChiSquared <= 0 {
		t.Errorf("chi2 = %g", r.ChiSquared)
	}

	// dof = 50 points - 1 parameter
	want := r.ChiSquared / 49
	if math.Abs(r.ReducedChiSquared()-want) > 1e-12 {
		t.Errorf("reduced chi2 = %g, want %g", r.ReducedChiSquared(), want)
	}
}

func TestAttachChain(t *testing.T) {
	o := testObjective(t)
	opts := sample.DefaultOptions()
	opts.Walkers = 16
	opts.Seed = 23
	s, err := sample.New(o, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Sample(context.Background(), 60); err != nil {
		t.Fatal(err)
	}

	r, err := Build(o, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.AttachChain(s)

	if r.Samples != 60*16 || r.Walkers != 16 {
		t.Errorf("chain bookkeeping wrong: %+v", r)
	}
	p := r.Parameters[0]
	if !(p.P16 <= p.Median && p.Median <= p.P84) {
		t.Errorf("percentiles out of order: %+v", p)
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.5, 3},
		{1, 5},
		{0.25, 2},
	}
	for _, c := range cases {
		if got := quantile(sorted, c.p); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("quantile(%g) = %g, want %g", c.p, got, c.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	o := testObjective(t)
	r, err := Build(o, nil)
	if err != nil {
		t.Fatal(err)
	}

	path := t.TempDir() + "/report.json"
	if err := WriteJSON(r, path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.ChiSquared != r.ChiSquared || len(back.Parameters) != len(r.Parameters) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, r)
	}
}
