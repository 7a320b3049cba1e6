package sensitivity

import (
	"errors"
	"math"
	"testing"

	"github.com/slabfit/go-slabfit/dataset"
	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
	"github.com/slabfit/go-slabfit/reflectivity"
	"github.com/slabfit/go-slabfit/slab"
)

// oxideObjective builds a film-on-silicon objective at the true values,
// with thickness and sld free.
func oxideObjective(t *testing.T) *objective.Objective {
	t.Helper()

	oxide := slab.NewMaterial("oxide", 3.47)
	oxide.SLD = param.MustVarying("oxide sld", 3.47, 2, 5)
	film := oxide.Slab(120, 3)
	film.Thickness = param.MustVarying("oxide thickness", 120, 50, 200)

	s := slab.MustStructure(
		slab.NewMaterial("d2o", 6.36).Fronting(),
		film,
		slab.NewMaterial("si", 2.07).Backing(3),
	)

	q := dataset.QRange(0.01, 0.25, 120)
	// Noise-free data puts the current values exactly at the minimum.
	data, err := dataset.Synthesize("oxide", s, q, 0, 0, 3)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return objective.New(reflectivity.NewModel(s), data)
}

func TestAnalyzeRanksParameters(t *testing.T) {
	obj := oxideObjective(t)
	res, err := NewAnalyzer(obj, 0.02).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Ranking) != 2 {
		t.Fatalf("got %d ranked parameters, want 2", len(res.Ranking))
	}
	// At the optimum every perturbation should cost chi-squared.
	for name, impact := range res.Impact {
		if impact < 0 {
			t.Errorf("impact of %s = %g, want >= 0 at the optimum", name, impact)
		}
	}
	if math.Abs(res.Ranking[0].Impact) < math.Abs(res.Ranking[1].Impact) {
		t.Error("ranking not sorted by absolute impact")
	}
}

func TestAnalyzeRestoresValues(t *testing.T) {
	obj := oxideObjective(t)
	before := param.Values(obj.VaryingParameters())

	if _, err := NewAnalyzer(obj, 0.02).Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := NewAnalyzer(obj, 0.02).Covariance(); err != nil {
		t.Fatalf("Covariance: %v", err)
	}

	after := param.Values(obj.VaryingParameters())
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("parameter %d changed from %g to %g", i, before[i], after[i])
		}
	}
}

func TestSweepFindsMinimumNearTruth(t *testing.T) {
	obj := oxideObjective(t)
	thick := obj.VaryingParameters()[1]
	if thick.Name != "oxide thickness" {
		thick = obj.VaryingParameters()[0]
	}

	var values []float64
	for v := 100.0; v <= 140; v += 2 {
		values = append(values, v)
	}
	res, err := NewAnalyzer(obj, 0.02).Sweep(thick, values)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if math.Abs(res.Best.Value-120) > 4 {
		t.Errorf("best thickness = %g, want near 120", res.Best.Value)
	}
	if thick.Value == res.Values[len(res.Values)-1] {
		t.Error("sweep did not restore the entry value")
	}
}

func TestCovarianceShape(t *testing.T) {
	obj := oxideObjective(t)
	cov, err := NewAnalyzer(obj, 0.01).Covariance()
	if err != nil {
		t.Fatalf("Covariance: %v", err)
	}
	if len(cov) != 2 || len(cov[0]) != 2 {
		t.Fatalf("covariance shape %dx%d, want 2x2", len(cov), len(cov[0]))
	}
	for i := range cov {
		if cov[i][i] <= 0 {
			t.Errorf("cov[%d][%d] = %g, want > 0", i, i, cov[i][i])
		}
	}
	if math.Abs(cov[0][1]-cov[1][0]) > 1e-9*math.Abs(cov[0][1]) {
		t.Error("covariance not symmetric")
	}

	corr := Correlation(cov)
	for i := range corr {
		if math.Abs(corr[i][i]-1) > 1e-9 {
			t.Errorf("corr[%d][%d] = %g, want 1", i, i, corr[i][i])
		}
	}
	if math.Abs(corr[0][1]) > 1 {
		t.Errorf("corr[0][1] = %g, want within [-1, 1]", corr[0][1])
	}
}

func TestInvert(t *testing.T) {
	m := [][]float64{{4, 1}, {1, 3}}
	inv, err := invert(m)
	if err != nil {
		t.Fatalf("invert: %v", err)
	}
	// m * inv should be identity.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum float64
			for k := 0; k < 2; k++ {
				sum += m[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(sum-want) > 1e-12 {
				t.Errorf("(m*inv)[%d][%d] = %g, want %g", i, j, sum, want)
			}
		}
	}

	if _, err := invert([][]float64{{1, 1}, {1, 1}}); !errors.Is(err, ErrSingular) {
		t.Errorf("singular matrix: err = %v, want ErrSingular", err)
	}
}
