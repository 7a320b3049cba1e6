package reflectivity

import (
	"errors"
	"math"
	"testing"

	"github.com/slabfit/go-slabfit/slab"
)

func qRange(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func TestTwoMediaMatchesFresnel(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), si.Backing(0))

	q := qRange(0.001, 0.5, 500)
	got, err := Compute(s, q)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := Fresnel(0, 2.07, q)

	for i := range q {
		rel := math.Abs(got[i]-want[i]) / math.Max(want[i], 1e-300)
		if rel > 1e-8 {
			t.Fatalf("q=%g: got %g want %g (rel %g)", q[i], got[i], want[i], rel)
		}
	}
}

func TestTotalReflectionBelowCriticalEdge(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), si.Backing(0))

	// Critical edge for Si against air is qc = sqrt(16 pi rho) ≈ 0.0102.
	q := []float64{0, 0.002, 0.005, 0.009}
	r, err := Compute(s, q)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, rv := range r {
		if math.Abs(rv-1) > 1e-10 {
			t.Errorf("q=%g: R=%g, want 1 below critical edge", q[i], rv)
		}
	}
}

// TestLayeredHighQFresnelEnvelope checks that a single sharp film decays
// inside the two-interface Fresnel envelope at high q: the fringes must
// stay between ((r01-r12)/(1-r01*r12))^2 and ((r01+r12)/(1+r01*r12))^2
// built from the per-interface amplitudes.
func TestLayeredHighQFresnelEnvelope(t *testing.T) {
	const (
		rho0 = 0.0
		rho1 = 4.0
		rho2 = 2.07
	)
	front := slab.NewMaterial("air", rho0)
	film := slab.NewMaterial("film", rho1)
	si := slab.NewMaterial("Si", rho2)
	s := slab.MustStructure(front.Fronting(), film.Slab(80, 0), si.Backing(0))

	q := qRange(0.3, 0.5, 400)
	r, err := Compute(s, q)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	kz := func(qv, rho float64) float64 {
		return math.Sqrt(qv*qv/4 - 4*math.Pi*(rho-rho0)*1e-6)
	}
	for i, qv := range q {
		k0, k1, k2 := kz(qv, rho0), kz(qv, rho1), kz(qv, rho2)
		r01 := math.Abs((k0 - k1) / (k0 + k1))
		r12 := math.Abs((k1 - k2) / (k1 + k2))

		hi := (r01 + r12) / (1 + r01*r12)
		lo := (r01 - r12) / (1 - r01*r12)
		hi, lo = hi*hi, lo*lo

		if r[i] > hi*(1+1e-9) || r[i] < lo*(1-1e-9) {
			t.Fatalf("q=%g: R=%g outside Fresnel envelope [%g, %g]", qv, r[i], lo, hi)
		}
	}
	// The envelope itself must have decayed far below total reflection.
	if last := r[len(r)-1]; last > 1e-4 {
		t.Errorf("R(%g) = %g, expected deep q^-4 decay", q[len(q)-1], last)
	}
}

func TestReflectivityBoundedAndPositive(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	sio2 := slab.NewMaterial("SiO2", 3.47)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), sio2.Slab(150, 3), si.Backing(3))

	q := qRange(0.001, 0.4, 800)
	r, err := Compute(s, q)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, rv := range r {
		if rv < 0 || rv > 1+1e-12 {
			t.Errorf("q=%g: R=%g outside [0,1]", q[i], rv)
		}
	}
}

func TestRoughnessDampsHighQ(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	si := slab.NewMaterial("Si", 2.07)

	sharp := slab.MustStructure(air.Fronting(), si.Backing(0))
	rough := slab.MustStructure(air.Fronting(), si.Backing(5))

	q := []float64{0.1, 0.2, 0.3}
	rs, err := Compute(sharp, q)
	if err != nil {
		t.Fatal(err)
	}
	rr, err := Compute(rough, q)
	if err != nil {
		t.Fatal(err)
	}
	for i := range q {
		if rr[i] >= rs[i] {
			t.Errorf("q=%g: rough R=%g not below sharp R=%g", q[i], rr[i], rs[i])
		}
	}
}

func TestKiessigFringeSpacing(t *testing.T) {
	// A d-thick film produces fringes spaced 2*pi/d in q.
	const d = 200.0
	air := slab.NewMaterial("air", 0)
	film := slab.NewMaterial("film", 4.5)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), film.Slab(d, 0), si.Backing(0))

	q := qRange(0.05, 0.15, 4000)
	r, err := Compute(s, q)
	if err != nil {
		t.Fatal(err)
	}

	// Collect local minima positions.
	var minima []float64
	for i := 1; i < len(r)-1; i++ {
		if r[i] < r[i-1] && r[i] < r[i+1] {
			minima = append(minima, q[i])
		}
	}
	if len(minima) < 3 {
		t.Fatalf("expected several fringes, found %d minima", len(minima))
	}
	want := 2 * math.Pi / d
	for i := 1; i < len(minima); i++ {
		spacing := minima[i] - minima[i-1]
		if math.Abs(spacing-want)/want > 0.05 {
			t.Errorf("fringe spacing %g, want %g within 5%%", spacing, want)
		}
	}
}

func TestNegativeThicknessRejected(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	sio2 := slab.NewMaterial("SiO2", 3.47)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))
	s.At(1).Thickness.Value = -5

	if _, err := Compute(s, []float64{0.1}); !errors.Is(err, ErrNumerical) {
		t.Fatalf("expected ErrNumerical, got %v", err)
	}
}

func TestWriteBackReproducesCurve(t *testing.T) {
	air := slab.NewMaterial("air", 0)
	sio2 := slab.NewMaterial("SiO2", 3.47)
	si := slab.NewMaterial("Si", 2.07)
	s := slab.MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))

	q := qRange(0.01, 0.3, 50)
	before, err := Compute(s, q)
	if err != nil {
		t.Fatal(err)
	}

	all := s.Parameters().All()
	vec := make([]float64, len(all))
	for i, p := range all {
		vec[i] = p.Value
	}
	for i, p := range all {
		p.Value = vec[i]
	}

	after, err := Compute(s, q)
	if err != nil {
		t.Fatal(err)
	}
	for i := range q {
		if before[i] != after[i] {
			t.Fatalf("q=%g: curve changed after identity write-back", q[i])
		}
	}
}
