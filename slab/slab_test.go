package slab

import (
	"errors"
	"math"
	"testing"

	"github.com/slabfit/go-slabfit/param"
)

func TestNewStructureRequiresTwoSlabs(t *testing.T) {
	si := NewMaterial("Si", 2.07)
	if _, err := NewStructure(si.Fronting()); !errors.Is(err, ErrBadStructure) {
		t.Fatalf("expected ErrBadStructure, got %v", err)
	}
}

func TestValidateNegativeThickness(t *testing.T) {
	air := NewMaterial("air", 0)
	sio2 := NewMaterial("SiO2", 3.47)
	si := NewMaterial("Si", 2.07)

	s := MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))
	if err := s.Validate(); err != nil {
		t.Fatalf("valid structure rejected: %v", err)
	}

	s.At(1).Thickness.Value = -1
	if err := s.Validate(); !errors.Is(err, ErrBadStructure) {
		t.Errorf("expected ErrBadStructure for negative thickness, got %v", err)
	}
}

func TestSharedMaterialIsOneDegreeOfFreedom(t *testing.T) {
	sio2 := NewMaterial("SiO2", 3.47)
	si := NewMaterial("Si", 2.07)
	air := NewMaterial("air", 0)
	d2o := NewMaterial("D2O", 6.36)

	// Same oxide material in two contrasts.
	s1 := MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(3))
	s2 := MustStructure(d2o.Fronting(), sio2.Slab(15, 3), si.Backing(3))

	if s1.At(1).Material.SLD != s2.At(1).Material.SLD {
		t.Fatal("material SLD handle should be shared between structures")
	}

	sio2.SLD.Value = 3.30
	if s2.At(1).Material.SLD.Value != 3.30 {
		t.Error("mutation through shared handle not visible in second structure")
	}
}

func TestEffectiveSLDWithSolvent(t *testing.T) {
	heads := NewMaterial("heads", 1.88)
	lay := heads.Slab(10, 3).WithSolvent(param.New("head solvation", 0.5))

	re, _ := lay.EffectiveSLD(6.36, 0)
	want := 0.5*1.88 + 0.5*6.36
	if math.Abs(re-want) > 1e-12 {
		t.Errorf("effective SLD = %g, want %g", re, want)
	}
}

func TestSolventTracksBackingMedium(t *testing.T) {
	si := NewMaterial("Si", 2.07)
	heads := NewMaterial("heads", 1.88)
	d2o := NewMaterial("D2O", 6.36)
	smw := NewMaterial("SMW", 2.07)

	// The same solvated head layer under two contrast liquids.
	frac := param.New("head solvation", 0.3)
	layer := heads.Slab(10, 3).WithSolvent(frac)

	inD2O := MustStructure(si.Fronting(), layer, d2o.Backing(3))
	inSMW := MustStructure(si.Fronting(), layer, smw.Backing(3))

	gotD2O := inD2O.Flatten().SLD[1]
	gotSMW := inSMW.Flatten().SLD[1]

	if wantD2O := 0.7*1.88 + 0.3*6.36; math.Abs(gotD2O-wantD2O) > 1e-12 {
		t.Errorf("d2o contrast SLD = %g, want %g", gotD2O, wantD2O)
	}
	if wantSMW := 0.7*1.88 + 0.3*2.07; math.Abs(gotSMW-wantSMW) > 1e-12 {
		t.Errorf("smw contrast SLD = %g, want %g", gotSMW, wantSMW)
	}
	if gotD2O == gotSMW {
		t.Error("solvated SLD identical in both contrasts; solvent must be the backing medium")
	}
}

func TestFlatten(t *testing.T) {
	air := NewMaterial("air", 0)
	sio2 := NewMaterial("SiO2", 3.47)
	si := NewMaterial("Si", 2.07)
	s := MustStructure(air.Fronting(), sio2.Slab(15, 3), si.Backing(4))

	p := s.Flatten()
	if len(p.SLD) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(p.SLD))
	}
	if p.Thick[0] != 0 || p.Thick[2] != 0 {
		t.Error("semi-infinite media should report zero thickness")
	}
	if p.Thick[1] != 15 || p.Rough[1] != 3 || p.Rough[2] != 4 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestSLDProfileApproachesBulkValues(t *testing.T) {
	air := NewMaterial("air", 0)
	sio2 := NewMaterial("SiO2", 3.47)
	si := NewMaterial("Si", 2.07)
	s := MustStructure(air.Fronting(), sio2.Slab(20, 3), si.Backing(3))

	pts := s.SLDProfile(0.5)
	if len(pts) == 0 {
		t.Fatal("empty profile")
	}
	first := pts[0]
	last := pts[len(pts)-1]
	if math.Abs(first.SLD-0) > 1e-3 {
		t.Errorf("front tail SLD = %g, want ~0", first.SLD)
	}
	if math.Abs(last.SLD-2.07) > 1e-3 {
		t.Errorf("back tail SLD = %g, want ~2.07", last.SLD)
	}

	// Mid-layer value should be close to the oxide SLD.
	var mid ProfilePoint
	for _, p := range pts {
		if p.Depth >= 10 {
			mid = p
			break
		}
	}
	if math.Abs(mid.SLD-3.47) > 0.05 {
		t.Errorf("mid-layer SLD = %g, want ~3.47", mid.SLD)
	}
}
