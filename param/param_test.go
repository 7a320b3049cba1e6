package param

import (
	"errors"
	"math"
	"testing"
)

func TestNewBoundedRejectsInvertedBounds(t *testing.T) {
	_, err := NewBounded("thickness", 10, 20, 5)
	if !errors.Is(err, ErrInvalidBounds) {
		t.Fatalf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestNewVaryingRequiresFiniteBounds(t *testing.T) {
	_, err := NewVarying("sld", 2.07, math.Inf(-1), 10)
	if !errors.Is(err, ErrInvalidBounds) {
		t.Fatalf("expected ErrInvalidBounds for infinite bound, got %v", err)
	}

	p, err := NewVarying("sld", 2.07, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Vary {
		t.Error("NewVarying should set Vary")
	}
}

func TestSetVary(t *testing.T) {
	p := New("background", 1e-7)
	if err := p.SetVary(true); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("varying an unbounded parameter should fail, got %v", err)
	}

	p.Bounds = Bounds{Low: 0, High: 1e-5}
	if err := p.SetVary(true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !p.Vary {
		t.Error("Vary not set")
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{Low: -1, High: 1}
	cases := []struct {
		v    float64
		want bool
	}{
		{-1, true},
		{0, true},
		{1, true},
		{1.0001, false},
		{-2, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.v); got != c.want {
			t.Errorf("Contains(%g) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSetDeduplicatesByIdentity(t *testing.T) {
	shared := MustVarying("roughness", 3, 0, 10)
	other := MustVarying("roughness", 3, 0, 10) // same name+value, distinct identity

	s := NewSet()
	s.Add(shared, other, shared, shared)

	if s.Len() != 2 {
		t.Fatalf("expected 2 distinct parameters, got %d", s.Len())
	}
	if s.At(0) != shared || s.At(1) != other {
		t.Error("first-seen order not preserved")
	}
}

func TestValuesRoundTrip(t *testing.T) {
	params := []*Parameter{
		MustVarying("a", 1.5, 0, 10),
		MustVarying("b", 2.5, 0, 10),
	}
	v := Values(params)
	v[0] = 9.0
	SetValues(params, v)
	if params[0].Value != 9.0 || params[1].Value != 2.5 {
		t.Errorf("write-back mismatch: %v %v", params[0].Value, params[1].Value)
	}
}

func TestSetVaryingPreservesOrder(t *testing.T) {
	a := MustVarying("a", 1, 0, 2)
	b := New("b", 5)
	c := MustVarying("c", 1, 0, 2)

	s := NewSet()
	s.Add(a, b, c)

	vary := s.Varying()
	if len(vary) != 2 || vary[0] != a || vary[1] != c {
		t.Errorf("unexpected varying subset: %v", vary)
	}
}
