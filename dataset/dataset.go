// Package dataset holds measured reflectivity curves and loads them from
// the plain-text column format produced by reduction software: whitespace
// delimited rows of q, R and optionally dR and dq.
package dataset

import (
	"errors"
	"fmt"
)

// ErrBadData indicates mismatched column lengths or otherwise malformed
// measured data.
var ErrBadData = errors.New("dataset: invalid data")

// Dataset is one measured reflectivity curve.
//
// Q is momentum transfer (Å⁻¹), R the measured reflectivity, DR its one-sigma
// uncertainty, and DQ the resolution width (FWHM) at each point. DR and DQ
// may be nil when the file did not carry them.
type Dataset struct {
	Name string
	Q    []float64
	R    []float64
	DR   []float64
	DQ   []float64
}

// New validates column lengths and builds a dataset. DR and DQ may be nil.
func New(name string, q, r, dr, dq []float64) (*Dataset, error) {
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty q column", ErrBadData)
	}
	if len(r) != len(q) {
		return nil, fmt.Errorf("%w: %d q values but %d R values", ErrBadData, len(q), len(r))
	}
	if dr != nil && len(dr) != len(q) {
		return nil, fmt.Errorf("%w: %d q values but %d dR values", ErrBadData, len(q), len(dr))
	}
	if dq != nil && len(dq) != len(q) {
		return nil, fmt.Errorf("%w: %d q values but %d dq values", ErrBadData, len(q), len(dq))
	}
	return &Dataset{Name: name, Q: q, R: r, DR: dr, DQ: dq}, nil
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	return len(d.Q)
}

// HasUncertainty reports whether the dataset carries dR values.
func (d *Dataset) HasUncertainty() bool {
	return d.DR != nil
}

// HasResolution reports whether the dataset carries pointwise dq values.
func (d *Dataset) HasResolution() bool {
	return d.DQ != nil
}

// Uncertainties returns DR, or a unit-weight column when the file carried
// none. Objectives use this so missing uncertainties degrade to unweighted
// least squares rather than failing.
func (d *Dataset) Uncertainties() []float64 {
	if d.DR != nil {
		return d.DR
	}
	ones := make([]float64, len(d.Q))
	for i := range ones {
		ones[i] = 1
	}
	return ones
}
