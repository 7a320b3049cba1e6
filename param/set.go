package param

// Set is an ordered collection of parameter handles. Adding the same
// *Parameter twice keeps only the first occurrence, so a Set built from
// several structures yields each shared degree of freedom exactly once,
// in first-seen order. That order is the contract between an objective
// and the optimizer: position i always maps to the same parameter.
type Set struct {
	params []*Parameter
	seen   map[*Parameter]struct{}
}

// NewSet creates an empty parameter set.
func NewSet() *Set {
	return &Set{seen: make(map[*Parameter]struct{})}
}

// Add appends parameters to the set, skipping any already present.
// Dedup is by pointer identity, not by name or value.
func (s *Set) Add(params ...*Parameter) {
	for _, p := range params {
		if p == nil {
			continue
		}
		if _, ok := s.seen[p]; ok {
			continue
		}
		s.seen[p] = struct{}{}
		s.params = append(s.params, p)
	}
}

// Len returns the number of distinct parameters in the set.
func (s *Set) Len() int {
	return len(s.params)
}

// At returns the i-th parameter in first-seen order.
func (s *Set) At(i int) *Parameter {
	return s.params[i]
}

// All returns the parameters in first-seen order. The returned slice is a
// copy; the handles it holds are shared.
func (s *Set) All() []*Parameter {
	out := make([]*Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Varying returns the subset with Vary set, preserving order.
func (s *Set) Varying() []*Parameter {
	var out []*Parameter
	for _, p := range s.params {
		if p.Vary {
			out = append(out, p)
		}
	}
	return out
}

// Values serializes the current parameter values to a vector.
func Values(params []*Parameter) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = p.Value
	}
	return out
}

// SetValues writes a vector back into the parameters, position by position.
// Writing the vector produced by Values is a no-op on the modeled curve.
func SetValues(params []*Parameter, values []float64) {
	for i, p := range params {
		p.Value = values[i]
	}
}

// LowerBounds extracts the lower bound of each parameter.
func LowerBounds(params []*Parameter) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = p.Bounds.Low
	}
	return out
}

// UpperBounds extracts the upper bound of each parameter.
func UpperBounds(params []*Parameter) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = p.Bounds.High
	}
	return out
}
