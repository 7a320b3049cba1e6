package slab

import (
	"math"
)

// ProfilePoint is one (depth, SLD) sample of the scattering length density
// as a function of distance into the sample. Depth zero is the interface
// between the incident medium and the first finite layer; negative depths
// are inside the incident medium.
type ProfilePoint struct {
	Depth float64 // Å
	SLD   float64 // 1e-6 Å⁻²
}

// SLDProfile samples the structure's scattering length density versus depth
// at the given step size. Each interface is broadened with an error-function
// kernel of width equal to its roughness, which matches the Nevot-Croce
// damping used by the reflectivity kernel. The profile extends a few
// roughness widths into each semi-infinite medium. Read-only: intended for
// external rendering, the fit never consumes it.
func (s *Structure) SLDProfile(step float64) []ProfilePoint {
	if step <= 0 {
		step = 0.5
	}
	prof := s.Flatten()
	n := len(prof.SLD)

	// Interface positions, measured from the front of the first finite layer.
	offsets := make([]float64, n-1)
	z := 0.0
	for i := 1; i < n-1; i++ {
		offsets[i-1] = z
		z += prof.Thick[i]
	}
	offsets[n-2] = z

	// Pad by the larger of 4x the widest roughness or a fixed margin, so the
	// tails flatten out to the bulk SLD values.
	maxRough := 0.0
	for _, r := range prof.Rough {
		maxRough = math.Max(maxRough, r)
	}
	pad := math.Max(4*maxRough, 15)

	var out []ProfilePoint
	for d := -pad; d <= z+pad; d += step {
		v := prof.SLD[0]
		for i := 0; i < n-1; i++ {
			sigma := prof.Rough[i+1]
			var frac float64
			if sigma <= 0 {
				if d >= offsets[i] {
					frac = 1
				}
			} else {
				frac = 0.5 * (1 + math.Erf((d-offsets[i])/(sigma*math.Sqrt2)))
			}
			v += (prof.SLD[i+1] - prof.SLD[i]) * frac
		}
		out = append(out, ProfilePoint{Depth: d, SLD: v})
	}
	return out
}
