// Package results assembles fit and sampling outcomes into serializable
// reports: best-fit values, posterior summaries per parameter and goodness
// of fit, with JSON read/write for downstream tooling.
package results

// ParamSummary describes one varying parameter after fitting and,
// when a chain is available, after sampling.
type ParamSummary struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Stderr float64 `json:"stderr,omitempty"`
	Median float64 `json:"median,omitempty"`
	P16    float64 `json:"p16,omitempty"`
	P84    float64 `json:"p84,omitempty"`
}

// FitReport is the full record of one refinement run.
type FitReport struct {
	Session     string         `json:"session,omitempty"`
	Datasets    []string       `json:"datasets"`
	Cost        float64        `json:"cost"`
	ChiSquared  float64        `json:"chiSquared"`
	Points      int            `json:"points"`
	Generations int            `json:"generations"`
	Evaluations int            `json:"evaluations"`
	Converged   bool           `json:"converged"`
	Parameters  []ParamSummary `json:"parameters"`

	// Sampling diagnostics, present when a posterior chain was drawn.
	Walkers    int      `json:"walkers,omitempty"`
	Samples    int      `json:"samples,omitempty"`
	Acceptance float64  `json:"acceptance,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// ReducedChiSquared returns chi2 per degree of freedom.
func (r *FitReport) ReducedChiSquared() float64 {
	dof := r.Points - len(r.Parameters)
	if dof <= 0 {
		return r.ChiSquared
	}
	return r.ChiSquared / float64(dof)
}
