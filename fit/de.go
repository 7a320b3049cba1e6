package fit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
)

// ErrFitFailure indicates the budget was exhausted without a finite best
// cost. Recoverable: the result still carries the best vector found, and
// callers may retry with wider bounds or a larger budget.
var ErrFitFailure = errors.New("fit: no finite cost found")

// ErrNoVarying indicates the objective exposes no varying parameters.
var ErrNoVarying = errors.New("fit: objective has no varying parameters")

// Result describes a completed (or cancelled) fit.
type Result struct {
	X           []float64 // best vector, ordered as VaryingParameters
	Cost        float64   // negative log-posterior at X
	Generations int
	Evaluations int
	Converged   bool
}

// Minimize searches the bounded space of the objective's varying parameters
// for the minimum negative log-posterior using best/1/bin differential
// evolution. On return the best vector has been written back into the
// parameters, so the objective scores Result.Cost as-is.
//
// ctx is checked between generations; cancellation ends the search cleanly
// at a generation boundary with the best-so-far written back.
func Minimize(ctx context.Context, post objective.Posterior, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	varying := post.VaryingParameters()
	if len(varying) == 0 {
		return nil, ErrNoVarying
	}
	dim := len(varying)
	lower := param.LowerBounds(varying)
	upper := param.UpperBounds(varying)

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log := opts.logger()

	np := opts.populationSize(dim)
	pop := make([][]float64, np)

	// Member 0 starts from the current parameter values (clipped into
	// bounds) so a fit can resume from a previous best.
	pop[0] = clip(param.Values(varying), lower, upper)
	for i := 1; i < np; i++ {
		v := make([]float64, dim)
		for d := 0; d < dim; d++ {
			v[d] = lower[d] + rng.Float64()*(upper[d]-lower[d])
		}
		pop[i] = v
	}

	costs := evaluateBatch(post, varying, pop, opts.Workers)
	evals := np

	best := 0
	for i, c := range costs {
		if c < costs[best] {
			best = i
		}
	}

	result := &Result{}
	stall := 0
	gen := 0
	for ; gen < opts.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			break
		}

		trials := make([][]float64, np)
		for i := 0; i < np; i++ {
			a, b := rng.Intn(np), rng.Intn(np)
			for a == i {
				a = rng.Intn(np)
			}
			for b == i || b == a {
				b = rng.Intn(np)
			}

			trial := make([]float64, dim)
			forced := rng.Intn(dim)
			for d := 0; d < dim; d++ {
				if d == forced || rng.Float64() < opts.Crossover {
					trial[d] = pop[best][d] + opts.Mutation*(pop[a][d]-pop[b][d])
				} else {
					trial[d] = pop[i][d]
				}
			}
			reflect(trial, lower, upper, rng)
			trials[i] = trial
		}

		// Full-generation barrier: every trial cost is known before any
		// selection happens.
		trialCosts := evaluateBatch(post, varying, trials, opts.Workers)
		evals += np

		prevBest := costs[best]
		for i := 0; i < np; i++ {
			if trialCosts[i] <= costs[i] {
				pop[i] = trials[i]
				costs[i] = trialCosts[i]
				if costs[i] < costs[best] {
					best = i
				}
			}
		}

		improvement := prevBest - costs[best]
		if math.IsInf(prevBest, 1) && !math.IsInf(costs[best], 1) {
			stall = 0
		} else if improvement <= opts.Tol*math.Max(math.Abs(costs[best]), 1) {
			stall++
		} else {
			stall = 0
		}

		log.Debug("generation complete",
			"gen", gen, "best", costs[best], "stall", stall)

		if stall >= opts.StallGenerations {
			result.Converged = true
			gen++
			break
		}
	}

	// Write-back is the coordinator's only side effect on shared state.
	param.SetValues(varying, pop[best])

	result.X = append([]float64(nil), pop[best]...)
	result.Cost = costs[best]
	result.Generations = gen
	result.Evaluations = evals

	if math.IsInf(result.Cost, 1) || math.IsNaN(result.Cost) {
		return result, fmt.Errorf("%w after %d generations", ErrFitFailure, gen)
	}
	return result, nil
}

// evaluateBatch scores candidate vectors. The coordinator writes each
// candidate into the shared parameters and freezes a pure snapshot; the
// snapshots then run on a worker pool (or inline) without touching shared
// state.
func evaluateBatch(post objective.Posterior, varying []*param.Parameter, vectors [][]float64, workers int) []float64 {
	n := len(vectors)
	frozen := make([]func() float64, n)
	for i, v := range vectors {
		param.SetValues(varying, v)
		frozen[i] = post.Frozen()
	}

	costs := make([]float64, n)
	if workers <= 1 {
		for i, f := range frozen {
			costs[i] = -f()
		}
		return costs
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				costs[i] = -frozen[i]()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return costs
}

// reflect folds out-of-bounds components back into the hyper-rectangle.
// Falls back to a uniform redraw if a component is still outside after one
// reflection (possible with large mutation steps).
func reflect(v, lower, upper []float64, rng *rand.Rand) {
	for d := range v {
		switch {
		case v[d] < lower[d]:
			v[d] = lower[d] + (lower[d] - v[d])
		case v[d] > upper[d]:
			v[d] = upper[d] - (v[d] - upper[d])
		}
		if v[d] < lower[d] || v[d] > upper[d] {
			v[d] = lower[d] + rng.Float64()*(upper[d]-lower[d])
		}
	}
}

func clip(v, lower, upper []float64) []float64 {
	out := append([]float64(nil), v...)
	for d := range out {
		out[d] = math.Min(math.Max(out[d], lower[d]), upper[d])
	}
	return out
}
