// Package sample explores the posterior over an objective's varying
// parameters with an affine-invariant ensemble sampler: many walkers
// propose stretch moves through each other's positions, which adapts to
// correlated parameters without manual step-size tuning.
//
// A Sampler is an explicit session object. Walker positions live in the
// Sampler, never in package state, so sampling is resumable across calls
// and independent samplers do not interfere.
package sample

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/slabfit/go-slabfit/objective"
	"github.com/slabfit/go-slabfit/param"
)

// ErrNoVarying indicates the objective exposes no varying parameters.
var ErrNoVarying = errors.New("sample: objective has no varying parameters")

// ErrBadEnsemble indicates a walker count too small for the stretch move.
var ErrBadEnsemble = errors.New("sample: ensemble too small")

// Options configures the ensemble.
type Options struct {
	Walkers  int     // 0 picks max(2*dim rounded up to even, 32)
	StretchA float64 // stretch scale a; 0 uses the standard 2.0
	Thin     int     // keep every Thin-th step; 0 or 1 keeps all
	Scatter  float64 // initial ball size as a fraction of bound width; 0 uses 1e-3
	Seed     int64   // 0 draws a seed from the clock
	Workers  int     // parallel posterior evaluations; <=1 sequential

	Logger *slog.Logger
}

// DefaultOptions returns standard ensemble settings.
func DefaultOptions() *Options {
	return &Options{StretchA: 2.0, Thin: 1, Scatter: 1e-3}
}

func (o *Options) walkers(dim int) int {
	if o.Walkers > 0 {
		return o.Walkers
	}
	n := 2 * dim
	if n < 32 {
		n = 32
	}
	if n%2 != 0 {
		n++
	}
	return n
}

func (o *Options) thin() int {
	if o.Thin <= 1 {
		return 1
	}
	return o.Thin
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Sampler holds the walker ensemble and its chain history.
type Sampler struct {
	post    objective.Posterior
	varying []*param.Parameter
	opts    *Options
	rng     *rand.Rand
	log     *slog.Logger

	walkers [][]float64
	logp    []float64

	chain    [][]float64 // thinned samples, walker-major per retained step
	steps    int
	accepted int64
	proposed int64
}

// New creates a sampler with walkers scattered in a small ball around the
// objective's current parameter values, typically the optimizer's best fit.
func New(post objective.Posterior, opts *Options) (*Sampler, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	varying := post.VaryingParameters()
	if len(varying) == 0 {
		return nil, ErrNoVarying
	}
	dim := len(varying)
	nw := opts.walkers(dim)
	if nw < 2*dim || nw < 4 {
		return nil, ErrBadEnsemble
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Sampler{
		post:    post,
		varying: varying,
		opts:    opts,
		rng:     rand.New(rand.NewSource(seed)),
		log:     opts.logger(),
	}

	center := param.Values(varying)
	lower := param.LowerBounds(varying)
	upper := param.UpperBounds(varying)
	scatter := opts.Scatter
	if scatter <= 0 {
		scatter = 1e-3
	}

	s.walkers = make([][]float64, nw)
	for i := 0; i < nw; i++ {
		w := make([]float64, dim)
		for d := 0; d < dim; d++ {
			sigma := scatter * (upper[d] - lower[d])
			v := center[d] + sigma*s.rng.NormFloat64()
			w[d] = math.Min(math.Max(v, lower[d]), upper[d])
		}
		s.walkers[i] = w
	}
	s.logp = s.evaluate(s.walkers)
	s.restore(center)
	return s, nil
}

// Walkers returns the number of walkers in the ensemble.
func (s *Sampler) Walkers() int {
	return len(s.walkers)
}

// Dim returns the number of varying parameters.
func (s *Sampler) Dim() int {
	return len(s.varying)
}

// Sample advances every walker nSteps times and returns the newly retained
// (thinned) samples, one vector per walker per retained step. The chain
// history grows by the same samples; walker positions persist for the next
// call. ctx is checked between steps and ends sampling cleanly at a step
// boundary.
func (s *Sampler) Sample(ctx context.Context, nSteps int) ([][]float64, error) {
	entry := param.Values(s.varying)
	defer s.restore(entry)

	a := s.opts.StretchA
	if a <= 1 {
		a = 2.0
	}
	thin := s.opts.thin()
	dim := len(s.varying)
	nw := len(s.walkers)
	half := nw / 2

	var fresh [][]float64
	for step := 0; step < nSteps; step++ {
		if ctx.Err() != nil {
			break
		}

		// Two half-ensemble updates: walkers in one half stretch through
		// positions in the other, so a full step stays detailed-balanced.
		for _, split := range [][2]int{{0, half}, {half, nw}} {
			lo, hi := split[0], split[1]
			n := hi - lo

			props := make([][]float64, n)
			zs := make([]float64, n)
			for k := 0; k < n; k++ {
				i := lo + k
				// Complement walker from the other half.
				var j int
				if lo == 0 {
					j = half + s.rng.Intn(nw-half)
				} else {
					j = s.rng.Intn(half)
				}
				// z ~ g(z; a) via inverse transform.
				u := s.rng.Float64()
				z := (u*(math.Sqrt(a)-1/math.Sqrt(a)) + 1/math.Sqrt(a))
				z *= z
				zs[k] = z

				p := make([]float64, dim)
				for d := 0; d < dim; d++ {
					p[d] = s.walkers[j][d] + z*(s.walkers[i][d]-s.walkers[j][d])
				}
				props[k] = p
			}

			logps := s.evaluate(props)
			for k := 0; k < n; k++ {
				i := lo + k
				s.proposed++
				logRatio := float64(dim-1)*math.Log(zs[k]) + logps[k] - s.logp[i]
				if logRatio >= 0 || math.Log(s.rng.Float64()) < logRatio {
					s.walkers[i] = props[k]
					s.logp[i] = logps[k]
					s.accepted++
				}
			}
		}

		s.steps++
		if s.steps%thin == 0 {
			for _, w := range s.walkers {
				v := append([]float64(nil), w...)
				s.chain = append(s.chain, v)
				fresh = append(fresh, v)
			}
		}

		if (step+1)%100 == 0 {
			s.log.Debug("sampling", "step", step+1, "acceptance", s.Acceptance())
		}
	}
	return fresh, nil
}

// Reset discards the chain history and acceptance counters without moving
// the walkers. Use it to drop burn-in before production sampling.
func (s *Sampler) Reset() {
	s.chain = nil
	s.steps = 0
	s.accepted = 0
	s.proposed = 0
}

// FlatChain returns the retained samples flattened across walkers:
// walker-major within each retained step, in generation order. The
// returned slice shares storage with the sampler's history; treat it as
// read-only.
func (s *Sampler) FlatChain() [][]float64 {
	return s.chain
}

// Acceptance returns the fraction of proposals accepted since the last
// Reset.
func (s *Sampler) Acceptance() float64 {
	if s.proposed == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposed)
}

// evaluate scores walker positions. As in the fit package, the coordinator
// writes each position into the shared parameters and freezes a pure
// snapshot; only the snapshots run concurrently.
func (s *Sampler) evaluate(positions [][]float64) []float64 {
	n := len(positions)
	frozen := make([]func() float64, n)
	for i, p := range positions {
		param.SetValues(s.varying, p)
		frozen[i] = s.post.Frozen()
	}

	out := make([]float64, n)
	workers := s.opts.Workers
	if workers <= 1 {
		for i, f := range frozen {
			out[i] = f()
		}
		return out
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = frozen[i]()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (s *Sampler) restore(values []float64) {
	param.SetValues(s.varying, values)
}
