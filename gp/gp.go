package gp

import "github.com/neurlang/gofrog/frog"
import "github.com/neurlang/gofrog/prep"
import "context"
import "fmt"
import "math"
import "math/cmplx"
import "math/rand"

// Reseed restarts the search from a fresh gaussian guess when the error has
// not dropped by at least MinGain over Patience consecutive iterations.
// A zero Patience disables it.
type Reseed struct {
	Patience int
	MinGain  float64
}

// Config holds the generalized projections parameters.
type Config struct {
	MaxIter   int
	Tolerance float64
	Domain    frog.Domain
	Antialias bool
	Estimator frog.Estimator
	// Recentre keeps the pulse centroid at the middle of the window.
	Recentre bool
	Reseed   Reseed
	// Seed is the starting field. When empty a gaussian guess with a small
	// random phase is drawn from RandSeed.
	Seed     []complex128
	RandSeed int64
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{
		MaxIter:   200,
		Tolerance: 1e-3,
		Domain:    frog.DomainTime,
		Estimator: frog.EstimatorPower,
		Recentre:  true,
		RandSeed:  1,
	}
}

// Validate checks the configuration without running anything.
func (c Config) Validate() error {
	if c.MaxIter < 0 {
		return fmt.Errorf("%w: max iterations %d", frog.ErrInvalidConfig, c.MaxIter)
	}
	if !(c.Tolerance >= 0) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance %v", frog.ErrInvalidConfig, c.Tolerance)
	}
	if c.Reseed.Patience < 0 || !(c.Reseed.MinGain >= 0) {
		return fmt.Errorf("%w: reseed %+v", frog.ErrInvalidConfig, c.Reseed)
	}
	if !c.Domain.Valid() {
		return fmt.Errorf("%w: domain %v", frog.ErrUnsupported, c.Domain)
	}
	if !c.Estimator.Valid() {
		return fmt.Errorf("%w: estimator %v", frog.ErrUnsupported, c.Estimator)
	}
	return nil
}

// Solver runs generalized projections with a fixed configuration.
type Solver struct {
	cfg Config
	obs frog.Observer
}

// New captures cfg; later changes to the caller's copy, including its seed
// slice, do not reach the solver. A nil obs discards progress.
func New(cfg Config, obs frog.Observer) *Solver {
	cfg.Seed = append([]complex128(nil), cfg.Seed...)
	if obs == nil {
		obs = frog.Discard
	}
	return &Solver{cfg: cfg, obs: obs}
}

type state struct {
	pt []complex128
	fr [][]float64
	ef *frog.Matrix
	g  float64
}

// Run retrieves the pulse behind trace. Reaching the iteration cap is not an
// error. When ctx is done the best estimate so far comes back with status
// Cancelled together with the context error.
func (s *Solver) Run(ctx context.Context, trace prep.Trace) (frog.Result, error) {
	cfg := s.cfg
	res := frog.Result{Status: frog.Initializing}
	if err := cfg.Validate(); err != nil {
		return fail(res, err)
	}
	if err := trace.Validate(); err != nil {
		return fail(res, err)
	}
	fm, err := frog.NormalizeMax(trace.Data)
	if err != nil {
		return fail(res, fmt.Errorf("measured trace: %w", err))
	}
	n := len(fm)
	res.Delays, res.Freqs = frog.Axes(n, trace.Dt)
	rng := rand.New(rand.NewSource(cfg.RandSeed))

	var pt []complex128
	if len(cfg.Seed) > 0 {
		if len(cfg.Seed) != n {
			return fail(res, fmt.Errorf("%w: seed has %d samples, trace is %dx%d", frog.ErrInvalidField, len(cfg.Seed), n, n))
		}
		pt = append([]complex128(nil), cfg.Seed...)
		if err := frog.Normalize(pt); err != nil {
			return fail(res, fmt.Errorf("seed: %w", err))
		}
	} else {
		pt = frog.GaussianSeed(n, rng)
	}

	cur, err := s.evaluate(fm, pt)
	if err != nil {
		return fail(res, err)
	}
	best := cur
	res.Status = frog.Iterating

	finish := func(st frog.Status, it int) frog.Result {
		res.Status = st
		res.Field = best.pt
		res.Trace = best.fr
		res.Error = best.g
		res.Iterations = it
		return res
	}

	ref, stall := cur.g, 0
	it := 0
	for cur.g > cfg.Tolerance && it < cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return finish(frog.Cancelled, it), fmt.Errorf("generalized projections: %w", err)
		}
		it++

		project(cur.ef, fm)
		pt, err := frog.Estimate(cur.ef, cur.pt, cfg.Domain, cfg.Antialias, cfg.Estimator)
		if err != nil {
			return fail(finish(frog.Failed, it), fmt.Errorf("iteration %d: %w", it, err))
		}
		if cfg.Recentre {
			pt = frog.Recentre(pt)
		}
		if cur, err = s.evaluate(fm, pt); err != nil {
			return fail(finish(frog.Failed, it), fmt.Errorf("iteration %d: %w", it, err))
		}
		if cur.g < best.g {
			best = cur
		}
		s.obs.Observe(frog.NewProgress(it, cur.g, cur.fr, cur.pt, res.Delays, res.Freqs))

		if cur.g < ref-cfg.Reseed.MinGain {
			ref, stall = cur.g, 0
		} else {
			stall++
		}
		if cfg.Reseed.Patience > 0 && stall >= cfg.Reseed.Patience && cur.g > cfg.Tolerance {
			if cur, err = s.evaluate(fm, frog.GaussianSeed(n, rng)); err != nil {
				return fail(finish(frog.Failed, it), fmt.Errorf("reseed at iteration %d: %w", it, err))
			}
			if cur.g < best.g {
				best = cur
			}
			ref, stall = cur.g, 0
		}
	}
	// without any iteration budget the seed is reported as is
	if best.g <= cfg.Tolerance && cfg.MaxIter > 0 {
		return finish(frog.Converged, it), nil
	}
	return finish(frog.MaxIterReached, it), nil
}

// evaluate builds the trace of pt and scores it against fm. The returned
// trace is already scaled to fm.
func (s *Solver) evaluate(fm [][]float64, pt []complex128) (state, error) {
	fr, ef, err := frog.Forward(pt, s.cfg.Domain, s.cfg.Antialias)
	if err != nil {
		return state{}, err
	}
	g, err := frog.Error(fm, fr)
	if err != nil {
		return state{}, err
	}
	return state{pt: pt, fr: fr, ef: ef, g: g}, nil
}

// project swaps the magnitude of every entry of ef for the measured amplitude,
// keeping the phase. Entries of zero magnitude have no phase and become zero.
func project(ef *frog.Matrix, fm [][]float64) {
	for r := 0; r < ef.N; r++ {
		for c := 0; c < ef.N; c++ {
			v := ef.At(r, c)
			a := cmplx.Abs(v)
			if a == 0 {
				ef.Set(r, c, 0)
				continue
			}
			ef.Set(r, c, v*complex(math.Sqrt(fm[r][c])/a, 0))
		}
	}
}

func fail(res frog.Result, err error) (frog.Result, error) {
	res.Status = frog.Failed
	return res, err
}
