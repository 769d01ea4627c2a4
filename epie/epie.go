package epie

import "github.com/mjibson/go-dsp/fft"
import "github.com/neurlang/gofrog/frog"
import "github.com/neurlang/gofrog/prep"
import "gonum.org/v1/gonum/floats"
import "context"
import "errors"
import "fmt"
import "math"
import "math/cmplx"
import "math/rand"

// Config holds the ptychographic engine parameters.
type Config struct {
	MaxIter   int
	Tolerance float64
	// The update step of each pass is |StepMean + StepSpread·z| for a
	// standard normal z.
	StepMean   float64
	StepSpread float64
	// SupportStride keeps every SupportStride-th frequency row in the
	// measurement support. 1 uses the whole trace.
	SupportStride int
	// Seed is the starting field. When empty a gaussian guess with a small
	// random phase is drawn from RandSeed.
	Seed     []complex128
	RandSeed int64
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{
		MaxIter:       200,
		Tolerance:     1e-3,
		StepMean:      0.2,
		StepSpread:    0.05,
		SupportStride: 1,
		RandSeed:      1,
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
	if math.IsNaN(c.StepMean) || math.IsInf(c.StepMean, 0) || !(c.StepSpread >= 0) || math.IsInf(c.StepSpread, 0) {
		return fmt.Errorf("%w: step %v±%v", frog.ErrInvalidConfig, c.StepMean, c.StepSpread)
	}
	if c.SupportStride < 1 {
		return fmt.Errorf("%w: support stride %d", frog.ErrInvalidConfig, c.SupportStride)
	}
	return nil
}

// Solver runs the ptychographic engine with a fixed configuration.
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

// run is the working set of one retrieval.
type run struct {
	n       int
	c0      int
	meas    [][]float64 // unit peak, rows by frequency
	amp     [][]float64 // amp[k][f]: measured amplitude of column k in FFT order
	support []bool      // by FFT frequency index
	norm    float64     // ‖meas‖ over the support
}

func newRun(fm [][]float64, stride int) *run {
	n := len(fm)
	r := &run{n: n, c0: (n+1)/2 - 1, meas: fm}
	r.support = make([]bool, n)
	for f := range r.support {
		r.support[f] = r.row(f)%stride == 0
	}
	r.amp = make([][]float64, n)
	for k := range r.amp {
		r.amp[k] = make([]float64, n)
		for f := range r.amp[k] {
			r.amp[k][f] = math.Sqrt(fm[r.row(f)][k])
		}
	}
	var s float64
	for f, in := range r.support {
		if !in {
			continue
		}
		row := fm[r.row(f)]
		s += floats.Dot(row, row)
	}
	r.norm = math.Sqrt(s)
	return r
}

// row maps an FFT frequency index to its trace row.
func (r *run) row(f int) int {
	return (f + r.c0) % r.n
}

// delay is the shift in samples of column k.
func (r *run) delay(k int) float64 {
	return float64(r.c0 - k)
}

// trace returns the SHG-FROG trace of obj in the row and column layout of the
// measurement.
func (r *run) trace(obj []complex128) [][]float64 {
	out := make([][]float64, r.n)
	for i := range out {
		out[i] = make([]float64, r.n)
	}
	psi := make([]complex128, r.n)
	for k := 0; k < r.n; k++ {
		gate := frog.Shift(obj, r.delay(k))
		for t := range psi {
			psi[t] = obj[t] * gate[t]
		}
		for f, v := range fft.FFT(psi) {
			a := cmplx.Abs(v)
			out[r.row(f)][k] = a * a
		}
	}
	return out
}

// residual is ‖ir − meas‖/‖meas‖ over the support rows.
func (r *run) residual(ir [][]float64) float64 {
	var s float64
	for f, in := range r.support {
		if !in {
			continue
		}
		row := r.row(f)
		s += math.Pow(floats.Distance(ir[row], r.meas[row], 2), 2)
	}
	return math.Sqrt(s) / r.norm
}

// update applies the correction of column k to obj in place.
func (r *run) update(obj []complex128, k int, step float64) error {
	d := r.delay(k)
	gate := frog.Shift(obj, d)
	psi := make([]complex128, r.n)
	for t := range psi {
		psi[t] = obj[t] * gate[t]
	}
	spec := fft.FFT(psi)
	for f, v := range spec {
		if !r.support[f] {
			continue
		}
		a := cmplx.Abs(v)
		if a == 0 {
			spec[f] = complex(r.amp[k][f], 0)
			continue
		}
		spec[f] = v * complex(r.amp[k][f]/a, 0)
	}
	diff := fft.IFFT(spec)
	for t := range diff {
		diff[t] -= psi[t]
	}

	gmax, omax := peak(gate), peak(obj)
	if gmax == 0 || omax == 0 {
		return fmt.Errorf("%w: field vanished at delay %v", frog.ErrDegenerate, d)
	}
	back := make([]complex128, r.n)
	for t := range back {
		back[t] = complex(step/omax, 0) * cmplx.Conj(obj[t]) * diff[t]
	}
	back = frog.Shift(back, -d)
	for t := range obj {
		obj[t] += complex(step/gmax, 0)*cmplx.Conj(gate[t])*diff[t] + back[t]
	}
	return nil
}

func peak(x []complex128) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, real(v)*real(v)+imag(v)*imag(v))
	}
	return m
}

type estimate struct {
	obj []complex128
	ir  [][]float64
	g   float64
}

// Run retrieves the pulse behind trace. Reaching the iteration cap is not an
// error. When ctx is done the best estimate so far comes back with status
// Cancelled together with the context error. The returned field has unit norm
// and the returned trace is on the measured scale.
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
	r := newRun(fm, cfg.SupportStride)
	if r.norm == 0 {
		return fail(res, fmt.Errorf("%w: no signal on the support rows", frog.ErrZeroTrace))
	}

	var obj []complex128
	if len(cfg.Seed) > 0 {
		if len(cfg.Seed) != n {
			return fail(res, fmt.Errorf("%w: seed has %d samples, trace is %dx%d", frog.ErrInvalidField, len(cfg.Seed), n, n))
		}
		obj = append([]complex128(nil), cfg.Seed...)
		if err := frog.Normalize(obj); err != nil {
			return fail(res, fmt.Errorf("seed: %w", err))
		}
	} else {
		obj = frog.GaussianSeed(n, rng)
	}
	// bring the seed to the intensity scale of the measurement
	alpha, err := frog.Alpha(fm, r.trace(obj))
	if err != nil {
		return fail(res, fmt.Errorf("seed: %w", err))
	}
	if alpha <= 0 {
		return fail(res, fmt.Errorf("%w: seed trace does not overlap the measurement", frog.ErrDegenerate))
	}
	scale := complex(math.Pow(alpha, 0.25), 0)
	for t := range obj {
		obj[t] *= scale
	}

	ir := r.trace(obj)
	cur := estimate{obj: obj, ir: ir, g: r.residual(ir)}
	best := estimate{obj: append([]complex128(nil), obj...), ir: ir, g: cur.g}
	res.Status = frog.Iterating

	finish := func(st frog.Status, it int, err error) (frog.Result, error) {
		res.Trace = best.ir
		res.Error = best.g
		res.Iterations = it
		field, ferr := unitField(best.obj)
		if ferr != nil {
			res.Status = frog.Failed
			return res, errors.Join(err, fmt.Errorf("best estimate: %w", ferr))
		}
		res.Status = st
		res.Field = field
		return res, err
	}

	it := 0
	for cur.g > cfg.Tolerance && it < cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return finish(frog.Cancelled, it, fmt.Errorf("ptychographic engine: %w", err))
		}
		it++

		step := math.Abs(cfg.StepMean + cfg.StepSpread*rng.NormFloat64())
		for _, k := range rng.Perm(n) {
			if err := r.update(cur.obj, k, step); err != nil {
				return finish(frog.Failed, it, fmt.Errorf("iteration %d: %w", it, err))
			}
		}
		if err := frog.ValidateField(cur.obj); err != nil {
			return finish(frog.Failed, it, fmt.Errorf("iteration %d: %w", it, err))
		}
		cur.ir = r.trace(cur.obj)
		cur.g = r.residual(cur.ir)
		if cur.g < best.g {
			best = estimate{obj: append([]complex128(nil), cur.obj...), ir: cur.ir, g: cur.g}
		}
		s.obs.Observe(frog.NewProgress(it, cur.g, cur.ir, cur.obj, res.Delays, res.Freqs))
	}
	// without any iteration budget the seed is reported as is
	if best.g <= cfg.Tolerance && cfg.MaxIter > 0 {
		return finish(frog.Converged, it, nil)
	}
	return finish(frog.MaxIterReached, it, nil)
}

// unitField returns a unit-norm copy of obj.
func unitField(obj []complex128) ([]complex128, error) {
	field := append([]complex128(nil), obj...)
	if err := frog.Normalize(field); err != nil {
		return nil, err
	}
	return field, nil
}

func fail(res frog.Result, err error) (frog.Result, error) {
	res.Status = frog.Failed
	return res, err
}
