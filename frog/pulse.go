package frog

import "github.com/mjibson/go-dsp/fft"
import "math"
import "math/cmplx"
import "math/rand"

// Axis returns length values centred on zero with the given step, matching
// (k - length/2)·step.
func Axis(length int, step float64) []float64 {
	out := make([]float64, length)
	for k := range out {
		out[k] = (float64(k) - float64(length)/2) * step
	}
	return out
}

// Axes returns the delay axis for time step dt and the reciprocal frequency
// axis with step 1/(n·dt).
func Axes(n int, dt float64) (delays, freqs []float64) {
	return Axis(n, dt), Axis(n, 1/(float64(n)*dt))
}

// Shift returns x advanced by d samples, y[t] = x[t+d], applied as a linear
// phase ramp in the Fourier domain. Integer d is an exact cyclic shift.
func Shift(x []complex128, d float64) []complex128 {
	n := len(x)
	spec := fft.FFT(x)
	for k := range spec {
		f := k
		if k > (n-1)/2 {
			f = k - n
		}
		spec[k] *= cmplx.Exp(complex(0, 2*math.Pi*d*float64(f)/float64(n)))
	}
	return fft.IFFT(spec)
}

// Roll cyclically shifts x by s places: out[k] = x[k-s].
func Roll(x []complex128, s int) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := range out {
		out[k] = x[mod(k-s, n)]
	}
	return out
}

func fftshift(x []complex128) []complex128 {
	return Roll(x, len(x)/2)
}

// Spectrum returns the centred spectrum fftshift(FFT(fftshift(pt))).
func Spectrum(pt []complex128) []complex128 {
	return fftshift(fft.FFT(fftshift(pt)))
}

// Profiles holds display curves of a pulse: intensities scaled to a 2π peak
// and phases shifted into [0, 2π].
type Profiles struct {
	TimeIntensity []float64
	TimePhase     []float64
	FreqIntensity []float64
	FreqPhase     []float64
}

// NewProfiles computes the time and frequency profiles of pt.
func NewProfiles(pt []complex128) Profiles {
	var p Profiles
	p.TimeIntensity, p.TimePhase = profile(pt)
	p.FreqIntensity, p.FreqPhase = profile(Spectrum(pt))
	return p
}

func profile(x []complex128) (intensity, phase []float64) {
	intensity = make([]float64, len(x))
	phase = make([]float64, len(x))
	var peak float64
	for i, v := range x {
		a := cmplx.Abs(v)
		intensity[i] = a * a
		if intensity[i] > peak {
			peak = intensity[i]
		}
		phase[i] = cmplx.Phase(v) + math.Pi
	}
	if peak > 0 {
		for i := range intensity {
			intensity[i] *= 2 * math.Pi / peak
		}
	}
	return
}

// GaussianSeed returns a unit-norm initial guess: a gaussian envelope centred
// at n/2 times a small random phase. A zero phase leaves the iteration stuck on
// real fields; a large one aliases.
func GaussianSeed(n int, rng *rand.Rand) []complex128 {
	pt := make([]complex128, n)
	w := float64(n) / 10
	for k := range pt {
		x := (float64(k) - float64(n)/2) / w
		env := math.Exp(-2 * math.Ln2 * x * x)
		pt[k] = cmplx.Rect(env, 0.2*math.Pi*rng.Float64())
	}
	// the centre sample has unit amplitude, so the norm is never zero
	_ = Normalize(pt)
	return pt
}

// Centroid returns the 1-based index centroid of pt weighted by |pt|⁴.
func Centroid(pt []complex128) float64 {
	var num, den float64
	for k, v := range pt {
		a := cmplx.Abs(v)
		w := a * a * a * a
		num += float64(k+1) * w
		den += w
	}
	if den == 0 {
		return float64(len(pt)) / 2
	}
	return num / den
}

// Recentre rolls pt so that its |pt|⁴ centroid sits at the midpoint index.
// The trace is unaffected; it keeps successive estimates comparable.
func Recentre(pt []complex128) []complex128 {
	s := -int(math.RoundToEven(Centroid(pt) - float64(len(pt))/2))
	return Roll(pt, s)
}
