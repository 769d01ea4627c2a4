package frog

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestAxis(t *testing.T) {
	got := Axis(4, 0.5)
	want := []float64{-1, -0.5, 0, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("axis %v, want %v", got, want)
		}
	}
	d, f := Axes(8, 0.25)
	if d[0] != -1 || math.Abs(f[1]-f[0]-0.5) > 1e-12 {
		t.Errorf("axes %v %v", d, f)
	}
}

func TestShift(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := randomField(12, rng)
	for _, d := range []int{0, 1, -3, 5} {
		got := Shift(x, float64(d))
		for k := range x {
			if cmplx.Abs(got[k]-x[mod(k+d, len(x))]) > 1e-12 {
				t.Fatalf("shift %d: sample %d = %v, want %v", d, k, got[k], x[mod(k+d, len(x))])
			}
		}
	}
	back := Shift(Shift(x, 0.37), -0.37)
	for k := range x {
		if cmplx.Abs(back[k]-x[k]) > 1e-12 {
			t.Fatalf("fractional shift round trip: %v vs %v", back[k], x[k])
		}
	}
}

func TestRecentre(t *testing.T) {
	n := 64
	pt := Roll(testPulse(n, 0.01), 17)
	got := Recentre(pt)
	if c := Centroid(got); math.Abs(c-float64(n)/2) > 0.5 {
		t.Errorf("centroid %v after recentre", c)
	}
	if o := overlap(Roll(pt, -18), got); o < 1-1e-12 {
		t.Errorf("recentre is not a pure roll: overlap %v", o)
	}
}

func TestGaussianSeed(t *testing.T) {
	a := GaussianSeed(32, rand.New(rand.NewSource(8)))
	b := GaussianSeed(32, rand.New(rand.NewSource(8)))
	var s float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("seed not reproducible")
		}
		s += real(a[i])*real(a[i]) + imag(a[i])*imag(a[i])
		if ph := cmplx.Phase(a[i]); ph < 0 || ph > 0.2*math.Pi+1e-12 {
			t.Errorf("phase %v out of range", ph)
		}
	}
	if math.Abs(s-1) > 1e-12 {
		t.Errorf("norm² %v", s)
	}
	if c := Centroid(a); math.Abs(c-17) > 1e-6 {
		t.Errorf("centroid %v", c)
	}
}

func TestProfiles(t *testing.T) {
	p := NewProfiles(testPulse(16, 0))
	var peak float64
	for _, v := range p.TimeIntensity {
		peak = math.Max(peak, v)
	}
	if math.Abs(peak-2*math.Pi) > 1e-12 {
		t.Errorf("time peak %v", peak)
	}
	if len(p.FreqIntensity) != 16 || len(p.FreqPhase) != 16 {
		t.Fatal("frequency profile length")
	}
	for _, ph := range p.TimePhase {
		if ph < 0 || ph > 2*math.Pi {
			t.Errorf("phase %v out of range", ph)
		}
	}
}
