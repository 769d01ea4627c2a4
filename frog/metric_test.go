package frog

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func randomTrace(n int, rng *rand.Rand) [][]float64 {
	t := make([][]float64, n)
	for i := range t {
		t[i] = make([]float64, n)
		for j := range t[i] {
			t[i][j] = rng.Float64()
		}
	}
	return t
}

func TestRMS(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := randomTrace(6, rng)
	g, err := RMS(a, Copy(a))
	if err != nil || g != 0 {
		t.Fatalf("identical arrays: %v %v", g, err)
	}
	b := Copy(a)
	b[2][3] += 0.6
	g, err = RMS(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Sqrt(0.36 / 36); math.Abs(g-want) > 1e-12 {
		t.Errorf("rms %v, want %v", g, want)
	}
	if _, err := RMS(a, b[:5]); !errors.Is(err, ErrShape) {
		t.Errorf("shape: %v", err)
	}
}

func TestAlphaIsLeastSquares(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	fr := randomTrace(8, rng)
	fm := Copy(fr)
	for _, row := range fm {
		for j := range row {
			row[j] *= 2.5
		}
	}
	a, err := Alpha(fm, fr)
	if err != nil || math.Abs(a-2.5) > 1e-12 {
		t.Fatalf("alpha %v %v", a, err)
	}

	fm = randomTrace(8, rng)
	a, err = Alpha(fm, fr)
	if err != nil {
		t.Fatal(err)
	}
	cost := func(s float64) float64 {
		var c float64
		for i := range fm {
			for j := range fm[i] {
				d := fm[i][j] - s*fr[i][j]
				c += d * d
			}
		}
		return c
	}
	for _, d := range []float64{-1e-3, 1e-3, -0.1, 0.1} {
		if cost(a+d) <= cost(a) {
			t.Errorf("alpha %v is not the minimiser: cost(%v) <= cost(alpha)", a, a+d)
		}
	}

	zero := make([][]float64, 8)
	for i := range zero {
		zero[i] = make([]float64, 8)
	}
	if _, err := Alpha(fm, zero); !errors.Is(err, ErrZeroTrace) {
		t.Errorf("zero fr: %v", err)
	}
}

func TestErrorScalesInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fm := randomTrace(5, rng)
	fr := Copy(fm)
	for _, row := range fr {
		for j := range row {
			row[j] *= 0.1
		}
	}
	g, err := Error(fm, fr)
	if err != nil || g > 1e-12 {
		t.Fatalf("g=%v err=%v", g, err)
	}
	if math.Abs(fr[1][1]-fm[1][1]) > 1e-12 {
		t.Errorf("fr not rescaled: %v vs %v", fr[1][1], fm[1][1])
	}
}

func TestNormalizeMax(t *testing.T) {
	in := [][]float64{{0, 2}, {4, 1}}
	out, err := NormalizeMax(in)
	if err != nil {
		t.Fatal(err)
	}
	if out[1][0] != 1 || out[0][1] != 0.5 {
		t.Errorf("got %v", out)
	}
	if in[1][0] != 4 {
		t.Error("input modified")
	}
	if _, err := NormalizeMax([][]float64{{0, 0}, {0, 0}}); !errors.Is(err, ErrZeroTrace) {
		t.Errorf("zero: %v", err)
	}
}
