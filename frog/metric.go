package frog

import "gonum.org/v1/gonum/floats"
import "errors"
import "fmt"
import "math"

var ErrZeroTrace = errors.New("zeroTrace")
var ErrShape = errors.New("shapeMismatch")

// RMS is the root-mean-square difference between the entries of a and b.
func RMS(a, b [][]float64) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	var s float64
	var cnt int
	for i := range a {
		for j := range a[i] {
			d := a[i][j] - b[i][j]
			s += d * d
		}
		cnt += len(a[i])
	}
	if cnt == 0 {
		return 0, nil
	}
	return math.Sqrt(s / float64(cnt)), nil
}

// Alpha returns the scalar a minimising Σ(fm - a·fr)², i.e. Σ(fm·fr)/Σ(fr²).
func Alpha(fm, fr [][]float64) (float64, error) {
	if err := sameShape(fm, fr); err != nil {
		return 0, err
	}
	var num, den float64
	for i := range fm {
		num += floats.Dot(fm[i], fr[i])
		den += floats.Dot(fr[i], fr[i])
	}
	if den == 0 {
		return 0, fmt.Errorf("%w: reconstructed trace is zero", ErrZeroTrace)
	}
	return num / den, nil
}

// Error scales fr by Alpha(fm, fr) in place and returns the FROG error G.
func Error(fm, fr [][]float64) (float64, error) {
	a, err := Alpha(fm, fr)
	if err != nil {
		return 0, err
	}
	for i := range fr {
		floats.Scale(a, fr[i])
	}
	return RMS(fm, fr)
}

// NormalizeMax returns a copy of t scaled to unit peak. t must be nonnegative.
func NormalizeMax(t [][]float64) ([][]float64, error) {
	var peak float64
	for _, row := range t {
		if len(row) == 0 {
			continue
		}
		if m := floats.Max(row); m > peak {
			peak = m
		}
	}
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return nil, ErrZeroTrace
	}
	out := Copy(t)
	for _, row := range out {
		floats.Scale(1/peak, row)
	}
	return out, nil
}

// Copy returns a deep copy of a trace.
func Copy(t [][]float64) [][]float64 {
	out := make([][]float64, len(t))
	for i := range t {
		out[i] = append([]float64(nil), t[i]...)
	}
	return out
}

func sameShape(a, b [][]float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d rows", ErrShape, len(a), len(b))
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return fmt.Errorf("%w: row %d has %d vs %d columns", ErrShape, i, len(a[i]), len(b[i]))
		}
	}
	return nil
}
