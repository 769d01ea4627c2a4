package frog

import "github.com/mjibson/go-dsp/fft"
import "gonum.org/v1/gonum/blas/cblas128"

// Matrix is a dense row-major N×N complex matrix. After Forward, rows index
// frequency and columns index delay.
type Matrix struct {
	N    int
	Data []complex128
}

// NewMatrix allocates a zero N×N matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{N: n, Data: make([]complex128, n*n)}
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) complex128 {
	return m.Data[i*m.N+j]
}

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v complex128) {
	m.Data[i*m.N+j] = v
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.N)
	copy(c.Data, m.Data)
	return c
}

// Intensity returns |m|² elementwise as a row-major slice of rows.
func (m *Matrix) Intensity() [][]float64 {
	out := make([][]float64, m.N)
	for i := range out {
		out[i] = make([]float64, m.N)
		for j, v := range m.Data[i*m.N : (i+1)*m.N] {
			out[i][j] = real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return out
}

func (m *Matrix) general() cblas128.General {
	return cblas128.General{Rows: m.N, Cols: m.N, Stride: m.N, Data: m.Data}
}

func outer(a, b []complex128) *Matrix {
	m := NewMatrix(len(a))
	for i := range a {
		row := m.Data[i*m.N : (i+1)*m.N]
		for j := range b {
			row[j] = a[i] * b[j]
		}
	}
	return m
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// ceilHalf is ceil(n/2); zero delay and zero frequency sit at ceilHalf(n)-1.
func ceilHalf(n int) int {
	return (n + 1) / 2
}

// rotateRows rolls row r left by sign*r places: out[r][k] = in[r][k+sign*r].
func (m *Matrix) rotateRows(sign int) {
	n := m.N
	tmp := make([]complex128, n)
	for r := 0; r < n; r++ {
		row := m.Data[r*n : (r+1)*n]
		for k := range tmp {
			tmp[k] = row[mod(k+sign*r, n)]
		}
		copy(row, tmp)
	}
}

// permuteCols sets out[r][k] = in[r][src(k)].
func (m *Matrix) permuteCols(src func(k int) int) {
	n := m.N
	idx := make([]int, n)
	for k := range idx {
		idx[k] = src(k)
	}
	tmp := make([]complex128, n)
	for r := 0; r < n; r++ {
		row := m.Data[r*n : (r+1)*n]
		for k, s := range idx {
			tmp[k] = row[s]
		}
		copy(row, tmp)
	}
}

// rollRows is numpy roll along axis 0: out[r] = in[r-s].
func (m *Matrix) rollRows(s int) {
	n := m.N
	out := make([]complex128, len(m.Data))
	for r := 0; r < n; r++ {
		copy(out[r*n:(r+1)*n], m.Data[mod(r-s, n)*n:(mod(r-s, n)+1)*n])
	}
	m.Data = out
}

// rollCols is numpy roll along axis 1: out[r][k] = in[r][k-s].
func (m *Matrix) rollCols(s int) {
	n := m.N
	m.permuteCols(func(k int) int { return mod(k-s, n) })
}

// flip reverses both axes.
func (m *Matrix) flip() {
	d := m.Data
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
}

func (m *Matrix) transpose() {
	n := m.N
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Data[i*n+j], m.Data[j*n+i] = m.Data[j*n+i], m.Data[i*n+j]
		}
	}
}

// fftCols transforms every column, inverse selecting the normalised IFFT.
func (m *Matrix) fftCols(inverse bool) {
	n := m.N
	col := make([]complex128, n)
	for k := 0; k < n; k++ {
		for r := 0; r < n; r++ {
			col[r] = m.Data[r*n+k]
		}
		var out []complex128
		if inverse {
			out = fft.IFFT(col)
		} else {
			out = fft.FFT(col)
		}
		for r := 0; r < n; r++ {
			m.Data[r*n+k] = out[r]
		}
	}
}

// maskLag zeroes entries whose implied delay |j-i| reaches ceil(N/2); those
// terms only appear through cyclic wrap-around.
func (m *Matrix) maskLag() {
	n := m.N
	c := ceilHalf(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j-i >= c || i-j >= c {
				m.Data[i*n+j] = 0
			}
		}
	}
}

// maskBand zeroes products P(v1)P(v2) whose sum frequency falls outside the
// representable band. For even N the Nyquist bin counts as positive.
func (m *Matrix) maskBand() {
	n := m.N
	vmax := n / 2
	vmin := vmax + 1
	for r := 1; r <= vmax; r++ {
		for j := vmax - (r - 1); j <= vmax; j++ {
			m.Data[r*n+j] = 0
		}
	}
	for r := vmin; r < n; r++ {
		for j := vmin; j < vmin+(n-r) && j < n; j++ {
			m.Data[r*n+j] = 0
		}
	}
}
