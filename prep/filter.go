package prep

import "github.com/mjibson/go-dsp/fft"
import "math"
import "math/cmplx"

// lowPass keeps the spatial frequencies inside a centred disk of radius
// rho·max(rows, cols) and returns the magnitude of the filtered image.
func lowPass(img [][]float64, rho float64) [][]float64 {
	rows, cols := len(img), len(img[0])
	limit := math.Max(float64(rows), float64(cols)) * rho

	spec := fft.FFT2Real(img)
	for u := 0; u < rows; u++ {
		// position of bin u once the spectrum is fftshifted
		ii := (u + rows/2) % rows
		for w := 0; w < cols; w++ {
			jj := (w + cols/2) % cols
			if math.Hypot(float64(ii+1)-float64(rows)/2, float64(jj+1)-float64(cols)/2) >= limit {
				spec[u][w] = 0
			}
		}
	}

	back := fft.IFFT2(spec)
	out := make([][]float64, rows)
	for i := range back {
		out[i] = make([]float64, cols)
		for j, v := range back[i] {
			out[i][j] = cmplx.Abs(v)
		}
	}
	return out
}

// subtractBackground takes the lowest average over all cyclic b×b blocks as
// the background level, subtracts it and clips at zero.
func subtractBackground(img [][]float64, b int) ([][]float64, float64) {
	rows, cols := len(img), len(img[0])
	if b < 1 {
		b = 1
	}

	// blocks[r][c] = Σ img[r-i][c-j] for i, j in 1..b, cyclically
	horiz := make([][]float64, rows)
	for r := range img {
		horiz[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			var s float64
			for j := 1; j <= b; j++ {
				s += img[r][wrap(c-j, cols)]
			}
			horiz[r][c] = s
		}
	}
	lowest := math.Inf(1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var s float64
			for i := 1; i <= b; i++ {
				s += horiz[wrap(r-i, rows)][c]
			}
			lowest = math.Min(lowest, s)
		}
	}
	background := lowest / float64(b*b)

	out := make([][]float64, rows)
	for r := range img {
		out[r] = make([]float64, cols)
		for c, v := range img[r] {
			out[r][c] = math.Max(v-background, 0)
		}
	}
	return out, background
}

// rebin averages every source pixel into the nearest of n×n output bins.
// Bins nobody lands in stay zero.
func rebin(img [][]float64, n int, centerRow, centerCol, vpitch, tpitch float64) [][]float64 {
	sum := make([][]float64, n)
	count := make([][]int, n)
	for i := range sum {
		sum[i] = make([]float64, n)
		count[i] = make([]int, n)
	}

	half := float64(n) / 2
	for ii, row := range img {
		r := int(math.RoundToEven(half+(float64(ii+1)-centerRow)/vpitch)) - 1
		if r < 0 || r >= n {
			continue
		}
		for jj, v := range row {
			c := int(math.RoundToEven(half+(float64(jj+1)-centerCol)/tpitch)) - 1
			if c < 0 || c >= n {
				continue
			}
			sum[r][c] += v
			count[r][c]++
		}
	}

	for r := range sum {
		for c := range sum[r] {
			if count[r][c] > 0 {
				sum[r][c] /= float64(count[r][c])
			}
		}
	}
	return sum
}

func wrap(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
