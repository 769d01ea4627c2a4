package frog

import "github.com/mjibson/go-dsp/fft"
import "errors"
import "fmt"
import "math"
import "math/cmplx"

// Domain selects the convention Forward builds the trace in. The two are
// mathematically dual but differ numerically once discretised.
type Domain int

const (
	// DomainTime forms the field product in delay-delay space.
	DomainTime Domain = iota
	// DomainFrequency forms the field product in frequency-frequency space.
	DomainFrequency
)

var ErrUnsupported = errors.New("unsupportedSelector")
var ErrInvalidField = errors.New("invalidField")

func (d Domain) String() string {
	switch d {
	case DomainTime:
		return "time"
	case DomainFrequency:
		return "frequency"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Valid reports whether d names a known domain.
func (d Domain) Valid() bool {
	return d == DomainTime || d == DomainFrequency
}

func (d Domain) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, d)
	}
	return []byte(d.String()), nil
}

func (d *Domain) UnmarshalText(b []byte) error {
	switch string(b) {
	case "time":
		*d = DomainTime
	case "frequency":
		*d = DomainFrequency
	default:
		return fmt.Errorf("%w: domain %q", ErrUnsupported, b)
	}
	return nil
}

// Forward computes the SHG-FROG trace of the time-domain field pt. It returns
// the trace F and the complex field-product matrix EF with F = |EF|².
// Zero delay and zero frequency both land on index ceil(N/2)-1.
func Forward(pt []complex128, domain Domain, antialias bool) ([][]float64, *Matrix, error) {
	if err := ValidateField(pt); err != nil {
		return nil, nil, err
	}
	n := len(pt)
	c := ceilHalf(n)

	var ef *Matrix
	switch domain {
	case DomainTime:
		ef = outer(pt, pt)
		if antialias {
			ef.maskLag()
		}
		// row n now holds P[n]P[n+k] at column k
		ef.rotateRows(1)
		// fftshift then fliplr: delays ordered ..., -1, 0, 1, ...
		ef.permuteCols(func(k int) int { return mod(n-1-k-n/2, n) })
		ef.fftCols(false)
		ef.rollRows(c - 1)

	case DomainFrequency:
		q := fft.FFT(pt)
		ef = outer(q, q)
		if antialias {
			ef.maskBand()
		}
		ef.permuteCols(func(k int) int { return n - 1 - k })
		ef.rotateRows(1)
		ef.fftCols(true)
		ef.flip()
		ef.rollRows(c)
		ef.rollCols(c - 1)
		ef.transpose()

	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupported, domain)
	}

	return ef.Intensity(), ef, nil
}

// unforward undoes Forward on a copy of ef, leaving the outer-product form.
func unforward(ef *Matrix, domain Domain, antialias bool) (*Matrix, error) {
	n := ef.N
	c := ceilHalf(n)
	m := ef.Clone()

	switch domain {
	case DomainTime:
		m.rollRows(-(c - 1))
		m.fftCols(true)
		// the column permutation is its own inverse
		m.permuteCols(func(k int) int { return mod(n-1-k-n/2, n) })
		m.rotateRows(-1)
		if antialias {
			m.maskLag()
		}

	case DomainFrequency:
		m.transpose()
		m.rollCols(-(c - 1))
		m.rollRows(-c)
		m.flip()
		m.fftCols(false)
		m.rotateRows(-1)
		m.permuteCols(func(k int) int { return n - 1 - k })
		if antialias {
			m.maskBand()
		}

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, domain)
	}
	return m, nil
}

// ValidateField checks that pt has at least two samples, all finite.
func ValidateField(pt []complex128) error {
	if len(pt) < 2 {
		return fmt.Errorf("%w: length %d", ErrInvalidField, len(pt))
	}
	for i, v := range pt {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return fmt.Errorf("%w: non-finite sample at %d", ErrInvalidField, i)
		}
	}
	return nil
}

// Normalize scales pt in place to unit Euclidean norm.
func Normalize(pt []complex128) error {
	var s float64
	for _, v := range pt {
		s += real(v)*real(v) + imag(v)*imag(v)
	}
	nrm := math.Sqrt(s)
	if nrm == 0 || math.IsNaN(nrm) || math.IsInf(nrm, 0) {
		return ErrDegenerate
	}
	for i := range pt {
		pt[i] /= complex(nrm, 0)
	}
	return nil
}
