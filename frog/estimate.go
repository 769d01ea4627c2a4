package frog

import "github.com/mjibson/go-dsp/fft"
import "gonum.org/v1/gonum/blas"
import "gonum.org/v1/gonum/blas/cblas128"
import "gonum.org/v1/gonum/mat"
import "errors"
import "fmt"
import "math"

// Estimator selects how a pulse is extracted from the outer-product matrix.
type Estimator int

const (
	// EstimatorPower performs one power-iteration step EF·EFᴴ·last.
	EstimatorPower Estimator = iota
	// EstimatorSVD takes the leading left singular vector of EF.
	EstimatorSVD
)

var ErrSVD = errors.New("svdFailed")
var ErrDegenerate = errors.New("degenerateField")

func (e Estimator) String() string {
	switch e {
	case EstimatorPower:
		return "power"
	case EstimatorSVD:
		return "svd"
	default:
		return fmt.Sprintf("Estimator(%d)", int(e))
	}
}

// Valid reports whether e names a known estimator.
func (e Estimator) Valid() bool {
	return e == EstimatorPower || e == EstimatorSVD
}

func (e Estimator) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, e)
	}
	return []byte(e.String()), nil
}

func (e *Estimator) UnmarshalText(b []byte) error {
	switch string(b) {
	case "power":
		*e = EstimatorPower
	case "svd":
		*e = EstimatorSVD
	default:
		return fmt.Errorf("%w: estimator %q", ErrUnsupported, b)
	}
	return nil
}

// Estimate extracts an updated pulse from a field-product matrix ef, typically
// one whose amplitudes were replaced by the measured ones. domain and
// antialias must match the Forward call that shaped ef. last is the previous
// pulse, used by the power method. The result has unit norm; ef is not modified.
func Estimate(ef *Matrix, last []complex128, domain Domain, antialias bool, method Estimator) ([]complex128, error) {
	if ef == nil || ef.N < 2 || len(ef.Data) != ef.N*ef.N {
		return nil, fmt.Errorf("%w: malformed field-product matrix", ErrInvalidField)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, method)
	}
	if method == EstimatorPower {
		if len(last) != ef.N {
			return nil, fmt.Errorf("%w: previous pulse has length %d, want %d", ErrInvalidField, len(last), ef.N)
		}
		if err := ValidateField(last); err != nil {
			return nil, err
		}
	}

	m, err := unforward(ef, domain, antialias)
	if err != nil {
		return nil, err
	}

	var pt []complex128
	switch method {
	case EstimatorPower:
		v := last
		if domain == DomainFrequency {
			v = fft.FFT(last)
		}
		pt = powerStep(m, v)
	case EstimatorSVD:
		pt, err = leadingVector(m)
		if err != nil {
			return nil, err
		}
	}
	if domain == DomainFrequency {
		pt = fft.IFFT(pt)
	}

	if err := Normalize(pt); err != nil {
		return nil, fmt.Errorf("%w: estimate vanished", err)
	}
	return pt, nil
}

func vector(x []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(x), Inc: 1, Data: x}
}

// powerStep returns m·mᴴ·v.
func powerStep(m *Matrix, v []complex128) []complex128 {
	g := m.general()
	tmp := make([]complex128, m.N)
	out := make([]complex128, m.N)
	cblas128.Gemv(blas.ConjTrans, 1, g, vector(v), 0, vector(tmp))
	cblas128.Gemv(blas.NoTrans, 1, g, vector(tmp), 0, vector(out))
	return out
}

// leadingVector returns the leading left singular vector of m, computed from
// the real embedding [[Re, -Im], [Im, Re]]. Each complex singular value appears
// twice there and the leading real pair spans e^{iθ}u, so the first column
// gives u up to a global phase.
func leadingVector(m *Matrix) ([]complex128, error) {
	n := m.N
	re := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.Data[i*n+j]
			if math.IsNaN(real(v)) || math.IsNaN(imag(v)) || math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
				return nil, fmt.Errorf("%w: non-finite matrix entry", ErrSVD)
			}
			re.Set(i, j, real(v))
			re.Set(i, j+n, -imag(v))
			re.Set(i+n, j, imag(v))
			re.Set(i+n, j+n, real(v))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(re, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: factorisation did not converge", ErrSVD)
	}
	values := svd.Values(nil)
	if len(values) == 0 || !(values[0] > 0) || math.IsInf(values[0], 0) {
		return nil, fmt.Errorf("%w: empty singular spectrum", ErrSVD)
	}

	var u mat.Dense
	svd.UTo(&u)
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(u.At(i, 0), u.At(i+n, 0))
	}
	return out, nil
}
