package prep

import "github.com/neurlang/gofrog/frog"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/stat"
import "errors"
import "fmt"
import "math"

// Orientation fixes the axis convention of a raw image before preparation.
type Orientation int

const (
	OrientAsIs Orientation = iota
	OrientTranspose
	OrientFlip
	OrientTransposeFlip
)

var ErrInvalidTrace = errors.New("invalidTrace")
var ErrEmptyTrace = errors.New("emptyTrace")

func (o Orientation) String() string {
	switch o {
	case OrientAsIs:
		return "none"
	case OrientTranspose:
		return "transpose"
	case OrientFlip:
		return "flip"
	case OrientTransposeFlip:
		return "transpose-flip"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

func (o Orientation) MarshalText() ([]byte, error) {
	if o < OrientAsIs || o > OrientTransposeFlip {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, o)
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	for _, c := range []Orientation{OrientAsIs, OrientTranspose, OrientFlip, OrientTransposeFlip} {
		if string(b) == c.String() {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("%w: orientation %q", frog.ErrUnsupported, b)
}

// Calibration holds the delay step per column and the frequency step per row
// of the raw image. Only their product matters to the algorithm; the values
// themselves label the axes.
type Calibration struct {
	Dt float64
	Dv float64
}

// Options configures Prepare.
type Options struct {
	Size        int
	Orientation Orientation
	// FilterRadius is the low-pass disk radius as a fraction of the larger
	// image dimension. Lower means more extreme filtering.
	FilterRadius float64
	// BlockSize is the side of the square block whose lowest average
	// intensity is taken as background.
	BlockSize int
}

// NewOptions returns the default preparation options.
func NewOptions() Options {
	return Options{
		Size:         128,
		Orientation:  OrientFlip,
		FilterRadius: 0.3,
		BlockSize:    8,
	}
}

// Trace is a prepared N×N trace with its delay step per pixel. Rows index
// frequency, columns index delay.
type Trace struct {
	Data [][]float64
	Dt   float64
}

// Size returns N.
func (t Trace) Size() int {
	return len(t.Data)
}

// Validate checks that t is square, finite, nonnegative and has a positive
// time step.
func (t Trace) Validate() error {
	n := len(t.Data)
	if n < 2 {
		return fmt.Errorf("%w: trace has %d rows", ErrInvalidTrace, n)
	}
	for i, row := range t.Data {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, trace must be %dx%d", ErrInvalidTrace, i, len(row), n, n)
		}
	}
	if err := checkSamples(t.Data); err != nil {
		return err
	}
	if !(t.Dt > 0) || math.IsInf(t.Dt, 0) {
		return fmt.Errorf("%w: time step %v", ErrInvalidTrace, t.Dt)
	}
	return nil
}

// Result is a prepared trace together with the quantities derived on the way.
type Result struct {
	Trace
	// VPitch and TPitch are raw pixels per output sample along frequency and delay.
	VPitch, TPitch float64
	// CenterRow and CenterCol are the 1-based intensity centroid of the spot.
	CenterRow, CenterCol float64
	Aspect               float64
	Background           float64
	// Marginal is the delay marginal of the cleaned image, the intensity
	// autocorrelation of the pulse.
	Marginal []float64
	// Shortcut reports that the input was already sampled correctly and was
	// passed through unchanged.
	Shortcut bool
}

// Prepare cleans, smooths and resamples img onto an N×N grid. img rows are
// frequency bins and columns delay positions before orientation is applied.
func Prepare(img [][]float64, cal Calibration, opt Options) (Result, error) {
	var res Result
	if opt.Size < 2 {
		return res, fmt.Errorf("%w: size %d", ErrInvalidTrace, opt.Size)
	}
	if !(cal.Dt > 0) || !(cal.Dv > 0) || math.IsInf(cal.Dt, 0) || math.IsInf(cal.Dv, 0) {
		return res, fmt.Errorf("%w: calibration dt=%v dv=%v", ErrInvalidTrace, cal.Dt, cal.Dv)
	}
	if err := checkImage(img); err != nil {
		return res, err
	}
	img, err := orient(img, opt.Orientation)
	if err != nil {
		return res, err
	}
	n := opt.Size
	dtdv := cal.Dt * cal.Dv

	rows, cols := len(img), len(img[0])
	colsums := make([]float64, cols)
	rowsums := make([]float64, rows)
	for i, row := range img {
		rowsums[i] = floats.Sum(row)
		floats.Add(colsums, row)
	}
	if floats.Sum(rowsums) == 0 {
		return res, ErrEmptyTrace
	}

	// the sampling identity holds up to rounding of the calibration product
	if rows == n && cols == n && math.Abs(dtdv*float64(n)-1) < 1e-12 {
		res.Trace = Trace{Data: frog.Copy(img), Dt: cal.Dt}
		res.VPitch, res.TPitch, res.Aspect = 1, 1, 1
		res.CenterRow, res.CenterCol = centroid(rowsums), centroid(colsums)
		res.Marginal = colsums
		res.Shortcut = true
		return res, nil
	}

	res.CenterCol = centroid(colsums)
	res.CenterRow = centroid(rowsums)
	width := spread(colsums, res.CenterCol)
	height := spread(rowsums, res.CenterRow)
	if width == 0 || height == 0 {
		return res, fmt.Errorf("%w: spot has zero extent (%vx%v)", ErrInvalidTrace, height, width)
	}
	// a large aspect ratio is a vertical stripe; the output scales both
	// axes so the spot comes out roughly round
	res.Aspect = height / width
	res.VPitch = math.Sqrt(res.Aspect / (float64(n) * dtdv))
	res.TPitch = math.Sqrt(1 / (float64(n) * dtdv * res.Aspect))

	img = lowPass(img, opt.FilterRadius)
	before := peak(img)
	img, res.Background = subtractBackground(img, opt.BlockSize)

	res.Marginal = make([]float64, cols)
	for _, row := range img {
		floats.Add(res.Marginal, row)
	}
	// a flat image leaves only rounding noise behind
	if peak(img) <= 1e-9*before {
		return res, fmt.Errorf("%w: nothing left after background subtraction", ErrEmptyTrace)
	}

	out := rebin(img, n, res.CenterRow, res.CenterCol, res.VPitch, res.TPitch)
	out, err = frog.NormalizeMax(out)
	if err != nil {
		return res, fmt.Errorf("%w: spot falls outside the %dx%d grid", ErrEmptyTrace, n, n)
	}
	res.Trace = Trace{Data: out, Dt: cal.Dt * res.TPitch}
	return res, nil
}

func peak(img [][]float64) float64 {
	var p float64
	for _, row := range img {
		p = math.Max(p, floats.Max(row))
	}
	return p
}

func checkImage(img [][]float64) error {
	if len(img) == 0 || len(img[0]) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidTrace)
	}
	for i, row := range img {
		if len(row) != len(img[0]) {
			return fmt.Errorf("%w: ragged image, row %d has %d columns, want %d", ErrInvalidTrace, i, len(row), len(img[0]))
		}
	}
	return checkSamples(img)
}

func checkSamples(img [][]float64) error {
	for i, row := range img {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: sample (%d,%d) = %v", ErrInvalidTrace, i, j, v)
			}
		}
	}
	return nil
}

func orient(img [][]float64, o Orientation) ([][]float64, error) {
	switch o {
	case OrientAsIs:
		return img, nil
	case OrientTranspose:
		return transpose(img), nil
	case OrientFlip:
		return flipud(img), nil
	case OrientTransposeFlip:
		return flipud(transpose(img)), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, o)
}

func transpose(img [][]float64) [][]float64 {
	out := make([][]float64, len(img[0]))
	for j := range out {
		out[j] = make([]float64, len(img))
		for i := range img {
			out[j][i] = img[i][j]
		}
	}
	return out
}

func flipud(img [][]float64) [][]float64 {
	out := make([][]float64, len(img))
	for i := range img {
		out[len(img)-1-i] = img[i]
	}
	return out
}

// positions returns the 1-based pixel coordinates 1..n.
func positions(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return x
}

func centroid(sums []float64) float64 {
	return stat.Mean(positions(len(sums)), sums)
}

// spread is twice the weighted mean absolute deviation from center.
func spread(sums []float64, center float64) float64 {
	dev := positions(len(sums))
	for i := range dev {
		dev[i] = math.Abs(dev[i] - center)
	}
	return 2 * stat.Mean(dev, sums)
}
