package traceio

import "github.com/x448/float16"
import "bufio"
import "encoding/binary"
import "fmt"
import "io"
import "math"
import "os"

// f16Magic opens every half-float trace file. It is followed by the row and
// column counts as little-endian uint32 and then rows×cols IEEE 754 binary16
// samples, row-major, little-endian.
const f16Magic = "F16T"

// maxF16Samples bounds the allocation a corrupt header can request.
const maxF16Samples = 1 << 26

// WriteF16 encodes t in the half-float trace format. Values beyond the
// binary16 range saturate to infinity, which ReadF16 rejects.
func WriteF16(w io.Writer, t [][]float64) error {
	rows, cols, err := checkTrace(t)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(f16Magic)
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(rows))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(cols))
	bw.Write(hdr[:])
	var b [2]byte
	for _, row := range t {
		for _, v := range row {
			binary.LittleEndian.PutUint16(b[:], float16.Fromfloat32(float32(v)).Bits())
			if _, err := bw.Write(b[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadF16 decodes a half-float trace.
func ReadF16(r io.Reader) ([][]float64, error) {
	br := bufio.NewReader(r)
	var hdr [12]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrCorrupt, err)
	}
	if string(hdr[:4]) != f16Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, hdr[:4])
	}
	rows := int(binary.LittleEndian.Uint32(hdr[4:]))
	cols := int(binary.LittleEndian.Uint32(hdr[8:]))
	if rows == 0 || cols == 0 || rows > maxF16Samples/cols {
		return nil, fmt.Errorf("%w: bad shape %dx%d", ErrCorrupt, rows, cols)
	}

	out := make([][]float64, rows)
	var b [2]byte
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			if _, err := io.ReadFull(br, b[:]); err != nil {
				return nil, fmt.Errorf("%w: truncated at sample (%d,%d): %v", ErrCorrupt, i, j, err)
			}
			v := float64(float16.Frombits(binary.LittleEndian.Uint16(b[:])).Float32())
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite sample (%d,%d)", ErrCorrupt, i, j)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// LoadF16 reads the half-float trace file at path.
func LoadF16(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadF16(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SaveF16 writes t to path in the half-float trace format.
func SaveF16(path string, t [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteF16(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
