package traceio

import "bufio"
import "fmt"
import "io"
import "os"
import "strconv"
import "strings"

// ReadSeed parses a field with one "re im" pair per line. Blank lines and
// lines starting with # are skipped.
func ReadSeed(r io.Reader) ([]complex128, error) {
	var pt []complex128
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		f := strings.Fields(s)
		if len(f) != 2 {
			return nil, fmt.Errorf("%w: line %d: want 2 values, got %d", ErrCorrupt, line, len(f))
		}
		re, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		im, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		pt = append(pt, complex(re, im))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(pt) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrCorrupt)
	}
	return pt, nil
}

// WriteSeed writes pt in the format ReadSeed accepts.
func WriteSeed(w io.Writer, pt []complex128) error {
	bw := bufio.NewWriter(w)
	for _, v := range pt {
		fmt.Fprintf(bw, "%s %s\n",
			strconv.FormatFloat(real(v), 'g', -1, 64),
			strconv.FormatFloat(imag(v), 'g', -1, 64))
	}
	return bw.Flush()
}

// LoadSeed reads the seed file at path.
func LoadSeed(path string) ([]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pt, err := ReadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pt, nil
}

// SaveSeed writes pt to path.
func SaveSeed(path string, pt []complex128) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSeed(f, pt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
