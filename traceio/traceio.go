package traceio

import "errors"
import "fmt"
import "path/filepath"
import "strings"

// ErrFormat is returned for a file extension no reader is registered for.
var ErrFormat = errors.New("unknownFormat")

// ErrCorrupt is returned when a file does not hold what its format promises.
var ErrCorrupt = errors.New("corruptFile")

// Load reads a trace image, choosing the decoder by file extension:
// .png for 16-bit images and .f16 for half-float raw traces.
func Load(path string) ([][]float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return LoadPNG(path)
	case ".f16":
		return LoadF16(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrFormat, path)
}

func checkTrace(t [][]float64) (rows, cols int, err error) {
	if len(t) == 0 || len(t[0]) == 0 {
		return 0, 0, fmt.Errorf("%w: empty trace", ErrCorrupt)
	}
	for i, row := range t {
		if len(row) != len(t[0]) {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrCorrupt, i, len(row), len(t[0]))
		}
	}
	return len(t), len(t[0]), nil
}
