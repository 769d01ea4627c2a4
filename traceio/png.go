package traceio

import "image"
import "image/color"
import "image/png"
import "fmt"
import "math"
import "os"

// LoadPNG reads a PNG as a trace of gray levels in [0, 65535]. Color images
// are converted to luminance.
func LoadPNG(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	b := img.Bounds()
	out := make([][]float64, b.Dy())
	for y := range out {
		out[y] = make([]float64, b.Dx())
		for x := range out[y] {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			out[y][x] = float64(g.Y)
		}
	}
	return out, nil
}

// SavePNG writes t as a 16-bit grayscale PNG with its peak at full scale.
// Negative samples are clipped to black.
func SavePNG(path string, t [][]float64) error {
	rows, cols, err := checkTrace(t)
	if err != nil {
		return err
	}
	var peak float64
	for _, row := range t {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite sample %v", ErrCorrupt, v)
			}
			peak = math.Max(peak, v)
		}
	}

	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	if peak > 0 {
		for y, row := range t {
			for x, v := range row {
				img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(65535 * math.Max(v, 0) / peak))})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
