package traceio

import (
	"bytes"
	"errors"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func ramp(rows, cols int) [][]float64 {
	t := make([][]float64, rows)
	for i := range t {
		t[i] = make([]float64, cols)
		for j := range t[i] {
			t[i][j] = float64(i*cols+j) / float64(rows*cols-1)
		}
	}
	return t
}

func TestPNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.png")
	in := ramp(5, 7)
	if err := SavePNG(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 || len(out[0]) != 7 {
		t.Fatalf("shape %dx%d", len(out), len(out[0]))
	}
	for i := range in {
		for j := range in[i] {
			if got := out[i][j] / 65535; math.Abs(got-in[i][j]) > 1.0/65535 {
				t.Fatalf("(%d,%d): %v, want %v", i, j, got, in[i][j])
			}
		}
	}
}

func TestF16RoundTrip(t *testing.T) {
	in := ramp(4, 6)
	in[2][3] = 1234.5
	var buf bytes.Buffer
	if err := WriteF16(&buf, in); err != nil {
		t.Fatal(err)
	}
	if got := buf.Len(); got != 12+2*24 {
		t.Fatalf("%d bytes", got)
	}
	out, err := ReadF16(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		for j := range in[i] {
			// binary16 keeps 11 significant bits
			if math.Abs(out[i][j]-in[i][j]) > in[i][j]/1024+1e-7 {
				t.Fatalf("(%d,%d): %v, want %v", i, j, out[i][j], in[i][j])
			}
		}
	}

	path := filepath.Join(t.TempDir(), "trace.f16")
	if err := SaveF16(path, in); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
}

func TestF16RejectsCorruptInput(t *testing.T) {
	var good bytes.Buffer
	if err := WriteF16(&good, ramp(2, 2)); err != nil {
		t.Fatal(err)
	}
	b := good.Bytes()
	inf := append([]byte(nil), b...)
	inf[12], inf[13] = 0x00, 0x7c
	huge := append([]byte(nil), b...)
	huge[4], huge[5], huge[6], huge[7] = 0xff, 0xff, 0xff, 0x7f

	tests := map[string][]byte{
		"magic":     append([]byte("F16X"), b[4:]...),
		"short":     b[:6],
		"truncated": b[:len(b)-1],
		"infinite":  inf,
		"huge":      huge,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadF16(bytes.NewReader(data)); !errors.Is(err, ErrCorrupt) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load("trace.tiff"); !errors.Is(err, ErrFormat) {
		t.Errorf("got %v", err)
	}
}

func TestSaveRejectsRagged(t *testing.T) {
	ragged := [][]float64{{1, 2}, {3}}
	dir := t.TempDir()
	if err := SavePNG(filepath.Join(dir, "a.png"), ragged); !errors.Is(err, ErrCorrupt) {
		t.Errorf("png: %v", err)
	}
	if err := SaveF16(filepath.Join(dir, "a.f16"), ragged); !errors.Is(err, ErrCorrupt) {
		t.Errorf("f16: %v", err)
	}
}

func TestMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.yml")
	if err := SaveMeta(path, Meta{Dt: 0.25, Dv: 0.125}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "ccddt: 0.25") || !strings.Contains(string(raw), "ccddv: 0.125") {
		t.Errorf("sidecar %q", raw)
	}
	m, err := LoadMeta(path)
	if err != nil {
		t.Fatal(err)
	}
	if cal := m.Calibration(); cal.Dt != 0.25 || cal.Dv != 0.125 {
		t.Errorf("calibration %+v", cal)
	}

	for name, doc := range map[string]string{
		"unknown key": "ccddt: 1\nccddv: 1\nexposure: 3\n",
		"missing":     "ccddt: 1\n",
		"negative":    "ccddt: -1\nccddv: 1\n",
	} {
		p := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yml")
		if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadMeta(p); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestSeedRoundTrip(t *testing.T) {
	in := []complex128{1, complex(0.5, -0.25), complex(-1e-9, 3), cmplx.Rect(1, 2)}
	var buf bytes.Buffer
	if err := WriteSeed(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadSeed(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("%d samples", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: %v, want %v", i, out[i], in[i])
		}
	}

	path := filepath.Join(t.TempDir(), "seed.txt")
	if err := SaveSeed(path, in); err != nil {
		t.Fatal(err)
	}
	if out, err = LoadSeed(path); err != nil || len(out) != len(in) {
		t.Errorf("load: %d samples, %v", len(out), err)
	}
}

func TestReadSeed(t *testing.T) {
	out, err := ReadSeed(strings.NewReader("# pulse\n1 0\n\n  0 1  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[1] != complex(0, 1) {
		t.Errorf("got %v", out)
	}
	for name, doc := range map[string]string{
		"empty":     "# nothing\n",
		"one field": "1\n",
		"not float": "1 x\n",
	} {
		if _, err := ReadSeed(strings.NewReader(doc)); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: %v", name, err)
		}
	}
}
