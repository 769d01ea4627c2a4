package traceio

import "github.com/neurlang/gofrog/prep"
import "gopkg.in/yaml.v3"
import "fmt"
import "os"

// Meta is the calibration sidecar stored next to a trace image.
type Meta struct {
	// Dt is the delay step per image column.
	Dt float64 `yaml:"ccddt"`
	// Dv is the frequency step per image row.
	Dv float64 `yaml:"ccddv"`
}

func (m Meta) Calibration() prep.Calibration {
	return prep.Calibration{Dt: m.Dt, Dv: m.Dv}
}

// LoadMeta reads a sidecar. Both steps must be present and positive.
func LoadMeta(path string) (Meta, error) {
	var m Meta
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if !(m.Dt > 0) || !(m.Dv > 0) {
		return m, fmt.Errorf("%w: %s: calibration ccddt=%v ccddv=%v", ErrCorrupt, path, m.Dt, m.Dv)
	}
	return m, nil
}

// SaveMeta writes m to path.
func SaveMeta(path string, m Meta) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
