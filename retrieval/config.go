package retrieval

import "github.com/neurlang/gofrog/epie"
import "github.com/neurlang/gofrog/frog"
import "github.com/neurlang/gofrog/gp"
import "github.com/neurlang/gofrog/prep"
import "gopkg.in/yaml.v3"
import "context"
import "errors"
import "fmt"
import "io"
import "math"
import "os"

// Algorithm selects the solver.
type Algorithm int

const (
	AlgorithmGP Algorithm = iota
	AlgorithmEPIE
)

// ErrInvalidConfig is returned for values outside their domain.
var ErrInvalidConfig = frog.ErrInvalidConfig

func (a Algorithm) String() string {
	switch a {
	case AlgorithmGP:
		return "gp"
	case AlgorithmEPIE:
		return "epie"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func (a Algorithm) Valid() bool {
	return a == AlgorithmGP || a == AlgorithmEPIE
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %v", frog.ErrUnsupported, a)
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	switch string(b) {
	case "gp":
		*a = AlgorithmGP
	case "epie":
		*a = AlgorithmEPIE
	default:
		return fmt.Errorf("%w: algorithm %q", frog.ErrUnsupported, b)
	}
	return nil
}

type Reseed struct {
	Patience int     `yaml:"patience"`
	MinGain  float64 `yaml:"min_gain"`
}

type Step struct {
	Mean   float64 `yaml:"mean"`
	Spread float64 `yaml:"spread"`
}

// Config is the complete description of one retrieval run.
type Config struct {
	Size          int              `yaml:"size"`
	MaxIterations int              `yaml:"max_iterations"`
	Tolerance     float64          `yaml:"tolerance"`
	Algorithm     Algorithm        `yaml:"algorithm"`
	Domain        frog.Domain      `yaml:"domain"`
	Antialias     bool             `yaml:"antialias"`
	Estimator     frog.Estimator   `yaml:"estimator"`
	Recentre      bool             `yaml:"recentre"`
	Reseed        Reseed           `yaml:"reseed"`
	RandSeed      int64            `yaml:"rand_seed"`
	Orientation   prep.Orientation `yaml:"orientation"`
	FilterRadius  float64          `yaml:"filter_radius"`
	BlockSize     int              `yaml:"block_size"`
	SupportStride int              `yaml:"support_stride"`
	Step          Step             `yaml:"step"`
}

// NewConfig returns the defaults every file is layered on.
func NewConfig() Config {
	g, e, p := gp.NewConfig(), epie.NewConfig(), prep.NewOptions()
	return Config{
		Size:          p.Size,
		MaxIterations: g.MaxIter,
		Tolerance:     g.Tolerance,
		Algorithm:     AlgorithmGP,
		Domain:        g.Domain,
		Antialias:     g.Antialias,
		Estimator:     g.Estimator,
		Recentre:      g.Recentre,
		RandSeed:      g.RandSeed,
		Orientation:   p.Orientation,
		FilterRadius:  p.FilterRadius,
		BlockSize:     p.BlockSize,
		SupportStride: e.SupportStride,
		Step:          Step{Mean: e.StepMean, Spread: e.StepSpread},
	}
}

// Parse reads a YAML document over the defaults and validates the result.
// An empty document yields the defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := NewConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Load parses the YAML file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value and the combination of selectors.
func (c Config) Validate() error {
	if c.Size < 2 {
		return fmt.Errorf("%w: size %d", ErrInvalidConfig, c.Size)
	}
	if !(c.FilterRadius > 0) || math.IsInf(c.FilterRadius, 0) {
		return fmt.Errorf("%w: filter radius %v", ErrInvalidConfig, c.FilterRadius)
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if _, err := c.Orientation.MarshalText(); err != nil {
		return fmt.Errorf("%w: orientation %v", frog.ErrUnsupported, c.Orientation)
	}
	switch c.Algorithm {
	case AlgorithmGP:
		return c.gpConfig(nil).Validate()
	case AlgorithmEPIE:
		// the ptychographic engine has its own update and no product matrix
		if c.Estimator != frog.EstimatorPower {
			return fmt.Errorf("%w: estimator %v with epie", frog.ErrUnsupported, c.Estimator)
		}
		if c.Domain != frog.DomainTime {
			return fmt.Errorf("%w: domain %v with epie", frog.ErrUnsupported, c.Domain)
		}
		if c.Antialias {
			return fmt.Errorf("%w: antialias with epie", frog.ErrUnsupported)
		}
		return c.epieConfig(nil).Validate()
	}
	return fmt.Errorf("%w: %v", frog.ErrUnsupported, c.Algorithm)
}

// PrepOptions returns the preparation options of the run.
func (c Config) PrepOptions() prep.Options {
	return prep.Options{
		Size:         c.Size,
		Orientation:  c.Orientation,
		FilterRadius: c.FilterRadius,
		BlockSize:    c.BlockSize,
	}
}

func (c Config) gpConfig(seed []complex128) gp.Config {
	return gp.Config{
		MaxIter:   c.MaxIterations,
		Tolerance: c.Tolerance,
		Domain:    c.Domain,
		Antialias: c.Antialias,
		Estimator: c.Estimator,
		Recentre:  c.Recentre,
		Reseed:    gp.Reseed{Patience: c.Reseed.Patience, MinGain: c.Reseed.MinGain},
		Seed:      seed,
		RandSeed:  c.RandSeed,
	}
}

func (c Config) epieConfig(seed []complex128) epie.Config {
	return epie.Config{
		MaxIter:       c.MaxIterations,
		Tolerance:     c.Tolerance,
		StepMean:      c.Step.Mean,
		StepSpread:    c.Step.Spread,
		SupportStride: c.SupportStride,
		Seed:          seed,
		RandSeed:      c.RandSeed,
	}
}

// Solver is implemented by gp.Solver and epie.Solver.
type Solver interface {
	Run(ctx context.Context, trace prep.Trace) (frog.Result, error)
}

// Solver builds the solver the configuration selects, starting from seed
// when it is not empty.
func (c Config) Solver(seed []complex128, obs frog.Observer) (Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Algorithm == AlgorithmEPIE {
		return epie.New(c.epieConfig(seed), obs), nil
	}
	return gp.New(c.gpConfig(seed), obs), nil
}
