package retrieval

import "github.com/neurlang/gofrog/frog"
import "github.com/neurlang/gofrog/prep"
import "context"
import "io"
import "log/slog"
import "strings"
import "time"

// NewLogger returns a JSON line logger at the named level: debug, info, warn
// or error. Anything else means info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv}))
}

// Runner executes retrievals with one configuration snapshot.
type Runner struct {
	cfg Config
	log *slog.Logger
	obs frog.Observer
}

// NewRunner validates cfg and keeps a copy. A nil log discards records and a
// nil obs discards progress.
func NewRunner(cfg Config, log *slog.Logger, obs frog.Observer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if obs == nil {
		obs = frog.Discard
	}
	return &Runner{cfg: cfg, log: log, obs: obs}, nil
}

// Config returns the snapshot the runner works with.
func (r *Runner) Config() Config {
	return r.cfg
}

// Prepare turns a raw image into a trace of the configured size.
func (r *Runner) Prepare(img [][]float64, cal prep.Calibration) (prep.Result, error) {
	log := r.log.With("comp", "prep")
	t0 := time.Now()
	log.Info("preparing trace", "stage", "start", "rows", len(img), "size", r.cfg.Size, "orientation", r.cfg.Orientation.String())
	res, err := prep.Prepare(img, cal, r.cfg.PrepOptions())
	if err != nil {
		log.Error("preparing trace", "stage", "error", "err", err)
		return res, err
	}
	log.Debug("trace prepared",
		"stage", "diag",
		"shortcut", res.Shortcut,
		"vpitch", res.VPitch,
		"tpitch", res.TPitch,
		"center_row", res.CenterRow,
		"center_col", res.CenterCol,
		"aspect", res.Aspect,
		"background", res.Background,
	)
	log.Info("trace prepared", "stage", "finish", "dt", res.Dt, "dur_ms", time.Since(t0).Milliseconds())
	return res, nil
}

// Retrieve runs the configured solver on a prepared trace. A run ending at the
// iteration cap is logged and returned without error.
func (r *Runner) Retrieve(ctx context.Context, trace prep.Trace, seed []complex128) (frog.Result, error) {
	log := r.log.With("comp", r.cfg.Algorithm.String())
	solver, err := r.cfg.Solver(seed, r.obs)
	if err != nil {
		log.Error("building solver", "stage", "error", "err", err)
		return frog.Result{Status: frog.Failed}, err
	}
	t0 := time.Now()
	log.Info("retrieving pulse",
		"stage", "start",
		"size", trace.Size(),
		"tolerance", r.cfg.Tolerance,
		"max_iterations", r.cfg.MaxIterations,
		"domain", r.cfg.Domain.String(),
		"estimator", r.cfg.Estimator.String(),
		"seeded", len(seed) > 0,
	)
	res, err := solver.Run(ctx, trace)
	attrs := []any{
		"status", res.Status.String(),
		"iterations", res.Iterations,
		"error", res.Error,
		"dur_ms", time.Since(t0).Milliseconds(),
	}
	switch {
	case err != nil && res.Status == frog.Cancelled:
		log.Warn("retrieval cancelled", append([]any{"stage", "finish"}, attrs...)...)
	case err != nil:
		log.Error("retrieval failed", append([]any{"stage", "error", "err", err}, attrs...)...)
	case res.Status == frog.MaxIterReached:
		log.Warn("iteration cap reached", append([]any{"stage", "finish"}, attrs...)...)
	default:
		log.Info("retrieval finished", append([]any{"stage", "finish"}, attrs...)...)
	}
	return res, err
}

// Run prepares img and retrieves the pulse behind it.
func (r *Runner) Run(ctx context.Context, img [][]float64, cal prep.Calibration, seed []complex128) (prep.Result, frog.Result, error) {
	p, err := r.Prepare(img, cal)
	if err != nil {
		return p, frog.Result{Status: frog.Failed}, err
	}
	res, err := r.Retrieve(ctx, p.Trace, seed)
	return p, res, err
}
