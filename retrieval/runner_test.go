package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/neurlang/gofrog/frog"
	"github.com/neurlang/gofrog/prep"
)

func syntheticTrace(t *testing.T, n int) [][]float64 {
	t.Helper()
	pt := make([]complex128, n)
	w := float64(n) / 10
	for k := range pt {
		x := (float64(k) - float64(n)/2) / w
		pt[k] = cmplx.Rect(math.Exp(-2*math.Ln2*x*x), 0.2*x*x)
	}
	f, _, err := frog.Forward(pt, frog.DomainTime, false)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func events(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, ev)
	}
	return out
}

func TestRunnerRun(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmGP, AlgorithmEPIE} {
		t.Run(alg.String(), func(t *testing.T) {
			cfg := NewConfig()
			cfg.Algorithm = alg
			cfg.Size = 32
			cfg.Orientation = prep.OrientAsIs
			cfg.MaxIterations = 5
			cfg.Tolerance = 0

			var buf bytes.Buffer
			var notes int
			r, err := NewRunner(cfg, NewLogger(&buf, "debug"), frog.ObserverFunc(func(frog.Progress) { notes++ }))
			if err != nil {
				t.Fatal(err)
			}
			p, res, err := r.Run(context.Background(), syntheticTrace(t, 32), prep.Calibration{Dt: 2, Dv: 1.0 / 64}, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !p.Shortcut || p.Dt != 2 {
				t.Errorf("preparation shortcut %v, dt %v", p.Shortcut, p.Dt)
			}
			if res.Status != frog.MaxIterReached || res.Iterations != 5 || notes != 5 {
				t.Errorf("status %v after %d iterations, %d notifications", res.Status, res.Iterations, notes)
			}
			if step := res.Delays[1] - res.Delays[0]; math.Abs(step-2) > 1e-12 {
				t.Errorf("delay step %v", step)
			}

			var stages []string
			for _, ev := range events(t, &buf) {
				stages = append(stages, ev["comp"].(string)+"/"+ev["stage"].(string))
			}
			want := []string{"prep/start", "prep/diag", "prep/finish", alg.String() + "/start", alg.String() + "/finish"}
			if strings.Join(stages, " ") != strings.Join(want, " ") {
				t.Errorf("log stages %v, want %v", stages, want)
			}
		})
	}
}

func TestRunnerLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRunner(NewConfig(), NewLogger(&buf, "info"), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, res, err := r.Run(context.Background(), [][]float64{{1, 2}, {3}}, prep.Calibration{Dt: 1, Dv: 1}, nil)
	if !errors.Is(err, prep.ErrInvalidTrace) || res.Status != frog.Failed {
		t.Fatalf("err %v, status %v", err, res.Status)
	}
	evs := events(t, &buf)
	last := evs[len(evs)-1]
	if last["level"] != "ERROR" || last["stage"] != "error" {
		t.Errorf("last event %v", last)
	}
}

func TestRunnerCancelled(t *testing.T) {
	cfg := NewConfig()
	cfg.Size = 16
	cfg.Tolerance = 0
	r, err := NewRunner(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trace := prep.Trace{Data: syntheticTrace(t, 16), Dt: 1}
	res, err := r.Retrieve(ctx, trace, nil)
	if !errors.Is(err, context.Canceled) || res.Status != frog.Cancelled {
		t.Fatalf("err %v, status %v", err, res.Status)
	}
}

func TestNewRunnerValidates(t *testing.T) {
	cfg := NewConfig()
	cfg.Size = 0
	if _, err := NewRunner(cfg, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v", err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output %q", buf.String())
	}
}
