package calibration

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

func TestGenerateKaratsubaThresholds(t *testing.T) {
	t.Parallel()
	for name, gen := range map[string]func() []int{
		"full":  GenerateKaratsubaThresholds,
		"quick": GenerateQuickKaratsubaThresholds,
	} {
		t.Run(name, func(t *testing.T) {
			th := gen()
			if th[len(th)-1] != SchoolbookOnly {
				t.Errorf("last candidate = %d, want SchoolbookOnly", th[len(th)-1])
			}
			if !slices.IsSorted(th) {
				t.Errorf("candidates not sorted: %v", th)
			}
			if len(slices.Compact(slices.Clone(th))) != len(th) {
				t.Errorf("duplicate candidates: %v", th)
			}
			if !slices.Contains(th, EstimateOptimalKaratsubaThreshold()) {
				t.Errorf("estimate %d missing from %v", EstimateOptimalKaratsubaThreshold(), th)
			}
			if th[0] < magnitude.MinKaratsubaThreshold {
				t.Errorf("candidate %d below the minimum threshold", th[0])
			}
		})
	}
}

func quietOptions() Options {
	return Options{
		Thresholds:   []int{4, 8, SchoolbookOnly},
		OperandWords: 64,
		Rounds:       2,
		Seed:         42,
		Logger:       logging.NewLogger(&bytes.Buffer{}, "calibration"),
	}
}

func TestCalibrate(t *testing.T) {
	t.Parallel()
	pool := alloc.NewPool(alloc.Options{})
	opts := quietOptions()
	progress := make(chan orchestration.ProgressUpdate, len(opts.Thresholds)*opts.Rounds)

	best, results, err := Calibrate(context.Background(), pool, opts, progress)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	close(progress)

	if !slices.Contains(opts.Thresholds, best) {
		t.Errorf("best = %d, not a candidate", best)
	}
	if len(results) != len(opts.Thresholds) {
		t.Fatalf("got %d results, want %d", len(results), len(opts.Thresholds))
	}
	for _, r := range results {
		if r.Err != nil || r.Duration <= 0 {
			t.Errorf("threshold %d: duration=%v err=%v", r.Threshold, r.Duration, r.Err)
		}
	}

	var updates int
	for u := range progress {
		updates++
		if u.Value <= 0 || u.Value > 1 {
			t.Errorf("progress value %v out of range", u.Value)
		}
	}
	if updates != len(opts.Thresholds)*opts.Rounds {
		t.Errorf("got %d progress updates, want %d", updates, len(opts.Thresholds)*opts.Rounds)
	}
	if live := pool.Stats().LiveWords; live != 0 {
		t.Errorf("LiveWords = %d after calibration, want 0", live)
	}
}

func TestCalibrateCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Calibrate(ctx, alloc.NewPool(alloc.Options{}), quietOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCalibrateOutOfMemory(t *testing.T) {
	t.Parallel()
	pool := alloc.NewPool(alloc.Options{LimitWords: 16})
	_, results, err := Calibrate(context.Background(), pool, quietOptions(), nil)
	if err == nil {
		t.Fatal("expected every candidate to fail under a 16-word limit")
	}
	for _, r := range results {
		var memErr apperrors.MemoryError
		if !errors.As(r.Err, &memErr) {
			t.Errorf("threshold %d: err = %v, want MemoryError", r.Threshold, r.Err)
		}
	}
}

func TestRunCalibration(t *testing.T) {
	ui.InitTheme(true)
	path := filepath.Join(t.TempDir(), "profile.json")
	opts := quietOptions()
	opts.ProfilePath = path

	var out bytes.Buffer
	code := RunCalibration(context.Background(), &out, alloc.NewPool(alloc.Options{}), opts, orchestration.NullProgressReporter{}, nil)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	for _, want := range []string{"Calibration Summary", "(Optimal)", "Schoolbook", "Profile saved to"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	p, loaded := LoadOrCreateProfile(path)
	if !loaded {
		t.Fatal("saved profile could not be loaded")
	}
	if !slices.Contains(opts.Thresholds, p.KaratsubaThreshold) || p.OperandWords != 64 {
		t.Errorf("profile = %+v", p)
	}
}
