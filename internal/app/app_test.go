package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/magcalc/internal/calibration"
	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/orchestration"
)

// newApp parses args with an isolated calibration profile.
func newApp(t *testing.T, args ...string) *Application {
	t.Helper()
	profile := filepath.Join(t.TempDir(), "profile.json")
	full := append([]string{"magcalc", "-no-color", "-calibration-profile", profile}, args...)
	var errBuf bytes.Buffer
	a, err := New(full, &errBuf)
	if err != nil {
		t.Fatalf("New(%v): %v\n%s", args, err, errBuf.String())
	}
	a.ErrWriter = &errBuf
	return a
}

func TestNewResolvesThresholds(t *testing.T) {
	a := newApp(t, "-op", "add", "1", "2")
	if a.Config.KaratsubaThreshold <= 0 {
		t.Errorf("KaratsubaThreshold = %d, want a resolved value", a.Config.KaratsubaThreshold)
	}
	if a.Config.Workers <= 0 {
		t.Errorf("Workers = %d, want a resolved value", a.Config.Workers)
	}

	explicit := newApp(t, "-karatsuba-threshold", "48", "-op", "add", "1", "2")
	if explicit.Config.KaratsubaThreshold != 48 {
		t.Errorf("explicit threshold overridden: %d", explicit.Config.KaratsubaThreshold)
	}
}

func TestNewUsesCalibrationProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	p := calibration.NewProfile()
	p.KaratsubaThreshold = 52
	if err := p.SaveProfile(path); err != nil {
		t.Fatal(err)
	}

	a, err := New([]string{"magcalc", "-calibration-profile", path, "-op", "add", "1", "2"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Config.KaratsubaThreshold != 52 {
		t.Errorf("KaratsubaThreshold = %d, want the profile's 52", a.Config.KaratsubaThreshold)
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New([]string{"magcalc", "-help"}, &bytes.Buffer{})
	if !IsHelpError(err) {
		t.Errorf("-help: err = %v, want flag.ErrHelp", err)
	}
	if _, err := New([]string{"magcalc", "-op", "pow", "1"}, &bytes.Buffer{}); err == nil || IsHelpError(err) {
		t.Errorf("unknown op: err = %v", err)
	}
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     string
		wantCode int
	}{
		{"quiet product", []string{"-q", "-op", "mul", "0xffffffff", "0xffffffff"}, "18446744065119617025\n", apperrors.ExitSuccess},
		{"quiet hex", []string{"-q", "-hex", "-op", "shl", "1", "40"}, "0x10000000000\n", apperrors.ExitSuccess},
		{"comparison", []string{"-q", "-op", "cmp", "7", "7"}, "0\n", apperrors.ExitSuccess},
		{"verified", []string{"-verify", "-op", "sub", "100", "1"}, "Verified", apperrors.ExitSuccess},
		{"exception", []string{"-op", "rem", "5", "0"}, "", apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, tt.args...)
			var out bytes.Buffer
			if code := a.Run(context.Background(), &out); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\n%s", code, tt.wantCode, out.String())
			}
			if a.Config.Quiet && tt.want != "" && out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRunEvalWritesOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	a := newApp(t, "-q", "-o", path, "-op", "add", "40", "2")
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n42\n") {
		t.Errorf("result file:\n%s", data)
	}
}

const batchYAML = `jobs:
  - {id: sum, op: add, operands: ["1", "2"]}
  - {id: big, op: mul, operands: ["0x100000000", "0x100000000"]}
`

func TestRunBatchFromStdin(t *testing.T) {
	a := newApp(t, "-mode", "batch", "-batch", "-", "-q", "-gc-mode", "aggressive")
	a.In = strings.NewReader(batchYAML)
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	if got, want := out.String(), "3\n18446744073709551616\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunBatchVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte(batchYAML+"  - {id: bad, op: div, operands: [\"1\", \"0\"]}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newApp(t, "-mode", "batch", "-batch", path, "-v", "-workers", "2")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorGeneric {
		t.Fatalf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorGeneric, out.String())
	}
	for _, want := range []string{"1 of 3 job(s) failed", "Go heap"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunBatchMissingFile(t *testing.T) {
	a := newApp(t, "-mode", "batch", "-batch", filepath.Join(t.TempDir(), "absent.yaml"))
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
}

func TestRunREPL(t *testing.T) {
	a := newApp(t, "-mode", "repl")
	a.In = strings.NewReader("mul 6 7\nexit\n")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "42") {
		t.Errorf("REPL output missing the product:\n%s", out.String())
	}
}

func TestRunCompletion(t *testing.T) {
	a := newApp(t, "-completion", "zsh")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "magcalc") {
		t.Errorf("completion script does not name the program:\n%s", out.String())
	}

	a = newApp(t, "-completion", "tcsh")
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Errorf("unsupported shell: exit code = %d", code)
	}
}

func TestPoolLimitWords(t *testing.T) {
	tests := []struct {
		mode, limit string
		want        uint64
	}{
		{config.ModeEval, "", 0},
		{config.ModeBatch, "4KiB", 1024},
		{config.ModeServe, "", 1 << 28},
		{config.ModeServe, "64MiB", 16 << 20},
	}
	for _, tt := range tests {
		got, err := poolLimitWords(config.AppConfig{Mode: tt.mode, MemoryLimit: tt.limit})
		if err != nil || got != tt.want {
			t.Errorf("poolLimitWords(%s, %q) = %d, %v; want %d", tt.mode, tt.limit, got, err, tt.want)
		}
	}
	if _, err := poolLimitWords(config.AppConfig{Mode: config.ModeServe, MemoryLimit: "lots"}); err == nil {
		t.Error("an invalid limit should be rejected")
	}
}

func TestEstimateWorkingSetWords(t *testing.T) {
	jobs := []orchestration.Job{
		{Op: "add", Operands: []string{"1", "0x" + strings.Repeat("f", 64)}},
	}
	if got := estimateWorkingSetWords(jobs); got != 3*(1+9) {
		t.Errorf("estimateWorkingSetWords = %d, want %d", got, 3*(1+9))
	}
	if estimateWorkingSetWords(nil) != 0 {
		t.Error("empty batch should have no working set")
	}
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"-op", "add", "-V"}} {
		if !HasVersionFlag(args) {
			t.Errorf("HasVersionFlag(%v) = false", args)
		}
	}
	if HasVersionFlag([]string{"-v"}) {
		t.Error("-v is verbose, not version")
	}
	var out bytes.Buffer
	PrintVersion(&out)
	if !strings.Contains(out.String(), "magcalc "+Version) {
		t.Errorf("PrintVersion = %q", out.String())
	}
}
