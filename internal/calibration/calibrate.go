package calibration

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/words"
)

// Options configures a calibration run. Zero fields take the defaults of a
// full calibration.
type Options struct {
	// Thresholds are the candidate cutovers, SchoolbookOnly included.
	Thresholds []int
	// OperandWords is the length of both random operands.
	OperandWords int
	// Rounds is the number of timed multiplications per candidate.
	Rounds int
	// Seed makes the operands reproducible.
	Seed uint64
	// ProfilePath is where the profile is saved. Empty skips saving.
	ProfilePath string
	// Logger receives one debug line per candidate.
	Logger logging.Logger
}

// QuickOptions returns the options of a short calibration.
func QuickOptions() Options {
	return Options{
		Thresholds:   GenerateQuickKaratsubaThresholds(),
		OperandWords: QuickOperandWords,
		Rounds:       1,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Thresholds) == 0 {
		o.Thresholds = GenerateKaratsubaThresholds()
	}
	if o.OperandWords <= 0 {
		o.OperandWords = DefaultOperandWords
	}
	if o.Rounds <= 0 {
		o.Rounds = DefaultRounds
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = logging.NewDefaultLogger()
	}
	return o
}

// calibrationResult is the best time measured for one candidate.
type calibrationResult struct {
	Threshold int
	Duration  time.Duration
	Err       error
}

// randomOperand returns n random words with a non-zero leading word.
func randomOperand(rng *rand.Rand, n int) magnitude.Magnitude {
	w := make([]words.Word, n)
	for i := range w {
		w[i] = words.Word(rng.Uint32())
	}
	w[0] |= 1 << (words.Size - 1)
	return magnitude.FromWords(w)
}

// Calibrate times the product of two random operands once per candidate
// threshold and returns the fastest candidate. Every product is checked
// against the first one, so a miscomputing path fails the run instead of
// winning it. Progress is reported per candidate on progress, which may be
// nil; Calibrate does not close it.
func Calibrate(ctx context.Context, a alloc.Allocator, opts Options, progress chan<- orchestration.ProgressUpdate) (int, []calibrationResult, error) {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	x := randomOperand(rng, opts.OperandWords)
	y := randomOperand(rng, opts.OperandWords)

	var (
		reference []words.Word
		results   []calibrationResult
	)
	best := -1
	for i, threshold := range opts.Thresholds {
		if err := ctx.Err(); err != nil {
			return 0, results, err
		}
		calc := magnitude.NewCalculator(a, magnitude.WithKaratsubaThreshold(threshold))
		res := calibrationResult{Threshold: threshold, Duration: time.Duration(math.MaxInt64)}
		for round := range opts.Rounds {
			start := time.Now()
			product, mulErr := calc.Multiply(x, y)
			elapsed := time.Since(start)
			if mulErr != nil {
				res.Err = mulErr
				break
			}
			if reference == nil {
				reference = append([]words.Word(nil), product.Words()...)
			} else if !slices.Equal(product.Words(), reference) {
				calc.Release(product)
				return 0, results, fmt.Errorf("threshold %d: product differs from the reference product", threshold)
			}
			calc.Release(product)
			res.Duration = min(res.Duration, elapsed)
			if progress != nil {
				progress <- orchestration.ProgressUpdate{TaskIndex: i, Value: float64(round+1) / float64(opts.Rounds)}
			}
		}
		if res.Err != nil {
			res.Duration = 0
		} else if best < 0 || res.Duration < results[best].Duration {
			best = i
		}
		opts.Logger.Debug("calibration candidate measured",
			logging.Int("threshold", threshold),
			logging.Duration("duration", res.Duration),
			logging.Bool("failed", res.Err != nil))
		results = append(results, res)
	}
	if best < 0 {
		return 0, results, fmt.Errorf("every calibration candidate failed: %w", results[0].Err)
	}
	return results[best].Threshold, results, nil
}

// RunCalibration runs a calibration, prints a summary to out and saves the
// resulting profile. It returns the process exit code.
func RunCalibration(ctx context.Context, out io.Writer, a alloc.Allocator, opts Options, reporter orchestration.ProgressReporter, colors apperrors.ColorProvider) int {
	opts = opts.withDefaults()
	fmt.Fprintf(out, "--- Calibration ---\nMeasuring %d Karatsuba thresholds on %d-word operands (%d rounds each).\n",
		len(opts.Thresholds), opts.OperandWords, opts.Rounds)

	progressChan := make(chan orchestration.ProgressUpdate, len(opts.Thresholds)*opts.Rounds)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(opts.Thresholds), out)

	start := time.Now()
	best, results, err := Calibrate(ctx, a, opts, progressChan)
	elapsed := time.Since(start)
	close(progressChan)
	displayWg.Wait()

	if err != nil {
		return apperrors.HandleCalculationError(err, elapsed, out, colors)
	}
	printCalibrationResults(out, results, best)

	profile := NewProfile()
	profile.KaratsubaThreshold = best
	profile.OperandWords = opts.OperandWords
	profile.CalibrationTime = elapsed.String()
	if opts.ProfilePath != "" {
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			opts.Logger.Error("saving calibration profile", err, logging.String("path", opts.ProfilePath))
			fmt.Fprintf(out, "%sWarning:%s %v\n", colors.Yellow(), colors.Reset(), err)
		} else {
			fmt.Fprintf(out, "Profile saved to %s\n", opts.ProfilePath)
		}
	}
	printCalibrationOutput(profile, out)
	return apperrors.ExitSuccess
}
