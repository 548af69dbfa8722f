// This file generates the candidate thresholds measured by a calibration run.

package calibration

import (
	"slices"

	"github.com/agbru/magcalc/internal/config"
	"github.com/agbru/magcalc/internal/magnitude"
)

// ─────────────────────────────────────────────────────────────────────────────
// Karatsuba Threshold Candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateKaratsubaThresholds returns the cutovers measured by a full
// calibration, in ascending order and ending with SchoolbookOnly.
//
// The candidates bracket the hardware estimate: hosts with wide multipliers
// get larger values, since the schoolbook kernel stays competitive there.
func GenerateKaratsubaThresholds() []int {
	thresholds := []int{magnitude.MinKaratsubaThreshold, 16, 24, 32, 48, 64, 80, 96, 128, 160, 192, 256}
	return withEstimate(thresholds)
}

// GenerateQuickKaratsubaThresholds returns a reduced candidate set for a
// short calibration.
func GenerateQuickKaratsubaThresholds() []int {
	return withEstimate([]int{32, 64, 128})
}

func withEstimate(thresholds []int) []int {
	if est := EstimateOptimalKaratsubaThreshold(); !slices.Contains(thresholds, est) {
		thresholds = append(thresholds, est)
	}
	slices.Sort(thresholds)
	return append(thresholds, SchoolbookOnly)
}

// EstimateOptimalKaratsubaThreshold returns the hardware estimate used when
// no profile is available.
func EstimateOptimalKaratsubaThreshold() int {
	return config.EstimateOptimalKaratsubaThreshold()
}

// ─────────────────────────────────────────────────────────────────────────────
// Operand Sizing
// ─────────────────────────────────────────────────────────────────────────────

// DefaultOperandWords is the operand length of a full calibration. It must
// exceed the largest finite candidate several times over so every candidate
// actually recurses.
const DefaultOperandWords = 1024

// QuickOperandWords is the operand length of a quick calibration.
const QuickOperandWords = 512

// DefaultRounds is the number of timed repetitions per candidate; the best
// one is kept.
const DefaultRounds = 3
