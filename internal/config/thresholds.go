package config

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Threshold resolution chain (highest priority first):
//   1. CLI flag (--karatsuba-threshold)
//   2. Environment variable (MAGCALC_KARATSUBA_THRESHOLD)
//   3. Cached calibration profile (~/.magcalc_calibration.json)
//   4. Adaptive hardware estimation (this file)
//   5. magnitude.DefaultKaratsubaThreshold

// ApplyAdaptiveThresholds fills the settings left at their zero default from
// hardware characteristics. User-specified values are preserved.
func ApplyAdaptiveThresholds(cfg AppConfig) AppConfig {
	if cfg.KaratsubaThreshold == 0 {
		cfg.KaratsubaThreshold = EstimateOptimalKaratsubaThreshold()
	}
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers()
	}
	return cfg
}

// EstimateOptimalKaratsubaThreshold provides a heuristic estimate of the
// Karatsuba cutover without running benchmarks. Hosts with wide multipliers
// keep the schoolbook method competitive for longer operands.
func EstimateOptimalKaratsubaThreshold() int {
	wordSize := 32 << (^uint(0) >> 63)

	switch {
	case wordSize == 32:
		return 48
	case cpu.X86.HasBMI2 && cpu.X86.HasADX:
		return 96
	case cpu.ARM64.HasASIMD:
		return 88
	default:
		return 80
	}
}

// EstimateOptimalWorkers returns the number of concurrent executions used by
// batch mode when --workers is not set.
func EstimateOptimalWorkers() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU <= 2:
		return numCPU
	case numCPU <= 16:
		return numCPU - 1 // Leave one core for the reporter and the runtime
	default:
		return 16
	}
}

// CPUFeatures lists the instruction set extensions relevant to word
// arithmetic that the running CPU supports.
func CPUFeatures() []string {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			ok   bool
		}{
			{"adx", cpu.X86.HasADX},
			{"bmi2", cpu.X86.HasBMI2},
			{"avx2", cpu.X86.HasAVX2},
			{"avx512f", cpu.X86.HasAVX512F},
		} {
			if f.ok {
				features = append(features, f.name)
			}
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "asimd")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "sve")
		}
	}
	return features
}
