// Package calibration measures the Karatsuba cutover on the running host and
// persists it as a profile consulted on start-up.
package calibration

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/agbru/magcalc/internal/config"
)

// CurrentProfileVersion is bumped whenever the meaning of a stored field
// changes; profiles of another version are ignored.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the profile file name in the home directory.
const DefaultProfileFileName = config.DefaultProfileName

// SchoolbookOnly is the threshold that disables Karatsuba multiplication.
const SchoolbookOnly = math.MaxInt32

// CalibrationProfile records a calibration run and the host it ran on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"`
	CPUFeatures []string `json:"cpu_features,omitempty"`

	KaratsubaThreshold int    `json:"karatsuba_threshold"`
	OperandWords       int    `json:"operand_words"`
	CalibrationTime    string `json:"calibration_time"`
}

// NewProfile returns a profile describing the current host.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CPUFeatures:    config.CPUFeatures(),
	}
}

// IsValid reports whether p was produced on hardware matching the current
// host by the current profile format.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		slices.Equal(p.CPUFeatures, config.CPUFeatures())
}

// IsStale reports whether p is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	threshold := fmt.Sprintf("%d words", p.KaratsubaThreshold)
	if p.KaratsubaThreshold >= SchoolbookOnly {
		threshold = "schoolbook only"
	}
	features := "none"
	if len(p.CPUFeatures) > 0 {
		features = strings.Join(p.CPUFeatures, ",")
	}
	return fmt.Sprintf("Calibration profile v%d (%s): Karatsuba=%s on %d-word operands; %s/%s, %d CPUs, features %s, %s",
		p.ProfileVersion, p.CalibratedAt.Format(time.RFC3339), threshold, p.OperandWords,
		p.GOOS, p.GOARCH, p.NumCPU, features, p.GoVersion)
}

// SaveProfile writes p as indented JSON. The file is written next to path
// and renamed into place.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding calibration profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path, or returns a fresh profile
// for the current host when the file is missing, unreadable or invalid.
// The boolean reports whether the profile was loaded.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns the profile path in the home directory, or
// in the working directory when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// MaxProfileAge is the age after which a cached profile is ignored.
const MaxProfileAge = 30 * 24 * time.Hour

// LoadCachedCalibration fills a zero Karatsuba threshold of cfg from the
// profile at path (the default path when empty). It reports whether a
// valid, fresh profile was applied; explicit settings are kept either way.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	p, loaded := LoadOrCreateProfile(path)
	if !loaded || p.IsStale(MaxProfileAge) || p.KaratsubaThreshold <= 0 {
		return cfg, false
	}
	if cfg.KaratsubaThreshold == 0 {
		cfg.KaratsubaThreshold = p.KaratsubaThreshold
	}
	return cfg, true
}
