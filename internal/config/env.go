package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// envOverride binds MAGCALC_<key> to the field behind one or more flags.
// The variable is ignored when any of those flags was given explicitly.
type envOverride struct {
	key   string
	flags []string
	apply func(*AppConfig, string)
}

func stringEnv(key string, field func(*AppConfig) *string, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) { *field(c) = v }}
}

func intEnv(key string, field func(*AppConfig) *int, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(c) = n
		}
	}}
}

func boolEnv(key string, field func(*AppConfig) *bool, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		p := field(c)
		*p = parseBoolEnv(v, *p)
	}}
}

// envOverrides lists every supported variable, without the MAGCALC_ prefix.
var envOverrides = []envOverride{
	stringEnv("MODE", func(c *AppConfig) *string { return &c.Mode }, "mode"),
	intEnv("KARATSUBA_THRESHOLD", func(c *AppConfig) *int { return &c.KaratsubaThreshold }, "karatsuba-threshold"),
	intEnv("WORKERS", func(c *AppConfig) *int { return &c.Workers }, "workers"),
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}},
	stringEnv("MEMORY_LIMIT", func(c *AppConfig) *string { return &c.MemoryLimit }, "memory-limit"),
	stringEnv("BATCH", func(c *AppConfig) *string { return &c.BatchFile }, "batch"),
	stringEnv("ADDR", func(c *AppConfig) *string { return &c.Addr }, "addr"),
	stringEnv("CALIBRATION_PROFILE", func(c *AppConfig) *string { return &c.CalibrationProfile }, "calibration-profile"),
	stringEnv("LOG_LEVEL", func(c *AppConfig) *string { return &c.LogLevel }, "log-level"),
	stringEnv("GC_MODE", func(c *AppConfig) *string { return &c.GCMode }, "gc-mode"),
	stringEnv("OUTPUT", func(c *AppConfig) *string { return &c.Output }, "output", "o"),
	boolEnv("VERIFY", func(c *AppConfig) *bool { return &c.Verify }, "verify"),
	boolEnv("HEX", func(c *AppConfig) *bool { return &c.Hex }, "hex"),
	boolEnv("QUIET", func(c *AppConfig) *bool { return &c.Quiet }, "quiet", "q"),
	boolEnv("VERBOSE", func(c *AppConfig) *bool { return &c.Verbose }, "verbose", "v"),
}

// parseBoolEnv accepts true/1/yes and false/0/no in any case; anything
// else keeps current.
func parseBoolEnv(val string, current bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return current
}

// applyEnvOverrides fills config from MAGCALC_ variables for the flags not
// set on the command line: flags win over the environment, which wins over
// defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for _, o := range envOverrides {
		explicit := false
		for _, name := range o.flags {
			explicit = explicit || set[name]
		}
		if explicit {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.key); val != "" {
			o.apply(config, val)
		}
	}
}
