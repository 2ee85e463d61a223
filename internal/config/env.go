package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt64 returns EnvPrefix+key parsed as int64, or defaultVal if unset or
// invalid.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvUint64 returns EnvPrefix+key parsed as uint64, or defaultVal if unset
// or invalid.
func getEnvUint64(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" and "false", "0", "no"
// (case-insensitive). Anything else keeps defaultVal.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration accepts time.ParseDuration formats such as "30s" or "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// anySet reports whether one of the named flags was given on the command line.
func anySet(explicit map[string]bool, names ...string) bool {
	for _, name := range names {
		if explicit[name] {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variables to every setting that was
// not given on the command line. The priority is flags > environment > config
// file > defaults.
//
// Supported environment variables:
//   - FIBWINDOW_N, FIBWINDOW_S0, FIBWINDOW_S1, FIBWINDOW_COEF_P, FIBWINDOW_COEF_Q
//   - FIBWINDOW_ALGO, FIBWINDOW_PORT, FIBWINDOW_OUTPUT, FIBWINDOW_LOG_LEVEL
//   - FIBWINDOW_TIMEOUT (duration), FIBWINDOW_MAX_N
//   - FIBWINDOW_SERVER, FIBWINDOW_JSON, FIBWINDOW_VERBOSE, FIBWINDOW_DETAILS,
//     FIBWINDOW_QUIET, FIBWINDOW_HEX, FIBWINDOW_SEQ, FIBWINDOW_INTERACTIVE,
//     FIBWINDOW_NO_COLOR (bool)
//   - FIBWINDOW_CONFIG, read before the config file is loaded
func applyEnvOverrides(config *AppConfig, explicit map[string]bool) {
	applyNumericOverrides(config, explicit)
	applyStringOverrides(config, explicit)
	applyBooleanOverrides(config, explicit)
}

func applyNumericOverrides(config *AppConfig, explicit map[string]bool) {
	if !explicit["n"] {
		config.N = getEnvInt64("N", config.N)
	}
	if !explicit["s0"] {
		config.S0 = getEnvUint64("S0", config.S0)
	}
	if !explicit["s1"] {
		config.S1 = getEnvUint64("S1", config.S1)
	}
	if !explicit["coef-p"] {
		config.P = getEnvUint64("COEF_P", config.P)
	}
	if !explicit["coef-q"] {
		config.Q = getEnvUint64("COEF_Q", config.Q)
	}
	if !explicit["max-n"] {
		config.MaxN = getEnvInt64("MAX_N", config.MaxN)
	}
	if !explicit["timeout"] {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, explicit map[string]bool) {
	if !explicit["algo"] {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !explicit["port"] {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !anySet(explicit, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !explicit["log-level"] {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
}

func applyBooleanOverrides(config *AppConfig, explicit map[string]bool) {
	if !explicit["server"] {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !explicit["json"] {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !explicit["v"] {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !anySet(explicit, "d", "details") {
		config.Details = getEnvBool("DETAILS", config.Details)
	}
	if !anySet(explicit, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !explicit["hex"] {
		config.HexOutput = getEnvBool("HEX", config.HexOutput)
	}
	if !explicit["seq"] {
		config.Sequence = getEnvBool("SEQ", config.Sequence)
	}
	if !explicit["interactive"] {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
	if !explicit["no-color"] {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}
