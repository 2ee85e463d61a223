package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	apperrors "github.com/agbru/fibwindow/internal/errors"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file. Absent keys leave the
// corresponding setting untouched.
//
//	n: 50
//	algo: linear
//	s0: 2
//	s1: 1
//	timeout: 30s
//	log_level: debug
type FileConfig struct {
	N        *int64         `yaml:"n"`
	S0       *uint64        `yaml:"s0"`
	S1       *uint64        `yaml:"s1"`
	P        *uint64        `yaml:"p"`
	Q        *uint64        `yaml:"q"`
	Algo     *string        `yaml:"algo"`
	Timeout  *time.Duration `yaml:"timeout"`
	Port     *string        `yaml:"port"`
	MaxN     *int64         `yaml:"max_n"`
	LogLevel *string        `yaml:"log_level"`
	Output   *string        `yaml:"output"`
	Sequence *bool          `yaml:"seq"`
	JSON     *bool          `yaml:"json"`
	Verbose  *bool          `yaml:"verbose"`
	Details  *bool          `yaml:"details"`
	Quiet    *bool          `yaml:"quiet"`
	Hex      *bool          `yaml:"hex"`
	NoColor  *bool          `yaml:"no_color"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected. Every failure is a ConfigError.
//
// Parameters:
//   - path: The path of the YAML file.
//
// Returns:
//   - FileConfig: The decoded settings. Absent keys are nil.
//   - error: A ConfigError if the file cannot be read or decoded.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("reading config file: %v", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	return fc, nil
}

// apply copies the values present in the file into config, skipping the
// settings given on the command line.
func (fc FileConfig) apply(config *AppConfig, explicit map[string]bool) {
	setInt64(&config.N, fc.N, explicit["n"])
	setUint64(&config.S0, fc.S0, explicit["s0"])
	setUint64(&config.S1, fc.S1, explicit["s1"])
	setUint64(&config.P, fc.P, explicit["coef-p"])
	setUint64(&config.Q, fc.Q, explicit["coef-q"])
	setInt64(&config.MaxN, fc.MaxN, explicit["max-n"])
	setString(&config.Algo, fc.Algo, explicit["algo"])
	setString(&config.Port, fc.Port, explicit["port"])
	setString(&config.LogLevel, fc.LogLevel, explicit["log-level"])
	setString(&config.OutputFile, fc.Output, anySet(explicit, "output", "o"))
	setBool(&config.Sequence, fc.Sequence, explicit["seq"])
	setBool(&config.JSONOutput, fc.JSON, explicit["json"])
	setBool(&config.Verbose, fc.Verbose, explicit["v"])
	setBool(&config.Details, fc.Details, anySet(explicit, "d", "details"))
	setBool(&config.Quiet, fc.Quiet, anySet(explicit, "quiet", "q"))
	setBool(&config.HexOutput, fc.Hex, explicit["hex"])
	setBool(&config.NoColor, fc.NoColor, explicit["no-color"])
	if fc.Timeout != nil && !explicit["timeout"] {
		config.Timeout = *fc.Timeout
	}
}

func setInt64(dst *int64, v *int64, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setUint64(dst *uint64, v *uint64, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setString(dst *string, v *string, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}
