package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/recurrence"
)

var availableAlgos = []string{"linear", "memo"}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibwindow", []string{}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != DefaultN {
			t.Errorf("Expected default N %d, got %d", DefaultN, cfg.N)
		}
		if cfg.Algo != "all" {
			t.Errorf("Expected default Algo 'all', got %s", cfg.Algo)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Expected default Timeout %v, got %v", DefaultTimeout, cfg.Timeout)
		}
		if cfg.S0 != 1 || cfg.S1 != 1 || cfg.P != 1 || cfg.Q != 1 {
			t.Errorf("Expected Fibonacci defaults, got s0=%d s1=%d p=%d q=%d", cfg.S0, cfg.S1, cfg.P, cfg.Q)
		}
		if v, _ := cfg.Recurrence().Evaluate(10); v != 89 {
			t.Errorf("default recurrence f(10) = %d", v)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-n", "50",
			"-algo", "LINEAR",
			"-v",
			"-timeout", "10s",
			"-s0", "2", "-s1", "1",
			"-server",
			"-port", "9090",
			"-log-level", "debug",
		}
		cfg, err := ParseConfig("fibwindow", args, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 50 || cfg.Algo != "linear" || !cfg.Verbose || cfg.Timeout != 10*time.Second {
			t.Errorf("Unexpected config: %+v", cfg)
		}
		if cfg.S0 != 2 || cfg.S1 != 1 || !cfg.ServerMode || cfg.Port != "9090" || cfg.LogLevel != "debug" {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("PositionalIndex", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibwindow", []string{"-algo", "memo", "42", "-json"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 42 || !cfg.JSONOutput || cfg.Algo != "memo" {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("NegativePositionalIndex", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibwindow", []string{"-q", "-5"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != -5 || !cfg.Quiet {
			t.Errorf("Expected N=-5 in quiet mode, got %+v", cfg)
		}
	})

	t.Run("NegativeFlagValueIsNotIndex", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibwindow", []string{"-n", "-3"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != -3 {
			t.Errorf("Expected N=-3, got %d", cfg.N)
		}
	})

	t.Run("NonIntegerIndex", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("fibwindow", []string{"abc"}, io.Discard, availableAlgos)
		if !errors.Is(err, recurrence.ErrInvalidArgument) {
			t.Fatalf("Expected ErrInvalidArgument, got %v", err)
		}
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorInvalidArg {
			t.Errorf("Expected exit code %d, got %d", apperrors.ExitErrorInvalidArg, apperrors.ExitCodeFor(err))
		}
	})

	t.Run("TooManyPositionals", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("fibwindow", []string{"1", "2"}, io.Discard, availableAlgos)
		var cfgErr apperrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
	})

	t.Run("IndexTwice", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("fibwindow", []string{"-n", "3", "4"}, io.Discard, availableAlgos)
		var cfgErr apperrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
	})

	t.Run("Terminator", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			args []string
			n    int64
		}{
			{"index after terminator", []string{"-q", "--", "5"}, 5},
			{"negative after terminator", []string{"--", "-5"}, -5},
			{"terminator as flag value", []string{"-o", "--", "7"}, 7},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg, err := ParseConfig("fibwindow", tt.args, io.Discard, availableAlgos)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if cfg.N != tt.n {
					t.Errorf("Expected N=%d, got %d", tt.n, cfg.N)
				}
			})
		}
	})

	t.Run("FlagsAfterTerminatorArePositional", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]string{{"--", "5", "-v"}, {"--", "5", "-x"}} {
			_, err := ParseConfig("fibwindow", args, io.Discard, availableAlgos)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("ParseConfig(%v): expected a positional count ConfigError, got %v", args, err)
			}
		}
	})

	t.Run("InvalidAlgo", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("fibwindow", []string{"-algo", "naive"}, io.Discard, availableAlgos)
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("Expected config error, got %v", err)
		}
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("fibwindow", []string{"-bogus"}, io.Discard, availableAlgos); err == nil {
			t.Error("Expected error for unknown flag")
		}
	})

	t.Run("Help", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("fibwindow", []string{"-h"}, io.Discard, availableAlgos)
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("Expected flag.ErrHelp, got %v", err)
		}
	})
}

func TestParseConfigEnvOverrides(t *testing.T) {
	env := map[string]string{
		"FIBWINDOW_N":         "20",
		"FIBWINDOW_ALGO":      "memo",
		"FIBWINDOW_S0":        "0",
		"FIBWINDOW_COEF_P":    "2",
		"FIBWINDOW_TIMEOUT":   "2m",
		"FIBWINDOW_MAX_N":     "500",
		"FIBWINDOW_JSON":      "yes",
		"FIBWINDOW_HEX":       "1",
		"FIBWINDOW_LOG_LEVEL": "warn",
		"FIBWINDOW_QUIET":     "not-a-bool",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := ParseConfig("fibwindow", []string{"-algo", "linear"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 20 || cfg.S0 != 0 || cfg.P != 2 || cfg.MaxN != 500 {
		t.Errorf("numeric env overrides not applied: %+v", cfg)
	}
	if cfg.Algo != "linear" {
		t.Errorf("flag should win over env, got algo %q", cfg.Algo)
	}
	if cfg.Timeout != 2*time.Minute || !cfg.JSONOutput || !cfg.HexOutput || cfg.LogLevel != "warn" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Quiet {
		t.Error("an invalid boolean must keep the default")
	}
}

func TestParseConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fibwindow.yaml")
	content := "n: 30\nalgo: memo\ns0: 2\ns1: 1\ntimeout: 45s\nhex: true\nmax_n: 1000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIBWINDOW_N", "31")

	cfg, err := ParseConfig("fibwindow", []string{"-config", path, "-s1", "3"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 31 {
		t.Errorf("env should win over file, got N=%d", cfg.N)
	}
	if cfg.Algo != "memo" || cfg.S0 != 2 || cfg.Timeout != 45*time.Second || !cfg.HexOutput || cfg.MaxN != 1000 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.S1 != 3 {
		t.Errorf("flag should win over file, got s1=%d", cfg.S1)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
		t.Errorf("missing file: expected ConfigError, got %v", err)
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("threshold: 4096\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(unknown); apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
		t.Errorf("unknown key: expected ConfigError, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFile(empty)
	if err != nil || fc.N != nil {
		t.Errorf("empty file: got %+v, %v", fc, err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := AppConfig{Timeout: time.Second, Algo: "all", Port: "8080", LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, true},
		{"negative max-n", func(c *AppConfig) { c.MaxN = -1 }, true},
		{"unknown algo", func(c *AppConfig) { c.Algo = "fast" }, true},
		{"known algo", func(c *AppConfig) { c.Algo = "memo" }, false},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, true},
		{"bad port in server mode", func(c *AppConfig) { c.ServerMode = true; c.Port = "http" }, true},
		{"bad port outside server mode", func(c *AppConfig) { c.Port = "http" }, false},
		{"negative index is not a config error", func(c *AppConfig) { c.N = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate(availableAlgos)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cfgErr apperrors.ConfigError
			if err != nil && !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{" 92 ", 92, false},
		{"-1", -1, false},
		{"1.5", 0, true},
		{"ten", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseIndex(tt.in)
		if tt.wantErr {
			if !errors.Is(err, recurrence.ErrInvalidArgument) {
				t.Errorf("ParseIndex(%q): expected ErrInvalidArgument, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseIndex(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestToEvaluationOptions(t *testing.T) {
	t.Parallel()
	cfg := AppConfig{S0: 0, S1: 1, P: 2, Q: 1}
	opts := cfg.ToEvaluationOptions()
	if opts.Recurrence == nil {
		t.Fatal("expected a recurrence")
	}
	if v, err := opts.Recurrence.Evaluate(10); err != nil || v != 2378 {
		t.Errorf("Pell P(10) = %d, %v", v, err)
	}
}

func TestDescribeRecurrence(t *testing.T) {
	t.Parallel()
	cfg := AppConfig{S0: 0, S1: 1, P: 2, Q: 1}
	want := "f(n) = 2*f(n-1) + 1*f(n-2), f(0) = 0, f(1) = 1"
	if got := cfg.DescribeRecurrence(); got != want {
		t.Errorf("DescribeRecurrence() = %q, want %q", got, want)
	}
}
