// Package config provides the configuration management for the fibwindow
// application. It defines the configuration structure, parses command-line
// arguments, layers environment variables and an optional YAML file under the
// flags, and validates the result.
package config

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/rs/zerolog"
)

const (
	// EnvPrefix is the prefix for all environment variables used by fibwindow.
	EnvPrefix = "FIBWINDOW_"
)

// Default configuration values.
const (
	// DefaultN is the default index to evaluate.
	DefaultN int64 = 10
	// DefaultTimeout is the default evaluation timeout.
	DefaultTimeout = 1 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo is the default strategy selection.
	DefaultAlgo = recurrence.AlgoAll
	// DefaultMaxN is the default upper bound on n accepted by the server and
	// the REPL. Recurrences that never overflow would otherwise let a single
	// request spin for a long time.
	DefaultMaxN int64 = 100_000_000
	// DefaultLogLevel is the default zerolog level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the index of the term to evaluate.
	N int64
	// S0 and S1 are the seeds f(0) and f(1).
	S0, S1 uint64
	// P and Q are the coefficients of f(n) = P*f(n-1) + Q*f(n-2).
	P, Q uint64
	// Sequence prints every term from f(0) to f(n).
	Sequence bool
	// Verbose prints the value with thousands separators.
	Verbose bool
	// Details prints a detailed analysis of the result.
	Details bool
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Algo is "all" or a registered strategy name.
	Algo string
	// JSONOutput prints results as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the server listening port.
	Port string
	// MaxN is the largest index the server, the REPL and -seq accept. 0
	// disables the limit.
	MaxN int64
	// NoColor disables ANSI colors. NO_COLOR is honored as well.
	NoColor bool
	// OutputFile, if set, receives a copy of the result.
	OutputFile string
	// Quiet prints only the value, for scripts.
	Quiet bool
	// HexOutput prints the value in hexadecimal.
	HexOutput bool
	// Interactive starts the REPL.
	Interactive bool
	// Completion is the shell to generate a completion script for.
	Completion string
	// ConfigFile is the optional YAML configuration file.
	ConfigFile string
	// LogLevel is the zerolog level name.
	LogLevel string
}

// Recurrence returns the recurrence described by the seeds and coefficients.
func (c AppConfig) Recurrence() recurrence.Recurrence {
	return recurrence.New(c.S0, c.S1, c.P, c.Q)
}

// DescribeRecurrence returns a one-line description such as
// "f(n) = 1*f(n-1) + 1*f(n-2), f(0) = 0, f(1) = 1".
func (c AppConfig) DescribeRecurrence() string {
	return fmt.Sprintf("f(n) = %d*f(n-1) + %d*f(n-2), f(0) = %d, f(1) = %d", c.P, c.Q, c.S0, c.S1)
}

// ToEvaluationOptions converts the configuration into recurrence.Options.
func (c AppConfig) ToEvaluationOptions() recurrence.Options {
	r := c.Recurrence()
	return recurrence.Options{Recurrence: &r}
}

// Validate checks the semantic consistency of the configuration. It returns a
// ConfigError. The index itself is not checked here: a negative n is an
// invalid argument reported by the evaluator.
//
// Parameters:
//   - availableAlgos: The registered strategy names. "all" is always valid.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MaxN < 0 {
		return apperrors.NewConfigError("max-n cannot be negative: %d", c.MaxN)
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != recurrence.AlgoAll && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	if c.ServerMode {
		if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
			return apperrors.NewConfigError("invalid port %q", c.Port)
		}
	}
	return nil
}

// ParseIndex parses a decimal index. Negative values are returned as is so
// that the evaluator rejects them. Anything that is not an integer in the
// int64 range yields an error wrapping recurrence.ErrInvalidArgument.
//
// Parameters:
//   - s: The index as typed by the user.
//
// Returns:
//   - int64: The parsed index.
//   - error: An invalid-argument error if s is not an int64.
func ParseIndex(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer index", recurrence.ErrInvalidArgument, s)
	}
	return n, nil
}

// ParseConfig parses the command-line arguments into an AppConfig, then
// applies the YAML file and environment variables to every setting that was
// not given on the command line, and validates the result.
//
// The index may be given as the -n flag or as a single positional argument,
// anywhere among the flags. A negative positional such as "-5" is taken as
// the index rather than an unknown flag. Arguments after "--" are always
// positional.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: A slice of strings representing the command-line arguments
//     (typically os.Args[1:]).
//   - errorWriter: An io.Writer where parsing errors and usage information
//     will be printed.
//   - availableAlgos: A slice of valid strategy names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing, the config file or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Strategy to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.Int64Var(&config.N, "n", DefaultN, "Index n of the term to evaluate (also accepted as a positional argument).")
	fs.Uint64Var(&config.S0, "s0", 1, "Seed f(0).")
	fs.Uint64Var(&config.S1, "s1", 1, "Seed f(1).")
	fs.Uint64Var(&config.P, "coef-p", 1, "Coefficient p of f(n) = p*f(n-1) + q*f(n-2).")
	fs.Uint64Var(&config.Q, "coef-q", 1, "Coefficient q of f(n) = p*f(n-1) + q*f(n-2).")
	fs.BoolVar(&config.Sequence, "seq", false, "Print every term from f(0) to f(n).")
	fs.BoolVar(&config.Verbose, "v", false, "Display the value with thousands separators.")
	fs.BoolVar(&config.Details, "d", false, "Display performance details and result metadata.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.Int64Var(&config.MaxN, "max-n", DefaultMaxN, "Largest index accepted by the server, the REPL and -seq (0 for no limit).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.HexOutput, "hex", false, "Display result in hexadecimal format.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.StringVar(&config.ConfigFile, "config", "", "Path to a YAML configuration file.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (trace, debug, info, warn, error, disabled).")

	setCustomUsage(fs)

	args, negatives, tail := splitArgs(fs, args)
	positionals, err := parseInterspersed(fs, args)
	if err != nil {
		return AppConfig{}, err
	}
	positionals = append(append(negatives, positionals...), tail...)

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	switch {
	case len(positionals) > 1:
		return AppConfig{}, apperrors.NewConfigError("expected at most one index argument, got %d: %s", len(positionals), strings.Join(positionals, " "))
	case len(positionals) == 1:
		if explicit["n"] {
			return AppConfig{}, apperrors.NewConfigError("index given both as -n and as argument %q", positionals[0])
		}
		n, err := ParseIndex(positionals[0])
		if err != nil {
			return AppConfig{}, err
		}
		config.N = n
		explicit["n"] = true
	}

	if !explicit["config"] {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		fileCfg, err := LoadFile(config.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		fileCfg.apply(&config, explicit)
	}

	applyEnvOverrides(&config, explicit)

	config.Algo = strings.ToLower(config.Algo)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}

var negativeIndexPattern = regexp.MustCompile(`^-[0-9]+$`)

// splitArgs prepares args for parseInterspersed. It removes the arguments
// that look like negative integers and are not the value of a preceding flag,
// so that the flag package does not report them as unknown flags. Everything
// after a "--" terminator is returned in tail, untouched.
func splitArgs(fs *flag.FlagSet, args []string) (rest, negatives, tail []string) {
	rest = make([]string, 0, len(args))
	expectValue := false
	for i, arg := range args {
		if expectValue {
			rest = append(rest, arg)
			expectValue = false
			continue
		}
		if arg == "--" {
			tail = args[i+1:]
			break
		}
		if negativeIndexPattern.MatchString(arg) {
			negatives = append(negatives, arg)
			continue
		}
		if strings.HasPrefix(arg, "-") && !strings.Contains(arg, "=") {
			if f := fs.Lookup(strings.TrimLeft(arg, "-")); f != nil && !isBoolFlag(f) {
				expectValue = true
			}
		}
		rest = append(rest, arg)
	}
	return rest, negatives, tail
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}

// parseInterspersed parses flags that may appear after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positionals []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positionals, nil
		}
		positionals = append(positionals, args[0])
		args = args[1:]
	}
}
