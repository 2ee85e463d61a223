package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/fibwindow/internal/ui"
)

// OutputConfig selects how a result is presented.
type OutputConfig struct {
	// OutputFile is the path to save the result to; empty disables it.
	OutputFile string
	// HexOutput prints values in hexadecimal.
	HexOutput bool
	// Quiet prints only the value.
	Quiet bool
	// Verbose adds the raw and hexadecimal forms.
	Verbose bool
	// Details adds the timing and size analysis.
	Details bool
	// Recurrence describes the evaluated recurrence in the file header.
	Recurrence string
}

// WriteResultToFile saves f(n) with a commented header to
// config.OutputFile, creating parent directories as needed. It does nothing
// when no file is configured.
//
// Parameters:
//   - value: The computed term.
//   - n: The index of the term.
//   - duration: The evaluation time recorded in the header.
//   - algo: The name of the strategy that produced value.
//   - config: The output configuration (file path, hex, recurrence).
//
// Returns:
//   - error: An error if the directory or the file cannot be written.
func WriteResultToFile(value uint64, n int64, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := writeResultFile(file, value, n, duration, algo, config, time.Now()); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeResultFile(w io.Writer, value uint64, n int64, duration time.Duration, algo string, config OutputConfig, generated time.Time) error {
	digits := strconv.FormatUint(value, 10)
	recurrence := config.Recurrence
	if recurrence == "" {
		recurrence = "fibonacci"
	}

	header := fmt.Sprintf("# Recurrence Evaluation Result\n"+
		"# Generated: %s\n"+
		"# Recurrence: %s\n"+
		"# Algorithm: %s\n"+
		"# Duration: %s\n"+
		"# N: %d\n"+
		"# Digits: %d\n\n",
		generated.Format(time.RFC3339), recurrence, algo, duration, n, len(digits))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	var err error
	if config.HexOutput {
		_, err = fmt.Fprintf(w, "f(%d) [hex] =\n0x%x\n", n, value)
	} else {
		_, err = fmt.Fprintf(w, "f(%d) =\n%s\n", n, digits)
	}
	return err
}

// FormatQuietResult returns the bare value, for scripting.
func FormatQuietResult(value uint64, hexOutput bool) string {
	return formatRaw(value, hexOutput)
}

// DisplayQuietResult prints FormatQuietResult followed by a newline.
func DisplayQuietResult(out io.Writer, value uint64, hexOutput bool) {
	fmt.Fprintln(out, FormatQuietResult(value, hexOutput))
}

// DisplayResultWithConfig prints a single result according to config and
// saves it to a file when one is configured.
//
// Parameters:
//   - out: The writer for the result.
//   - value: The computed term.
//   - n: The index of the term.
//   - duration: The evaluation time.
//   - algo: The name of the strategy that produced value.
//   - config: The output configuration (quiet, verbose, file path).
//
// Returns:
//   - error: An error if saving the file fails.
func DisplayResultWithConfig(out io.Writer, value uint64, n int64, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, value, config.HexOutput)
	} else {
		DisplayResult(value, n, duration, config.Verbose, config.Details, out)
		if config.HexOutput && !config.Verbose {
			fmt.Fprintf(out, "f(%d) [hex] = %s0x%x%s\n", n, ui.ColorGreen(), value, ui.ColorReset())
		}
	}

	if config.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(value, n, duration, algo, config); err != nil {
		return err
	}
	if !config.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
	}
	return nil
}

// WriteSequenceToFile saves terms, one per line, to path.
func WriteSequenceToFile(path string, terms []uint64, hex bool) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	for i, v := range terms {
		if _, err := fmt.Fprintf(file, "%d %s\n", i, formatRaw(v, hex)); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	return nil
}
