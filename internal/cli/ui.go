// Package cli renders evaluation progress and results on a terminal. It
// drives the spinner and progress bar while strategies run, formats results
// and sequences, and hosts the interactive REPL.
package cli

import (
	"fmt"
	"io"
	"math/bits"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/ui"
	"github.com/briandowns/spinner"
)

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
	// SequenceColumns is the number of terms per line in compact sequence
	// output.
	SequenceColumns = 5
)

// FormatExecutionDuration formats d for display: microseconds below one
// millisecond, milliseconds below one second, the default representation
// otherwise. A zero duration is shown as "< 1µs".
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "< 1µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without one.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState holds the latest progress of each concurrent evaluator.
type ProgressState struct {
	progresses    []float64
	numEvaluators int
}

// NewProgressState tracks numEvaluators evaluators, all starting at 0.
func NewProgressState(numEvaluators int) *ProgressState {
	return &ProgressState{
		progresses:    make([]float64, numEvaluators),
		numEvaluators: numEvaluators,
	}
}

// Update records value for the evaluator at index. Out of range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress over all evaluators.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numEvaluators == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numEvaluators)
}

// progressBar renders progress, clamped to [0, 1], as a bar of length runes.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

func progressLabel(numEvaluators int) string {
	if numEvaluators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed, then prints a final 100% line. It is meant to
// run in its own goroutine and calls wg.Done on return.
//
// Parameters:
//   - wg: The WaitGroup signaled when the display stops.
//   - progressChan: The channel of progress updates, closed by the caller.
//   - numEvaluators: The number of strategies reporting on progressChan.
//   - out: The writer for the spinner and the progress bar.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan recurrence.ProgressUpdate, numEvaluators int, out io.Writer) {
	defer wg.Done()
	if numEvaluators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numEvaluators)
	label := progressLabel(numEvaluators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1.0, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.EvaluatorIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// DisplayResult prints f(n) with its size. With details it adds the
// evaluation time, digit count and scientific notation; verbose adds the raw
// and hexadecimal forms.
//
// Parameters:
//   - value: The computed term.
//   - n: The index of the term.
//   - duration: The evaluation time, shown with details.
//   - verbose: Whether to print the raw and hexadecimal forms.
//   - details: Whether to print the timing and size details.
//   - out: The writer for the result.
func DisplayResult(value uint64, n int64, duration time.Duration, verbose, details bool, out io.Writer) {
	digits := strconv.FormatUint(value, 10)
	fmt.Fprintf(out, "Result binary size: %s%d%s bits.\n", ui.ColorCyan(), bits.Len64(value), ui.ColorReset())

	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ui.ColorBold(), ui.ColorReset())
		fmt.Fprintf(out, "Evaluation time       : %s%s%s\n", ui.ColorGreen(), FormatExecutionDuration(duration), ui.ColorReset())
		fmt.Fprintf(out, "Number of digits      : %s%d%s\n", ui.ColorCyan(), len(digits), ui.ColorReset())
		if len(digits) > 6 {
			fmt.Fprintf(out, "Scientific notation   : %s%.6e%s\n", ui.ColorCyan(), float64(value), ui.ColorReset())
		}
	}

	fmt.Fprintf(out, "\n%s--- Evaluated term ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "f(%s%d%s) = %s%s%s\n", ui.ColorMagenta(), n, ui.ColorReset(), ui.ColorGreen(), formatNumberString(digits), ui.ColorReset())
	if verbose {
		fmt.Fprintf(out, "Raw         : %s\n", digits)
		fmt.Fprintf(out, "Hexadecimal : 0x%x\n", value)
	}
}

// DisplaySequence prints terms as "f(i) = v", one per line, starting at
// index 0. hex switches the values to hexadecimal.
func DisplaySequence(terms []uint64, hex bool, out io.Writer) {
	width := len(strconv.Itoa(len(terms) - 1))
	for i, v := range terms {
		fmt.Fprintf(out, "f(%s%*d%s) = %s%s%s\n",
			ui.ColorMagenta(), width, i, ui.ColorReset(),
			ui.ColorGreen(), formatTerm(v, hex), ui.ColorReset())
	}
}

// FormatSequenceCompact joins terms with ", " and wraps every
// SequenceColumns values, for quiet output.
func FormatSequenceCompact(terms []uint64, hex bool) string {
	var b strings.Builder
	for i, v := range terms {
		if i > 0 {
			if i%SequenceColumns == 0 {
				b.WriteString(",\n")
			} else {
				b.WriteString(", ")
			}
		}
		b.WriteString(formatRaw(v, hex))
	}
	return b.String()
}

func formatTerm(v uint64, hex bool) string {
	if hex {
		return formatRaw(v, true)
	}
	return formatNumberString(strconv.FormatUint(v, 10))
}

func formatRaw(v uint64, hex bool) string {
	if hex {
		return "0x" + strconv.FormatUint(v, 16)
	}
	return strconv.FormatUint(v, 10)
}

// formatNumberString inserts thousand separators into a decimal string.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)

	first := n % 3
	if first == 0 {
		first = 3
	}
	builder.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
