// Package orchestration runs one or more evaluators concurrently on the same
// index and reconciles their results.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibwindow/internal/cli"
	"github.com/agbru/fibwindow/internal/config"
	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/ui"
)

// EvaluationResult is the outcome of one evaluator.
type EvaluationResult struct {
	// Name is the display name of the strategy.
	Name string
	// Value is f(n). It is meaningless when Err is set.
	Value uint64
	// Duration is the wall time of the evaluation.
	Duration time.Duration
	// Err is the evaluation error, if any.
	Err error
}

// ProgressBufferMultiplier sizes the progress channel relative to the number
// of evaluators.
const ProgressBufferMultiplier = 5

// ExecuteEvaluations runs every evaluator on cfg.N in its own goroutine and
// returns the results in the order of evaluators. Progress is rendered to
// out while they run.
//
// It manages the lifecycle of the evaluation goroutines, collects their
// results, and coordinates the display of progress updates.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - evaluators: The strategies to execute.
//   - cfg: The application configuration (N, recurrence, verbosity).
//   - out: The io.Writer for displaying progress updates.
//
// Returns:
//   - []EvaluationResult: One result per evaluator, in the same order.
func ExecuteEvaluations(ctx context.Context, evaluators []recurrence.Evaluator, cfg config.AppConfig, out io.Writer) []EvaluationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]EvaluationResult, len(evaluators))
	progressChan := make(chan recurrence.ProgressUpdate, len(evaluators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(evaluators), out)

	opts := cfg.ToEvaluationOptions()
	for i, ev := range evaluators {
		g.Go(func() error {
			startTime := time.Now()
			v, err := ev.Evaluate(ctx, progressChan, i, cfg.N, opts)
			results[i] = EvaluationResult{
				Name: ev.Name(), Value: v, Duration: time.Since(startTime), Err: err,
			}
			// Failures are reported per result; the group never cancels siblings.
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults prints a comparison table and the agreed value,
// and returns the exit code.
//
// Results are sorted successes first, then by duration. Two successful
// strategies returning different values, or a strategy failing with an
// evaluation error while another succeeded, is a mismatch.
//
// Parameters:
//   - results: The results returned by ExecuteEvaluations. Sorted in place.
//   - cfg: The application configuration (N, hex output, details).
//   - out: The writer for the report.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch, or the exit code of the first
//     error when every strategy failed.
func AnalyzeComparisonResults(results []EvaluationResult, cfg config.AppConfig, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var best *EvaluationResult
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())

	for i := range results {
		res := &results[i]
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			successCount++
			if best == nil {
				best = res
			}
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), cli.FormatExecutionDuration(res.Duration), ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the evaluation.\n")
		return apperrors.HandleEvaluationError(firstError, 0, out, ui.ColorProvider{})
	}

	if hasMismatch(results, best.Value) {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the algorithms.\n")
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	cli.DisplayResult(best.Value, cfg.N, best.Duration, cfg.Verbose, cfg.Details, out)
	return apperrors.ExitSuccess
}

func hasMismatch(results []EvaluationResult, agreed uint64) bool {
	for _, res := range results {
		if res.Err == nil && res.Value != agreed {
			return true
		}
		if res.Err != nil && (apperrors.IsOverflow(res.Err) || apperrors.IsInvalidArgument(res.Err)) {
			return true
		}
	}
	return false
}

// Consistent reports whether at least one strategy succeeded and every
// strategy agrees with it.
func Consistent(results []EvaluationResult) bool {
	best := FindBestResult(results)
	return best != nil && !hasMismatch(results, best.Value)
}

// FindBestResult returns the fastest successful result.
//
// Parameters:
//   - results: The evaluation results to search.
//
// Returns:
//   - *EvaluationResult: A pointer into results, or nil if every strategy
//     failed.
func FindBestResult(results []EvaluationResult) *EvaluationResult {
	var best *EvaluationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}

// FirstError returns the first error among results, preferring evaluation
// errors over context errors.
func FirstError(results []EvaluationResult) error {
	var first error
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		if !apperrors.IsContextError(res.Err) {
			return res.Err
		}
		if first == nil {
			first = res.Err
		}
	}
	return first
}
