package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibwindow/internal/config"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/ui"
)

// GetEvaluatorsToRun returns the evaluators selected by cfg.Algo: every
// registered strategy in name order for "all", otherwise the single named
// one. An unknown name yields nil.
//
// Parameters:
//   - cfg: The application configuration holding the -algo selection.
//   - factory: The strategy registry.
//
// Returns:
//   - []recurrence.Evaluator: The strategies to run, possibly empty.
func GetEvaluatorsToRun(cfg config.AppConfig, factory recurrence.EvaluatorFactory) []recurrence.Evaluator {
	if cfg.Algo == recurrence.AlgoAll {
		names := factory.List()
		evaluators := make([]recurrence.Evaluator, 0, len(names))
		for _, name := range names {
			if ev, err := factory.Get(name); err == nil {
				evaluators = append(evaluators, ev)
			}
		}
		return evaluators
	}
	if ev, err := factory.Get(cfg.Algo); err == nil {
		return []recurrence.Evaluator{ev}
	}
	return nil
}

// PrintExecutionConfig shows the target term, the recurrence and the
// runtime environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Evaluating %sf(%d)%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.N, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Recurrence: %s%s%s.\n", ui.ColorCyan(), cfg.DescribeRecurrence(), ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode announces a single evaluation or a comparison.
func PrintExecutionMode(evaluators []recurrence.Evaluator, out io.Writer) {
	var mode string
	switch len(evaluators) {
	case 0:
		mode = "No strategy selected"
	case 1:
		mode = fmt.Sprintf("Single evaluation with the %s%s%s strategy",
			ui.ColorGreen(), evaluators[0].Name(), ui.ColorReset())
	default:
		mode = fmt.Sprintf("Parallel comparison of %d strategies", len(evaluators))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
