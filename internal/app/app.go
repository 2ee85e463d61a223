package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agbru/fibwindow/internal/cli"
	"github.com/agbru/fibwindow/internal/config"
	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/logging"
	"github.com/agbru/fibwindow/internal/orchestration"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/server"
	"github.com/agbru/fibwindow/internal/service"
	"github.com/agbru/fibwindow/internal/ui"
	"github.com/agbru/fibwindow/pkg/models"
)

// Application represents the fibwindow application instance.
// It encapsulates the configuration and provides methods to run
// the application in various modes (CLI, sequence, server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the evaluation strategies.
	Factory recurrence.EvaluatorFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or
// validation fails. The error is a flag.ErrHelp when help was requested.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args). args[0] is the
//     program name.
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := recurrence.GlobalFactory()

	programName := "fibwindow"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the application based on the configured mode: completion,
// server, REPL, sequence or single-index evaluation.
//
// Parameters:
//   - ctx: The context for cancellation. Timeouts and signals are layered on
//     top of it.
//   - out: The writer for standard output.
//
// Returns:
//   - int: The process exit code (see the errors package).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if err := logging.Configure(a.Config.LogLevel, a.ErrWriter, a.errIsTerminal()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Invalid log level: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.ServerMode:
		return a.runServer(ctx)
	case a.Config.Interactive:
		return a.runREPL(ctx)
	case a.Config.Sequence:
		return a.runSequence(ctx, out)
	default:
		return a.runCalculate(ctx, out)
	}
}

func (a *Application) errIsTerminal() bool {
	f, ok := a.ErrWriter.(*os.File)
	return ok && ui.IsTerminal(f)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server and blocks until ctx is canceled or a
// termination signal arrives.
func (a *Application) runServer(ctx context.Context) int {
	logger := logging.NewDefaultLogger().With(logging.String("component", "server"))
	srv := server.NewServer(a.Factory, a.Config,
		server.WithLogger(logger),
		server.WithVersion(Version),
	)
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode.
func (a *Application) runREPL(ctx context.Context) int {
	ctx, stop := SetupSignals(ctx)
	defer stop()

	repl := cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		HexOutput:   a.Config.HexOutput,
		Recurrence:  a.Config.Recurrence(),
		Description: a.Config.DescribeRecurrence(),
		MaxN:        a.Config.MaxN,
	})
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runSequence prints every term from f(0) to f(n). n is bounded by -max-n
// and by service.MaxSequenceTerms.
func (a *Application) runSequence(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	svc := service.NewEvaluatorService(a.Factory, a.Config.MaxN)
	start := time.Now()
	terms, err := svc.Sequence(ctx, a.Config.N, a.Config.ToEvaluationOptions())
	duration := time.Since(start)
	if err != nil {
		if a.Config.JSONOutput {
			return printJSONError(err, out)
		}
		return apperrors.HandleEvaluationError(err, duration, a.ErrWriter, ui.ColorProvider{})
	}

	switch {
	case a.Config.JSONOutput:
		if code := printJSON(models.SequenceResponse{
			N:          a.Config.N,
			Recurrence: a.recurrenceSpec(),
			Terms:      terms,
			Duration:   duration.String(),
		}, out); code != apperrors.ExitSuccess {
			return code
		}
	case a.Config.Quiet:
		fmt.Fprintln(out, cli.FormatSequenceCompact(terms, a.Config.HexOutput))
	default:
		fmt.Fprintf(out, "Recurrence: %s\n\n", a.Config.DescribeRecurrence())
		cli.DisplaySequence(terms, a.Config.HexOutput, out)
	}

	if a.Config.OutputFile != "" {
		if err := cli.WriteSequenceToFile(a.Config.OutputFile, terms, a.Config.HexOutput); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving sequence: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}
	return apperrors.ExitSuccess
}

// runCalculate evaluates f(n) with the selected strategies and reconciles
// their results.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	evaluators := cli.GetEvaluatorsToRun(a.Config, a.Factory)
	if len(evaluators) == 0 {
		fmt.Fprintf(a.ErrWriter, "No strategy available for %q\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	quietOrJSON := a.Config.JSONOutput || a.Config.Quiet
	if !quietOrJSON {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(evaluators, out)
	}

	progressOut := out
	if quietOrJSON {
		progressOut = io.Discard
	}

	results := orchestration.ExecuteEvaluations(ctx, evaluators, a.Config, progressOut)

	if a.Config.JSONOutput {
		return a.printJSONReport(results, out)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		HexOutput:  a.Config.HexOutput,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
		Recurrence: a.Config.DescribeRecurrence(),
	}
	return a.analyzeResultsWithOutput(results, outputCfg, out)
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.EvaluationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	if outputCfg.Quiet {
		return a.quietResult(results, outputCfg, out)
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, out)
	best := orchestration.FindBestResult(results)
	if best == nil || exitCode != apperrors.ExitSuccess {
		return exitCode
	}

	if outputCfg.HexOutput && !outputCfg.Verbose {
		fmt.Fprintf(out, "f(%s%d%s) [hex] = %s0x%x%s\n",
			ui.ColorMagenta(), a.Config.N, ui.ColorReset(),
			ui.ColorGreen(), best.Value, ui.ColorReset())
	}

	if err := a.saveResultIfNeeded(best, outputCfg); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if outputCfg.OutputFile != "" {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), outputCfg.OutputFile, ui.ColorReset())
	}
	return exitCode
}

// quietResult prints only the value. Errors go to ErrWriter so that stdout
// stays parseable.
func (a *Application) quietResult(results []orchestration.EvaluationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	best := orchestration.FindBestResult(results)
	if best == nil {
		err := orchestration.FirstError(results)
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	if !orchestration.Consistent(results) {
		fmt.Fprintln(a.ErrWriter, "Error: the strategies returned inconsistent results")
		return apperrors.ExitErrorMismatch
	}

	if err := cli.DisplayResultWithConfig(out, best.Value, a.Config.N, best.Duration, best.Name, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (-h or --help was
// used), in which case the program should exit successfully.
//
// Parameters:
//   - err: The error returned by New.
//
// Returns:
//   - bool: True if err is or wraps flag.ErrHelp.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func (a *Application) saveResultIfNeeded(res *orchestration.EvaluationResult, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Value, a.Config.N, res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	return nil
}

func (a *Application) recurrenceSpec() models.RecurrenceSpec {
	return models.RecurrenceSpec{S0: a.Config.S0, S1: a.Config.S1, P: a.Config.P, Q: a.Config.Q}
}

// printJSONReport writes the -json document for a single index. The exit
// code follows the same rules as the text output.
func (a *Application) printJSONReport(results []orchestration.EvaluationResult, out io.Writer) int {
	report := models.EvaluationReport{
		N:          a.Config.N,
		Recurrence: a.recurrenceSpec(),
		Results:    make([]models.EvaluationResult, len(results)),
		Consistent: orchestration.Consistent(results),
	}
	for i, res := range results {
		jr := models.EvaluationResult{
			Algorithm:  res.Name,
			Duration:   res.Duration.String(),
			DurationNS: res.Duration.Nanoseconds(),
			Status:     "success",
		}
		if res.Err != nil {
			jr.Status = "failure"
			jr.Error = res.Err.Error()
		} else {
			value := res.Value
			jr.Value = &value
			jr.Hex = fmt.Sprintf("0x%x", res.Value)
		}
		report.Results[i] = jr
	}

	switch {
	case orchestration.FindBestResult(results) == nil:
		report.ExitCode = apperrors.ExitCodeFor(orchestration.FirstError(results))
	case !report.Consistent:
		report.ExitCode = apperrors.ExitErrorMismatch
	default:
		report.ExitCode = apperrors.ExitSuccess
	}

	if code := printJSON(report, out); code != apperrors.ExitSuccess {
		return code
	}
	return report.ExitCode
}

func printJSONError(err error, out io.Writer) int {
	code := apperrors.ExitCodeFor(err)
	if printJSON(models.ErrorResponse{Error: "evaluation failed", Message: err.Error()}, out) != apperrors.ExitSuccess {
		return apperrors.ExitErrorGeneric
	}
	return code
}

func printJSON(v any, out io.Writer) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
