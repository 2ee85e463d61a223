package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/ui"
)

// REPLConfig configures an interactive session.
type REPLConfig struct {
	// DefaultAlgo is the strategy used by calc; "all" or empty picks the
	// first registered one.
	DefaultAlgo string
	// Timeout bounds each command.
	Timeout time.Duration
	// HexOutput prints values in hexadecimal.
	HexOutput bool
	// Recurrence is the recurrence evaluated by every command. The zero
	// value selects Fibonacci.
	Recurrence recurrence.Recurrence
	// Description is shown by the status command.
	Description string
	// MaxN is the largest accepted index. 0 disables the limit.
	MaxN int64
}

// REPL is an interactive evaluation session.
type REPL struct {
	config      REPLConfig
	factory     recurrence.EvaluatorFactory
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session reading from stdin and writing to stdout.
//
// Parameters:
//   - factory: The strategy registry used by "calc" and "compare".
//   - config: The session settings (default strategy, recurrence, limits).
//
// Returns:
//   - *REPL: A session ready for Start.
func NewREPL(factory recurrence.EvaluatorFactory, config REPLConfig) *REPL {
	current := config.DefaultAlgo
	if names := factory.List(); (current == "" || current == recurrence.AlgoAll) && len(names) > 0 {
		current = names[0]
	}
	if config.Recurrence.Combine == nil {
		config.Recurrence = recurrence.Fibonacci()
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &REPL{
		config:      config,
		factory:     factory,
		currentAlgo: current,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput replaces the input reader.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput replaces the output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start runs the session until exit, end of input or cancellation of ctx.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		fmt.Fprint(r.out, ui.ColorGreen()+"rec> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(ctx, line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s  %sFibonacci Window - Interactive Mode%s         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

var replCommands = []struct{ usage, desc string }{
	{"calc <n>", "Evaluate f(n) with the current strategy"},
	{"seq <n>", "Print f(0) through f(n)"},
	{"algo <name>", "Change strategy"},
	{"compare <n>", "Evaluate f(n) with every strategy"},
	{"list", "List available strategies"},
	{"hex", "Toggle hexadecimal display"},
	{"theme <name>", "Switch color theme (" + strings.Join(ui.ThemeNames, ", ") + ")"},
	{"status", "Display current configuration"},
	{"help", "Display this help"},
	{"exit / quit", "Exit interactive mode"},
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, c := range replCommands {
		fmt.Fprintf(r.out, "  %s%-13s%s - %s\n", ui.ColorYellow(), c.usage, ui.ColorReset(), c.desc)
	}
}

// processCommand runs one line of input and reports whether the session
// continues.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "calc", "c":
		if n, ok := r.indexArg("calc", args); ok {
			r.evaluate(ctx, n)
		}
	case "seq", "s":
		if n, ok := r.indexArg("seq", args); ok {
			r.sequence(ctx, n)
		}
	case "algo", "a":
		r.cmdAlgo(args)
	case "compare", "cmp":
		if n, ok := r.indexArg("compare", args); ok {
			r.compare(ctx, n)
		}
	case "list", "ls":
		r.cmdList()
	case "hex":
		r.config.HexOutput = !r.config.HexOutput
		fmt.Fprintf(r.out, "Hexadecimal display: %s%s%s\n", ui.ColorGreen(), onOff(r.config.HexOutput), ui.ColorReset())
	case "theme":
		r.cmdTheme(args)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if _, err := strconv.ParseInt(cmd, 10, 64); err == nil {
			if n, ok := r.indexArg("calc", []string{cmd}); ok {
				r.evaluate(ctx, n)
			}
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

func (r *REPL) indexArg(cmd string, args []string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: %s <n>%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		return 0, false
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return 0, false
	}
	if r.config.MaxN > 0 && n > r.config.MaxN {
		fmt.Fprintf(r.out, "%sIndex %d exceeds the limit of %d%s\n", ui.ColorRed(), n, r.config.MaxN, ui.ColorReset())
		return 0, false
	}
	return n, true
}

func (r *REPL) options() recurrence.Options {
	rec := r.config.Recurrence
	return recurrence.Options{Recurrence: &rec}
}

func (r *REPL) evaluate(parent context.Context, n int64) {
	ev, err := r.factory.Get(r.currentAlgo)
	if err != nil {
		fmt.Fprintf(r.out, "%sStrategy not found: %s%s\n", ui.ColorRed(), r.currentAlgo, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(parent, r.config.Timeout)
	defer cancel()

	fmt.Fprintf(r.out, "Evaluating f(%s%d%s) with %s%s%s...\n",
		ui.ColorMagenta(), n, ui.ColorReset(), ui.ColorCyan(), ev.Name(), ui.ColorReset())

	progressChan := make(chan recurrence.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	value, err := ev.Evaluate(ctx, progressChan, 0, n, r.options())
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sResult:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Time:   %s%s%s\n", ui.ColorGreen(), FormatExecutionDuration(duration), ui.ColorReset())
	fmt.Fprintf(r.out, "  Digits: %s%d%s\n", ui.ColorCyan(), len(strconv.FormatUint(value, 10)), ui.ColorReset())
	fmt.Fprintf(r.out, "  f(%d) = %s%s%s\n\n", n, ui.ColorGreen(), formatTerm(value, r.config.HexOutput), ui.ColorReset())
}

func (r *REPL) sequence(parent context.Context, n int64) {
	ctx, cancel := context.WithTimeout(parent, r.config.Timeout)
	defer cancel()

	terms, err := recurrence.Sequence(ctx, r.config.Recurrence, n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	DisplaySequence(terms, r.config.HexOutput, r.out)
}

func (r *REPL) compare(parent context.Context, n int64) {
	fmt.Fprintf(r.out, "\n%sComparison for f(%d):%s\n", ui.ColorBold(), n, ui.ColorReset())
	rule := strings.Repeat("─", 45)
	fmt.Fprintf(r.out, "%s%s%s\n", ui.ColorCyan(), rule, ui.ColorReset())

	var first *uint64
	for _, name := range r.factory.List() {
		ev, err := r.factory.Get(name)
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(parent, r.config.Timeout)
		start := time.Now()
		value, err := ev.Evaluate(ctx, nil, 0, n, r.options())
		duration := time.Since(start)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-10s%s: %sError - %v%s\n",
				ui.ColorYellow(), name, ui.ColorReset(), ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if first == nil {
			first = &value
		} else if value != *first {
			status = ui.ColorRed() + "✗ INCONSISTENT" + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "  %s%-10s%s: %s%12s%s %s %s\n",
			ui.ColorYellow(), name, ui.ColorReset(),
			ui.ColorCyan(), FormatExecutionDuration(duration), ui.ColorReset(),
			formatTerm(value, r.config.HexOutput), status)
	}
	fmt.Fprintf(r.out, "%s%s%s\n\n", ui.ColorCyan(), rule, ui.ColorReset())
}

func (r *REPL) cmdAlgo(args []string) {
	available := strings.Join(r.factory.List(), ", ")
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ui.ColorRed(), ui.ColorReset())
		fmt.Fprintf(r.out, "Available strategies: %s\n", available)
		return
	}
	name := strings.ToLower(args[0])
	ev, err := r.factory.Get(name)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown strategy: %s%s\n", ui.ColorRed(), name, ui.ColorReset())
		fmt.Fprintf(r.out, "Available strategies: %s\n", available)
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Strategy changed to: %s%s%s\n", ui.ColorGreen(), ev.Name(), ui.ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable strategies:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range r.factory.List() {
		ev, err := r.factory.Get(name)
		if err != nil {
			continue
		}
		marker := "  "
		if name == r.currentAlgo {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ui.ColorYellow(), name, ui.ColorReset(), ev.Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdTheme(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current theme: %s (available: %s)\n", ui.GetCurrentTheme().Name, strings.Join(ui.ThemeNames, ", "))
		return
	}
	if !ui.SetTheme(strings.ToLower(args[0])) {
		fmt.Fprintf(r.out, "%sUnknown theme: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Theme changed to: %s%s%s\n", ui.ColorGreen(), ui.GetCurrentTheme().Name, ui.ColorReset())
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Strategy:    %s%s%s\n", ui.ColorCyan(), r.currentAlgo, ui.ColorReset())
	if r.config.Description != "" {
		fmt.Fprintf(r.out, "  Recurrence:  %s%s%s\n", ui.ColorCyan(), r.config.Description, ui.ColorReset())
	}
	fmt.Fprintf(r.out, "  Timeout:     %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintf(r.out, "  Hexadecimal: %s%s%s\n\n", ui.ColorCyan(), onOff(r.config.HexOutput), ui.ColorReset())
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
