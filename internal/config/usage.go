package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/fibwindow/internal/ui"
)

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// NO_COLOR applies before the theme is initialized.
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()

		fmt.Fprintf(out, "\n%sFibonacci Window%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Evaluates f(n) = p*f(n-1) + q*f(n-2) with a two-term rolling window.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] [n]\n\n%sFlags:%s\n", t.Warning, t.Reset, fs.Name(), t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})

		fmt.Fprintf(out, "\n%sExit codes:%s 0 ok, 1 error, 2 timeout, 3 mismatch, 4 config, 5 invalid argument, 6 overflow, 130 canceled.\n\n", t.Warning, t.Reset)
	}
}
