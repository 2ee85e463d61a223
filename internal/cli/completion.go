package cli

import (
	"fmt"
	"io"
	"strings"
)

// completionFlag describes one command-line flag for the completion scripts.
type completionFlag struct {
	name   string
	short  string
	desc   string
	values string // space separated suggestions, "@algo" for strategies
	file   bool
}

const algoPlaceholder = "@algo"

var completionFlags = []completionFlag{
	{name: "help", short: "h", desc: "Show help message"},
	{name: "version", short: "V", desc: "Show version information"},
	{name: "n", desc: "Index n of the term to evaluate", values: "10 50 92"},
	{name: "s0", desc: "Seed f(0)", values: "0 1 2"},
	{name: "s1", desc: "Seed f(1)", values: "0 1 2"},
	{name: "coef-p", desc: "Coefficient of f(n-1)", values: "1 2"},
	{name: "coef-q", desc: "Coefficient of f(n-2)", values: "1 2"},
	{name: "seq", desc: "Print the sequence f(0)..f(n)"},
	{name: "v", desc: "Display raw and hexadecimal values"},
	{name: "details", short: "d", desc: "Show evaluation details"},
	{name: "timeout", desc: "Maximum execution time", values: "10s 1m 5m"},
	{name: "algo", desc: "Strategy to use", values: algoPlaceholder},
	{name: "json", desc: "Output in JSON format"},
	{name: "server", desc: "Start HTTP server mode"},
	{name: "port", desc: "Server port", values: "8080 3000 9000"},
	{name: "max-n", desc: "Largest index accepted by the server", values: "1000000 100000000"},
	{name: "no-color", desc: "Disable colored output"},
	{name: "output", short: "o", desc: "Output file path", file: true},
	{name: "quiet", short: "q", desc: "Quiet mode for scripts"},
	{name: "hex", desc: "Display values in hexadecimal"},
	{name: "interactive", desc: "Start interactive REPL mode"},
	{name: "completion", desc: "Generate completion script", values: "bash zsh fish powershell"},
	{name: "config", desc: "YAML configuration file", file: true},
	{name: "log-level", desc: "Log level", values: "debug info warn error"},
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh",
// "fish", "powershell" or "ps") listing algorithms for -algo.
//
// Parameters:
//   - out: The writer receiving the script.
//   - shell: The target shell name.
//   - algorithms: The strategy names offered for -algo.
//
// Returns:
//   - error: An error for an unsupported shell or a failed write.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	algos := strings.Join(append(append([]string{}, algorithms...), "all"), " ")
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algos)
	case "zsh":
		script = zshCompletion(algos)
	case "fish":
		script = fishCompletion(algos)
	case "powershell", "ps":
		script = powerShellCompletion(algos)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	_, err := io.WriteString(out, script)
	return err
}

func (f completionFlag) suggestions(algos string) string {
	if f.values == algoPlaceholder {
		return algos
	}
	return f.values
}

func (f completionFlag) spellings() []string {
	s := []string{"-" + f.name}
	if len(f.name) > 1 {
		s = append(s, "--"+f.name)
	}
	if f.short != "" {
		s = append(s, "-"+f.short)
	}
	return s
}

func bashCompletion(algos string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range completionFlags {
		opts = append(opts, f.spellings()...)
		switch {
		case f.file:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(f.spellings(), "|"))
		case f.values != "":
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(f.spellings(), "|"), f.suggestions(algos))
		}
	}

	var b strings.Builder
	b.WriteString("# Bash completion script for fibwindow\n")
	b.WriteString("# Add this to your ~/.bashrc or ~/.bash_completion\n\n")
	b.WriteString("_fibwindow_completions() {\n")
	b.WriteString("    local cur prev\n    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    case \"${prev}\" in\n")
	b.WriteString(cases.String())
	b.WriteString("    esac\n\n")
	fmt.Fprintf(&b, "    COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(opts, " "))
	b.WriteString("}\n\ncomplete -F _fibwindow_completions fibwindow\n")
	return b.String()
}

func zshCompletion(algos string) string {
	var b strings.Builder
	b.WriteString("#compdef fibwindow\n\n# Zsh completion script for fibwindow\n\n")
	b.WriteString("_fibwindow() {\n    _arguments -s \\\n")
	for i, f := range completionFlags {
		action := ""
		switch {
		case f.file:
			action = ":file:_files"
		case f.values != "":
			action = fmt.Sprintf(":%s:(%s)", f.name, f.suggestions(algos))
		}
		sep := " \\"
		if i == len(completionFlags)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        '-%s[%s]%s'%s\n", f.name, f.desc, action, sep)
	}
	b.WriteString("}\n\n_fibwindow \"$@\"\n")
	return b.String()
}

func fishCompletion(algos string) string {
	var b strings.Builder
	b.WriteString("# Fish completion script for fibwindow\n")
	b.WriteString("# Add this to ~/.config/fish/completions/fibwindow.fish\n\n")
	b.WriteString("complete -c fibwindow -f\n")
	for _, f := range completionFlags {
		fmt.Fprintf(&b, "complete -c fibwindow -o %s", f.name)
		if f.short != "" {
			fmt.Fprintf(&b, " -s %s", f.short)
		}
		fmt.Fprintf(&b, " -d '%s'", f.desc)
		switch {
		case f.file:
			b.WriteString(" -rF")
		case f.values != "":
			fmt.Fprintf(&b, " -xa '%s'", f.suggestions(algos))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func powerShellCompletion(algos string) string {
	var b strings.Builder
	b.WriteString("# PowerShell completion script for fibwindow\n# Add this to your $PROFILE\n\n")
	b.WriteString("Register-ArgumentCompleter -CommandName 'fibwindow' -Native -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $values = @{\n")
	for _, f := range completionFlags {
		if f.values == "" {
			continue
		}
		quoted := strings.Fields(f.suggestions(algos))
		for i, v := range quoted {
			quoted[i] = "'" + v + "'"
		}
		fmt.Fprintf(&b, "        '-%s' = @(%s)\n", f.name, strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n    $options = @(\n")
	for _, f := range completionFlags {
		for _, s := range f.spellings() {
			fmt.Fprintf(&b, "        @{Name = '%s'; Description = '%s' }\n", s, f.desc)
		}
	}
	b.WriteString("    )\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    $prev = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }\n")
	b.WriteString("    if ($values.ContainsKey($prev)) {\n")
	b.WriteString("        $values[$prev] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n        return\n    }\n")
	b.WriteString("    $options | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)\n")
	b.WriteString("    }\n}\n")
	return b.String()
}
