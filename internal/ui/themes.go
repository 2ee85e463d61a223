// Package ui holds the color themes shared by the CLI, the REPL and the usage
// message, and decides whether colors are used at all.
package ui

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// Theme is a color scheme. Each field is an ANSI escape sequence.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme targets dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme targets light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme has every escape sequence empty.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames lists the names accepted by SetTheme.
var ThemeNames = []string{DarkTheme.Name, LightTheme.Name, NoColorTheme.Name}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name and reports whether the name was known.
// Unknown names select the dark theme.
func SetTheme(name string) bool {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case DarkTheme.Name:
		currentTheme = DarkTheme
	case LightTheme.Name:
		currentTheme = LightTheme
	case NoColorTheme.Name:
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
		return false
	}
	return true
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// InitTheme selects the theme for a run writing to stdout. Colors are
// disabled by the -no-color flag, by NO_COLOR (https://no-color.org/) and
// when stdout is not a terminal.
func InitTheme(noColor bool) {
	InitThemeFor(noColor, IsTerminal(os.Stdout))
}

// InitThemeFor is InitTheme with the terminal check supplied by the caller.
func InitThemeFor(noColor, isTerminal bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if _, exists := os.LookupEnv("NO_COLOR"); noColor || exists || !isTerminal {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
