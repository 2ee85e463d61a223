// Package testutil holds helpers shared by the package tests.
package testutil

import "regexp"

var (
	// ansiRegex matches CSI escape sequences (ESC [ ... letter).
	ansiRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)
	// durationRegex matches durations as printed by the CLI.
	durationRegex = regexp.MustCompile(`\b[0-9]+(\.[0-9]+)?(ns|µs|us|ms|s|m|h)\b`)
)

// StripAnsiCodes removes ANSI escape codes so that assertions can ignore the
// color theme.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// NormalizeDurations replaces every printed duration with "<dur>", making
// timing-dependent output comparable with golden files.
func NormalizeDurations(s string) string {
	return durationRegex.ReplaceAllString(s, "<dur>")
}
