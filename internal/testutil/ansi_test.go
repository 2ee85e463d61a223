package testutil

import "testing"

func TestStripAnsiCodes(t *testing.T) {
	t.Parallel()
	in := "\x1b[38;5;82m✅ Success\x1b[0m \x1b[1mbold\x1b[0m"
	if got := StripAnsiCodes(in); got != "✅ Success bold" {
		t.Errorf("StripAnsiCodes() = %q", got)
	}
}

func TestNormalizeDurations(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"took 12µs":           "took <dur>",
		"took 3ms and 1.5s":   "took <dur> and <dur>",
		"f(92) = 0x2a":        "f(92) = 0x2a",
		"64 bits, 20 digits":  "64 bits, 20 digits",
		"timeout of 1m0s set": "timeout of 1m0s set",
	}
	for in, want := range tests {
		if got := NormalizeDurations(in); got != want {
			t.Errorf("NormalizeDurations(%q) = %q, want %q", in, got, want)
		}
	}
}
