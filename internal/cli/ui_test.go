package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/briandowns/spinner"
	"github.com/sebdah/goldie/v2"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "< 1µs"},
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{999 * time.Microsecond, "999µs"},
		{10 * time.Millisecond, "10ms"},
		{2 * time.Second, "2s"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.expected {
			t.Errorf("FormatExecutionDuration(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		length   int
		want     string
	}{
		{0.0, 10, "░░░░░░░░░░"},
		{0.5, 10, "█████░░░░░"},
		{1.0, 10, "██████████"},
		{1.2, 10, "██████████"},
		{-0.1, 10, "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		if got := progressBar(tt.progress, tt.length); got != tt.want {
			t.Errorf("progressBar(%f, %d) = %s; want %s", tt.progress, tt.length, got, tt.want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()
	ps := NewProgressState(2)
	ps.Update(0, 0.5)
	ps.Update(1, 1.0)
	ps.Update(7, 1.0)
	if got := ps.CalculateAverage(); got != 0.75 {
		t.Errorf("CalculateAverage() = %f, want 0.75", got)
	}
	if got := NewProgressState(0).CalculateAverage(); got != 0 {
		t.Errorf("empty CalculateAverage() = %f, want 0", got)
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input, expected string
	}{
		{"", ""},
		{"1", "1"},
		{"123", "123"},
		{"1234", "1,234"},
		{"1234567", "1,234,567"},
		{"-1234", "-1,234"},
		{"12200160415121876738", "12,200,160,415,121,876,738"},
	}

	for _, tt := range tests {
		if got := formatNumberString(tt.input); got != tt.expected {
			t.Errorf("formatNumberString(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayResult(t *testing.T) {
	withoutColors(t)

	t.Run("Plain", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayResult(89, 10, time.Millisecond, false, false, &buf)
		want := "Result binary size: 7 bits.\n\n--- Evaluated term ---\nf(10) = 89\n"
		if buf.String() != want {
			t.Errorf("DisplayResult() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("Small values skip scientific notation", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayResult(55, 9, 0, false, true, &buf)
		if strings.Contains(buf.String(), "Scientific") {
			t.Errorf("unexpected scientific notation in %q", buf.String())
		}
		if !strings.Contains(buf.String(), "Number of digits      : 2") {
			t.Errorf("missing digit count in %q", buf.String())
		}
	})

	t.Run("Zero", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayResult(0, 0, 0, false, false, &buf)
		if !strings.HasPrefix(buf.String(), "Result binary size: 0 bits.") {
			t.Errorf("DisplayResult(0) = %q", buf.String())
		}
	})
}

func TestDisplayResultGolden(t *testing.T) {
	withoutColors(t)

	var buf bytes.Buffer
	DisplayResult(12200160415121876738, 92, 0, true, true, &buf)

	g := goldie.New(t)
	g.Assert(t, "display_result_f92", buf.Bytes())
}

func TestDisplaySequenceGolden(t *testing.T) {
	withoutColors(t)

	terms, err := recurrence.Sequence(t.Context(), recurrence.Fibonacci(), 10)
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}
	var buf bytes.Buffer
	DisplaySequence(terms, false, &buf)

	g := goldie.New(t)
	g.Assert(t, "display_sequence_10", buf.Bytes())
}

func TestFormatSequenceCompact(t *testing.T) {
	t.Parallel()
	terms := []uint64{1, 1, 2, 3, 5, 8, 13}
	if got, want := FormatSequenceCompact(terms, false), "1, 1, 2, 3, 5,\n8, 13"; got != want {
		t.Errorf("FormatSequenceCompact() = %q, want %q", got, want)
	}
	if got, want := FormatSequenceCompact([]uint64{10, 255}, true), "0xa, 0xff"; got != want {
		t.Errorf("FormatSequenceCompact(hex) = %q, want %q", got, want)
	}
	if got := FormatSequenceCompact(nil, false); got != "" {
		t.Errorf("FormatSequenceCompact(nil) = %q", got)
	}
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	rs := &realSpinner{spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))}
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if rs.s.Suffix != " test" {
		t.Errorf("suffix = %q, want %q", rs.s.Suffix, " test")
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	t.Cleanup(func() { newSpinner = originalNewSpinner })

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner { return mockS }

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan recurrence.ProgressUpdate)
	var out bytes.Buffer

	go func() {
		for i := 1; i <= 3; i++ {
			progressChan <- recurrence.ProgressUpdate{EvaluatorIndex: 0, Value: float64(i) / 4}
			time.Sleep(ProgressRefreshRate / 2)
		}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	if !mockS.started || !mockS.stopped {
		t.Errorf("spinner started=%v stopped=%v, want both", mockS.started, mockS.stopped)
	}
	if !strings.HasPrefix(mockS.suffix, " Avg progress:") {
		t.Errorf("suffix = %q, want the averaged label", mockS.suffix)
	}
	want := "Avg progress: 100.00% [" + strings.Repeat("█", ProgressBarWidth) + "] ETA: < 1s\n"
	if out.String() != want {
		t.Errorf("final line = %q, want %q", out.String(), want)
	}
}

func TestDisplayProgressZeroEvaluators(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan recurrence.ProgressUpdate, 1)
	progressChan <- recurrence.ProgressUpdate{Value: 0.5}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}
