package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibwindow/internal/config"
	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/testutil"
)

func TestExecuteEvaluations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		evaluators  []recurrence.Evaluator
		expectError []bool
	}{
		{
			name:        "Single success",
			evaluators:  []recurrence.Evaluator{&recurrence.MockEvaluator{Result: 89}},
			expectError: []bool{false},
		},
		{
			name:        "Single failure",
			evaluators:  []recurrence.Evaluator{&recurrence.MockEvaluator{Err: errors.New("mock error")}},
			expectError: []bool{true},
		},
		{
			name: "Mixed keeps order",
			evaluators: []recurrence.Evaluator{
				&recurrence.MockEvaluator{Err: recurrence.ErrOverflow},
				&recurrence.MockEvaluator{Result: 1},
			},
			expectError: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteEvaluations(context.Background(), tt.evaluators, config.AppConfig{N: 10}, io.Discard)
			if len(results) != len(tt.expectError) {
				t.Fatalf("expected %d results, got %d", len(tt.expectError), len(results))
			}
			for i, wantErr := range tt.expectError {
				if (results[i].Err != nil) != wantErr {
					t.Errorf("result %d: err = %v, want error %v", i, results[i].Err, wantErr)
				}
			}
		})
	}
}

func TestExecuteEvaluationsPassesConfig(t *testing.T) {
	t.Parallel()
	factory := recurrence.NewDefaultFactory()
	evaluators := []recurrence.Evaluator{factory.MustGet("linear"), factory.MustGet("memo")}

	cfg := config.AppConfig{N: 10, S0: 2, S1: 1, P: 1, Q: 1}
	results := ExecuteEvaluations(context.Background(), evaluators, cfg, io.Discard)
	for _, res := range results {
		if res.Err != nil || res.Value != 123 {
			t.Errorf("%s: L(10) = %d, %v", res.Name, res.Value, res.Err)
		}
	}
}

func TestExecuteEvaluationsCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	evaluators := []recurrence.Evaluator{recurrence.NewDefaultFactory().MustGet("linear")}
	results := ExecuteEvaluations(ctx, evaluators, config.AppConfig{N: 10}, io.Discard)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	overflow := fmt.Errorf("f(93) does not fit in 64 bits: %w", recurrence.ErrOverflow)
	tests := []struct {
		name           string
		results        []EvaluationResult
		expectedStatus int
		expectedOutput string
	}{
		{
			name: "All success",
			results: []EvaluationResult{
				{Name: "A", Value: 89, Duration: time.Millisecond},
				{Name: "B", Value: 89, Duration: 2 * time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
			expectedOutput: "All valid results are consistent",
		},
		{
			name: "Mismatch",
			results: []EvaluationResult{
				{Name: "A", Value: 5, Duration: time.Millisecond},
				{Name: "B", Value: 6, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
			expectedOutput: "inconsistency",
		},
		{
			name: "All overflow",
			results: []EvaluationResult{
				{Name: "A", Duration: time.Millisecond, Err: overflow},
				{Name: "B", Duration: time.Millisecond, Err: overflow},
			},
			expectedStatus: apperrors.ExitErrorOverflow,
			expectedOutput: "Status: Overflow.",
		},
		{
			name: "All generic failure",
			results: []EvaluationResult{
				{Name: "A", Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
		},
		{
			name: "Overflow against success is a mismatch",
			results: []EvaluationResult{
				{Name: "A", Value: 5, Duration: time.Millisecond},
				{Name: "B", Err: overflow},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
		},
		{
			name: "Timeout against success is tolerated",
			results: []EvaluationResult{
				{Name: "A", Value: 5, Duration: time.Millisecond},
				{Name: "B", Err: context.DeadlineExceeded},
			},
			expectedStatus: apperrors.ExitSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			status := AnalyzeComparisonResults(tt.results, config.AppConfig{N: 10}, &buf)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			out := testutil.StripAnsiCodes(buf.String())
			if tt.expectedOutput != "" && !strings.Contains(out, tt.expectedOutput) {
				t.Errorf("output %q does not contain %q", out, tt.expectedOutput)
			}
		})
	}
}

func TestFindBestResultAndFirstError(t *testing.T) {
	t.Parallel()
	results := []EvaluationResult{
		{Name: "slow", Value: 1, Duration: time.Second},
		{Name: "canceled", Err: context.Canceled},
		{Name: "fast", Value: 1, Duration: time.Millisecond},
		{Name: "overflow", Err: recurrence.ErrOverflow},
	}
	if best := FindBestResult(results); best == nil || best.Name != "fast" {
		t.Errorf("FindBestResult = %+v", best)
	}
	if !errors.Is(FirstError(results), recurrence.ErrOverflow) {
		t.Errorf("FirstError should prefer evaluation errors, got %v", FirstError(results))
	}
	if FindBestResult(results[1:2]) != nil {
		t.Error("expected no best result among failures")
	}
	if !errors.Is(FirstError(results[:2]), context.Canceled) {
		t.Error("expected the context error when nothing else failed")
	}
	if FirstError(results[:1]) != nil {
		t.Error("expected nil error for successes only")
	}
}

func TestConsistent(t *testing.T) {
	t.Parallel()
	overflow := fmt.Errorf("f(93): %w", recurrence.ErrOverflow)
	tests := []struct {
		name    string
		results []EvaluationResult
		want    bool
	}{
		{"agreeing", []EvaluationResult{{Value: 89}, {Value: 89}}, true},
		{"disagreeing", []EvaluationResult{{Value: 89}, {Value: 90}}, false},
		{"timeout is not a mismatch", []EvaluationResult{{Value: 89}, {Err: context.DeadlineExceeded}}, true},
		{"overflow beside a success", []EvaluationResult{{Value: 89}, {Err: overflow}}, false},
		{"all failed", []EvaluationResult{{Err: overflow}}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Consistent(tt.results); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}
