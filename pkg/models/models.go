// Package models defines the JSON documents exchanged by fibwindow: the
// -json output of the CLI and the bodies of the HTTP API.
package models

// RecurrenceSpec identifies a recurrence f(0)=S0, f(1)=S1,
// f(n)=P*f(n-1)+Q*f(n-2).
type RecurrenceSpec struct {
	S0 uint64 `json:"s0"`
	S1 uint64 `json:"s1"`
	P  uint64 `json:"p"`
	Q  uint64 `json:"q"`
}

// EvaluationResult is the outcome of one strategy.
type EvaluationResult struct {
	Algorithm  string  `json:"algorithm"`
	Value      *uint64 `json:"value,omitempty"`
	Hex        string  `json:"hex,omitempty"`
	Duration   string  `json:"duration"`
	DurationNS int64   `json:"duration_ns"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
}

// EvaluationReport is the CLI -json document for a single index.
type EvaluationReport struct {
	N          int64              `json:"n"`
	Recurrence RecurrenceSpec     `json:"recurrence"`
	Results    []EvaluationResult `json:"results"`
	Consistent bool               `json:"consistent"`
	ExitCode   int                `json:"exit_code"`
}

// EvaluationResponse is the body of GET /evaluate.
type EvaluationResponse struct {
	N          int64          `json:"n"`
	Algorithm  string         `json:"algorithm"`
	Recurrence RecurrenceSpec `json:"recurrence"`
	Value      uint64         `json:"value"`
	Hex        string         `json:"hex"`
	Duration   string         `json:"duration"`
	RequestID  string         `json:"request_id,omitempty"`
}

// SequenceResponse is the body of GET /sequence and the CLI -json -seq
// document.
type SequenceResponse struct {
	N          int64          `json:"n"`
	Recurrence RecurrenceSpec `json:"recurrence"`
	Terms      []uint64       `json:"terms"`
	Duration   string         `json:"duration"`
	RequestID  string         `json:"request_id,omitempty"`
}

// AlgorithmsResponse is the body of GET /algorithms.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
