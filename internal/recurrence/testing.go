package recurrence

import (
	"context"
	"sort"
)

// MockEvaluator is an Evaluator with a canned answer. It is exported so that
// tests in other packages (orchestration, service, cli) can use it.
type MockEvaluator struct {
	// DisplayName is returned by Name. Empty means "mock".
	DisplayName string
	Result      uint64
	Err         error
	Fn          func(ctx context.Context, n int64) (uint64, error)
}

// Name returns the mock's display name.
func (m *MockEvaluator) Name() string {
	if m.DisplayName == "" {
		return "mock"
	}
	return m.DisplayName
}

// Evaluate returns the pre-configured Result and Err, or calls Fn if provided.
func (m *MockEvaluator) Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, n int64, opts Options) (uint64, error) {
	if m.Fn != nil {
		return m.Fn(ctx, n)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{EvaluatorIndex: evalIndex, Value: 1.0}
	}
	return m.Result, m.Err
}

// TestFactory is an EvaluatorFactory backed by a fixed set of evaluators.
type TestFactory struct {
	evaluators map[string]Evaluator
}

// NewTestFactory creates a factory pre-populated with the given evaluators.
func NewTestFactory(evaluators map[string]Evaluator) *TestFactory {
	if evaluators == nil {
		evaluators = make(map[string]Evaluator)
	}
	return &TestFactory{evaluators: evaluators}
}

// Create returns the evaluator by name.
func (f *TestFactory) Create(name string) (Evaluator, error) {
	return f.Get(name)
}

// Get returns the evaluator by name.
func (f *TestFactory) Get(name string) (Evaluator, error) {
	ev, ok := f.evaluators[name]
	if !ok {
		return nil, &UnknownEvaluatorError{Name: name}
	}
	return ev, nil
}

// List returns all registered names, sorted.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.evaluators))
	for name := range f.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op: evaluators are provided at construction.
func (f *TestFactory) Register(name string, creator func() coreEvaluator) error {
	return nil
}

// GetAll returns a copy of all evaluators.
func (f *TestFactory) GetAll() map[string]Evaluator {
	result := make(map[string]Evaluator, len(f.evaluators))
	for k, v := range f.evaluators {
		result[k] = v
	}
	return result
}
