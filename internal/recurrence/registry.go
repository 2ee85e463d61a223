package recurrence

// Note: EvaluatorFactory is not mockable with mockgen because Register()
// uses the unexported coreEvaluator type. Use TestFactory instead.

import (
	"fmt"
	"sort"
	"sync"
)

// Registered strategy names.
const (
	// AlgoLinear selects the two-slot rolling window.
	AlgoLinear = "linear"
	// AlgoMemo selects the memoized reference table.
	AlgoMemo = "memo"
	// AlgoAll runs every registered strategy and compares their results.
	AlgoAll = "all"
)

// EvaluatorFactory creates and caches Evaluator instances by name.
type EvaluatorFactory interface {
	// Create returns a fresh Evaluator for name.
	Create(name string) (Evaluator, error)

	// Get returns the cached Evaluator for name, creating it on first use.
	Get(name string) (Evaluator, error)

	// List returns the sorted registered names.
	List() []string

	// Register adds or replaces a strategy.
	Register(name string, creator func() coreEvaluator) error

	// GetAll returns every registered Evaluator keyed by name.
	GetAll() map[string]Evaluator
}

// DefaultFactory is the thread-safe EvaluatorFactory used by the application.
type DefaultFactory struct {
	mu         sync.RWMutex
	creators   map[string]func() coreEvaluator
	evaluators map[string]Evaluator
}

// NewDefaultFactory creates a factory with the built-in strategies:
//   - "linear": WindowEvaluator (O(n) time, O(1) space)
//   - "memo": MemoEvaluator (O(n) time, O(n) space)
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:   make(map[string]func() coreEvaluator),
		evaluators: make(map[string]Evaluator),
	}

	_ = f.Register(AlgoLinear, func() coreEvaluator { return WindowEvaluator{} })
	_ = f.Register(AlgoMemo, func() coreEvaluator { return MemoEvaluator{} })

	return f
}

// Register adds a strategy. An existing entry with the same name is replaced
// and its cached Evaluator dropped.
//
// Parameters:
//   - name: The registry name, such as "linear".
//   - creator: The constructor of the strategy.
//
// Returns:
//   - error: An error if name is empty or "all", or creator is nil.
func (f *DefaultFactory) Register(name string, creator func() coreEvaluator) error {
	if name == "" || name == AlgoAll {
		return fmt.Errorf("invalid evaluator name: %q", name)
	}
	if creator == nil {
		return fmt.Errorf("nil creator for evaluator %q", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.evaluators, name)
	return nil
}

// Create always builds a new, uncached Evaluator.
func (f *DefaultFactory) Create(name string) (Evaluator, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownEvaluatorError{Name: name}
	}
	return NewEvaluator(creator()), nil
}

// Get returns the cached Evaluator for name, creating it on first use.
//
// Parameters:
//   - name: The registry name.
//
// Returns:
//   - Evaluator: The shared evaluator.
//   - error: An *UnknownEvaluatorError if name is not registered.
func (f *DefaultFactory) Get(name string) (Evaluator, error) {
	f.mu.RLock()
	if ev, exists := f.evaluators[name]; exists {
		f.mu.RUnlock()
		return ev, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if ev, exists := f.evaluators[name]; exists {
		return ev, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownEvaluatorError{Name: name}
	}

	ev := NewEvaluator(creator())
	f.evaluators[name] = ev
	return ev, nil
}

// List returns the registered names in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll initializes every registered Evaluator and returns a copy of the
// cache.
func (f *DefaultFactory) GetAll() map[string]Evaluator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.evaluators[name]; !exists {
			f.evaluators[name] = NewEvaluator(creator())
		}
	}

	result := make(map[string]Evaluator, len(f.evaluators))
	for name, ev := range f.evaluators {
		result[name] = ev
	}
	return result
}

// MustGet is like Get but panics if name is not registered.
func (f *DefaultFactory) MustGet(name string) Evaluator {
	ev, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("recurrence: required evaluator not found: %s", name))
	}
	return ev
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

// UnknownEvaluatorError is returned when a strategy name is not registered.
type UnknownEvaluatorError struct {
	Name string
}

func (e *UnknownEvaluatorError) Error() string {
	return "unknown evaluator: " + e.Name
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
