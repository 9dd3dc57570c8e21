package datasource

import (
	"context"
	"sync"
)

// MockSource serves in-memory fixtures. Each Fetch returns a copy so callers
// cannot mutate the fixture set.
type MockSource[R any] struct {
	mu      sync.Mutex
	records []R
	err     error
	calls   int
}

// NewMockSource seeds the mock with records.
func NewMockSource[R any](records ...R) *MockSource[R] {
	return &MockSource[R]{records: append([]R(nil), records...)}
}

// Fetch returns the fixtures, or the configured error.
func (m *MockSource[R]) Fetch(context.Context) ([]R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]R(nil), m.records...), nil
}

// Set replaces the fixtures, e.g. after a simulated moderation action.
func (m *MockSource[R]) Set(records ...R) {
	m.mu.Lock()
	m.records = append([]R(nil), records...)
	m.mu.Unlock()
}

// Fail makes subsequent fetches return err; nil restores normal behaviour.
func (m *MockSource[R]) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls reports how many times Fetch ran.
func (m *MockSource[R]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
