package persistence

import (
	"context"
	"sync"
)

// MockService implements Service for handler tests. It returns the queued
// values in order, repeating the last one, or Err when set.
type MockService struct {
	mu     sync.Mutex
	values []uint64
	calls  int
	Err    error
}

// NewMockService returns a mock yielding values in order.
func NewMockService(values ...uint64) *MockService {
	return &MockService{values: values}
}

func (m *MockService) Next(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return 0, m.Err
	}
	if len(m.values) == 0 {
		return 0, &UpstreamError{Kind: UpstreamErrorKindUnavailable}
	}
	v := m.values[0]
	if len(m.values) > 1 {
		m.values = m.values[1:]
	}
	return v, nil
}

// Calls reports how many times Next was invoked.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Compile-time interface check
var _ Service = (*MockService)(nil)
