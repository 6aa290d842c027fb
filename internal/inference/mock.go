package inference

import (
	"context"
	"sync"

	"github.com/curationd/taxora/internal/service"
)

// MockProvider is a test double for service.InferenceProvider that counts
// calls and returns a canned result or error.
type MockProvider struct {
	Result *service.InferenceResult
	Err    error

	mu    sync.Mutex
	calls int
}

// Infer returns the canned result or error and records the call.
func (m *MockProvider) Infer(_ context.Context, _ service.PromptContext) (*service.InferenceResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// CallCount returns how many times Infer was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockEmbedder is a test double for service.EmbeddingProvider.
type MockEmbedder struct {
	Vector []float64
	Err    error

	mu    sync.Mutex
	calls int
}

// Embed returns the canned vector or error and records the call.
func (m *MockEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

// CallCount returns how many times Embed was invoked.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
