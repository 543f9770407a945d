package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	GenerateFunc  func(ctx context.Context, instruction string) (string, error)

	// Track calls for testing
	InitModelCalls []string
	GenerateCalls  []string

	mu sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		GenerateCalls:  make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}

	return nil
}

// Generate mocks dialogue generation
func (m *MockLLMAPI) Generate(ctx context.Context, instruction string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, instruction)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, instruction)
	}

	return "Mock response", nil
}

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockLLMAPI) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, instruction string) (string, error) {
		return "", err
	}
}

// SetGenerateResponse sets up the mock to return a fixed reply
func (m *MockLLMAPI) SetGenerateResponse(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, instruction string) (string, error) {
		return reply, nil
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateCalls = make([]string, 0)
	m.GenerateFunc = nil
	m.InitModelFunc = nil
}

// GetGenerateCalls returns a copy of recorded Generate instructions
func (m *MockLLMAPI) GetGenerateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}
