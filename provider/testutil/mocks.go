package testutil

import (
	"context"
	"sync"

	"chatbuf/config"
	"chatbuf/model"
)

// MockProvider implements model.Provider for testing. Calls are recorded so
// tests can assert that no request was made.
type MockProvider struct {
	// Configurable response
	CompleteFunc func(ctx context.Context, req model.ChatRequest) (string, error)
	NeedsKey     bool

	mu           sync.Mutex
	requests     []model.ChatRequest
	currentModel string
}

// NewMockProvider creates a mock provider that answers "Mock response" and
// requires an API key.
func NewMockProvider(modelName string) *MockProvider {
	return &MockProvider{
		CompleteFunc: func(ctx context.Context, req model.ChatRequest) (string, error) {
			return "Mock response", nil
		},
		NeedsKey:     true,
		currentModel: modelName,
	}
}

// Reply makes the mock answer every request with content.
func (m *MockProvider) Reply(content string) *MockProvider {
	m.CompleteFunc = func(ctx context.Context, req model.ChatRequest) (string, error) {
		return content, nil
	}
	return m
}

// Fail makes the mock fail every request with err.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.CompleteFunc = func(ctx context.Context, req model.ChatRequest) (string, error) {
		return "", err
	}
	return m
}

func (m *MockProvider) Complete(ctx context.Context, req model.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// Calls returns how many times Complete ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or the zero value.
func (m *MockProvider) LastRequest() model.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return model.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) RequiresAPIKey() bool {
	return m.NeedsKey
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

// MockCredentials is an in-memory model.CredentialSource.
type MockCredentials map[string]string

func (c MockCredentials) Lookup(service string) (string, error) {
	if key := c[service]; key != "" {
		return key, nil
	}
	return "", &config.CredentialError{Service: service, Err: config.ErrCredentialNotFound}
}
