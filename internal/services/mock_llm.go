package services

import (
	"context"
	"sync"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// MockLLM is a call-tracking LLMService for tests.
type MockLLM struct {
	ChatCompletionFunc func(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error)

	Calls []ChatCompletionCall

	mu sync.Mutex
}

type ChatCompletionCall struct {
	Model    string
	Messages []chat.ChatMessage
}

var _ LLMService = (*MockLLM)(nil)

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) ChatCompletion(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error) {
	m.mu.Lock()
	msgs := make([]chat.ChatMessage, len(messages))
	copy(msgs, messages)
	m.Calls = append(m.Calls, ChatCompletionCall{Model: model, Messages: msgs})
	m.mu.Unlock()

	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, model, messages)
	}
	return "Mock response", false, nil
}

// CallCount returns the number of completions requested so far.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// SetError makes every completion fail with err.
func (m *MockLLM) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCompletionFunc = func(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error) {
		return "", false, err
	}
}

// SetResponse makes every completion return text, optionally truncated.
func (m *MockLLM) SetResponse(text string, truncated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCompletionFunc = func(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error) {
		return text, truncated, nil
	}
}
