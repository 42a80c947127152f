package llm_service

import (
	"context"
)

type MockLLMService struct {
	CompleteFunc func(ctx context.Context, systemPrompt string, messages []Message, temperature float64, maxTokens int) (string, error)
}

func (m *MockLLMService) Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float64, maxTokens int) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, messages, temperature, maxTokens)
	}
	return "mock response", nil
}
