package llm_service

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMService is the chat-completion collaborator contract. Implementations
// wrap one hosted provider.
type LLMService interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float64, maxTokens int) (string, error)
}
