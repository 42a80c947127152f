package composer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

const systemPromptHeader = `You are a customer-support assistant for questions about the European Accessibility Act (EAA).
Answer using only the provided context excerpts. If the context does not cover the question, say so honestly and suggest rephrasing.
Answer in the language of the question. Be concise and cite concrete requirements where possible.`

// AnswerComposer produces a natural-language answer from a question and its
// retrieved context.
type AnswerComposer interface {
	ComposeAnswer(ctx context.Context, question string, chunks []chat_type.Chunk, history []chat_type.ChatMessage, facts []chat_type.UserFact) (string, error)
}

type Composer struct {
	llm         llm_service.LLMService
	logger      *slog.Logger
	temperature float64
	maxTokens   int
}

func New(llm llm_service.LLMService, logger *slog.Logger) *Composer {
	return &Composer{
		llm:         llm,
		logger:      logger,
		temperature: 0.3,
		maxTokens:   1024,
	}
}

func (c *Composer) ComposeAnswer(ctx context.Context, question string, chunks []chat_type.Chunk, history []chat_type.ChatMessage, facts []chat_type.UserFact) (string, error) {
	systemPrompt := c.buildSystemPrompt(chunks, facts)

	messages := make([]llm_service.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		messages = append(messages, llm_service.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm_service.Message{Role: "user", Content: question})

	answer, err := c.llm.Complete(ctx, systemPrompt, messages, c.temperature, c.maxTokens)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	c.logger.Debug("Composed answer",
		slog.Int("context_chunks", len(chunks)),
		slog.Int("answer_length", len(answer)))

	return answer, nil
}

func (c *Composer) buildSystemPrompt(chunks []chat_type.Chunk, facts []chat_type.UserFact) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)

	if len(facts) > 0 {
		sb.WriteString("\n\nKnown facts about this user:\n")
		for _, f := range facts {
			sb.WriteString(fmt.Sprintf("- %s\n", f.Fact))
		}
	}

	if len(chunks) == 0 {
		sb.WriteString("\n\nNo relevant context excerpts were found for this question.")
		return sb.String()
	}

	sb.WriteString("\n\nContext excerpts, ordered by relevance:\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("\n[%d] (relevance %.2f)\n%s\n", i+1, chunk.Similarity, chunk.Content))
	}

	return sb.String()
}
