package composer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

func TestComposeAnswerBuildsPromptFromContext(t *testing.T) {
	var gotSystem string
	var gotMessages []llm_service.Message
	mock := &llm_service.MockLLMService{
		CompleteFunc: func(ctx context.Context, systemPrompt string, messages []llm_service.Message, temperature float64, maxTokens int) (string, error) {
			gotSystem = systemPrompt
			gotMessages = messages
			return "The EAA is Directive (EU) 2019/882.", nil
		},
	}
	c := New(mock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	chunks := []chat_type.Chunk{
		{ID: "c1", Content: "Directive (EU) 2019/882 text.", Similarity: 0.95},
		{ID: "c2", Content: "Scope covers products and services.", Similarity: 0.88},
	}
	history := []chat_type.ChatMessage{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello!"},
		{Role: "system", Content: "must be filtered"},
	}
	facts := []chat_type.UserFact{{Fact: "develops a banking app"}}

	answer, err := c.ComposeAnswer(context.Background(), "What is EAA?", chunks, history, facts)
	if err != nil {
		t.Fatal(err)
	}
	if answer == "" {
		t.Fatal("expected an answer")
	}

	if !strings.Contains(gotSystem, "Directive (EU) 2019/882 text.") {
		t.Error("system prompt must embed chunk content")
	}
	if !strings.Contains(gotSystem, "develops a banking app") {
		t.Error("system prompt must embed user facts")
	}

	// History plus the question, with non-chat roles filtered out.
	if len(gotMessages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(gotMessages))
	}
	last := gotMessages[len(gotMessages)-1]
	if last.Role != "user" || last.Content != "What is EAA?" {
		t.Errorf("question must be the final user message, got %+v", last)
	}
}

func TestComposeAnswerNotesMissingContext(t *testing.T) {
	var gotSystem string
	mock := &llm_service.MockLLMService{
		CompleteFunc: func(ctx context.Context, systemPrompt string, messages []llm_service.Message, temperature float64, maxTokens int) (string, error) {
			gotSystem = systemPrompt
			return "I don't have information on that.", nil
		},
	}
	c := New(mock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := c.ComposeAnswer(context.Background(), "What about Mars?", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotSystem, "No relevant context excerpts") {
		t.Error("empty retrieval must be stated in the prompt")
	}
}

func TestComposeAnswerWrapsUpstreamError(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CompleteFunc: func(ctx context.Context, systemPrompt string, messages []llm_service.Message, temperature float64, maxTokens int) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	c := New(mock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.ComposeAnswer(context.Background(), "What is EAA?", nil, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "answer generation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}
