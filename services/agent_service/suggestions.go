package agent_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

const suggestionSystemPrompt = `You generate short follow-up questions for a European Accessibility Act support chat.
Given the conversation so far and known user facts, propose up to %d concise follow-up questions the user is likely to ask next.
Respond with a JSON array of strings only. Questions must be in the language of the conversation.`

// fallbackSuggestions is the static set served when the model is unavailable.
var fallbackSuggestions = []string{
	"What products and services does the EAA cover?",
	"When do EAA requirements start to apply?",
	"Are microenterprises exempt from the EAA?",
	"What are the penalties for non-compliance?",
	"How does the EAA relate to EN 301 549?",
}

type SuggestionService struct {
	llm    llm_service.LLMService
	logger *slog.Logger
}

func NewSuggestionService(llm llm_service.LLMService, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{llm: llm, logger: logger}
}

// Generate produces up to count contextual follow-up questions. On any model
// failure it falls back to the static set rather than returning an error.
func (s *SuggestionService) Generate(ctx context.Context, history []chat_type.ChatMessage, facts []chat_type.UserFact, count int) []string {
	if count <= 0 {
		count = 3
	}

	suggestions, err := s.generateFromModel(ctx, history, facts, count)
	if err != nil {
		s.logger.Warn("Suggestion generation failed, using fallback",
			slog.String("error", err.Error()))
		return s.Fallback(count)
	}
	return suggestions
}

func (s *SuggestionService) generateFromModel(ctx context.Context, history []chat_type.ChatMessage, facts []chat_type.UserFact, count int) ([]string, error) {
	var sb strings.Builder
	if len(facts) > 0 {
		sb.WriteString("Known user facts:\n")
		for _, f := range facts {
			sb.WriteString("- " + f.Fact + "\n")
		}
		sb.WriteString("\n")
	}
	if len(history) == 0 {
		sb.WriteString("The conversation has not started yet.")
	} else {
		sb.WriteString("Conversation so far:\n")
		for _, m := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
	}

	response, err := s.llm.Complete(ctx,
		fmt.Sprintf(suggestionSystemPrompt, count),
		[]llm_service.Message{{Role: "user", Content: sb.String()}},
		0.7, 300)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(cleanJSONContent(response)), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	cleaned := make([]string, 0, count)
	for _, sug := range suggestions {
		sug = strings.TrimSpace(sug)
		if sug == "" {
			continue
		}
		cleaned = append(cleaned, sug)
		if len(cleaned) == count {
			break
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("model returned no usable suggestions")
	}
	return cleaned, nil
}

// Fallback returns up to count entries from the static suggestion set.
func (s *SuggestionService) Fallback(count int) []string {
	if count <= 0 || count > len(fallbackSuggestions) {
		count = len(fallbackSuggestions)
	}
	out := make([]string, count)
	copy(out, fallbackSuggestions[:count])
	return out
}
