package agent_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

const explainSystemPrompt = `You are a glossary for European accessibility legislation.
Explain the given term in 2-4 plain-language sentences for a non-lawyer. Mention the relevant EAA article or standard when one exists.`

type TermExplainer struct {
	llm    llm_service.LLMService
	logger *slog.Logger
}

func NewTermExplainer(llm llm_service.LLMService, logger *slog.Logger) *TermExplainer {
	return &TermExplainer{llm: llm, logger: logger}
}

func (e *TermExplainer) Explain(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("term must not be empty")
	}

	explanation, err := e.llm.Complete(ctx, explainSystemPrompt,
		[]llm_service.Message{{Role: "user", Content: term}}, 0.2, 300)
	if err != nil {
		return "", fmt.Errorf("term explanation failed: %w", err)
	}

	e.logger.Debug("Explained term",
		slog.String("term", term))
	return explanation, nil
}
