package agent_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

const factSystemPrompt = `You extract durable facts about a user from their support question.
Durable facts describe who the user is or what they are working on (e.g. "runs an e-commerce site", "develops a mobile banking app", "based in Germany").
Do NOT extract the question itself or one-off details. Respond with a JSON array of {"fact": string, "category": string} objects; return [] when nothing qualifies.`

// FactStore is the persistence side of fact extraction.
type FactStore interface {
	UpsertUserFact(ctx context.Context, userID, fact, category string) error
}

type ExtractedFact struct {
	Fact     string `json:"fact"`
	Category string `json:"category"`
}

type FactExtractor struct {
	llm    llm_service.LLMService
	store  FactStore
	logger *slog.Logger
}

func NewFactExtractor(llm llm_service.LLMService, store FactStore, logger *slog.Logger) *FactExtractor {
	return &FactExtractor{llm: llm, store: store, logger: logger}
}

// ExtractAndStore pulls durable facts out of a question and persists them.
// Runs off the critical answer path; callers fire it in a goroutine and any
// failure is only logged.
func (e *FactExtractor) ExtractAndStore(ctx context.Context, userID, question string) {
	if userID == "" || strings.TrimSpace(question) == "" {
		return
	}

	facts, err := e.extract(ctx, question)
	if err != nil {
		e.logger.Warn("Fact extraction failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return
	}

	for _, f := range facts {
		if err := e.store.UpsertUserFact(ctx, userID, f.Fact, f.Category); err != nil {
			e.logger.Warn("Failed to store user fact",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
}

func (e *FactExtractor) extract(ctx context.Context, question string) ([]ExtractedFact, error) {
	response, err := e.llm.Complete(ctx, factSystemPrompt,
		[]llm_service.Message{{Role: "user", Content: question}}, 0, 300)
	if err != nil {
		return nil, err
	}

	var facts []ExtractedFact
	if err := json.Unmarshal([]byte(cleanJSONContent(response)), &facts); err != nil {
		return nil, fmt.Errorf("failed to parse extracted facts: %w", err)
	}

	valid := facts[:0]
	for _, f := range facts {
		f.Fact = strings.TrimSpace(f.Fact)
		if f.Fact == "" {
			continue
		}
		if f.Category == "" {
			f.Category = "general"
		}
		valid = append(valid, f)
	}
	return valid, nil
}
