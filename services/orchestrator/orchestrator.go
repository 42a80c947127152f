package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/composer"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/embedding_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/search_service"
)

const (
	// Shown when retrieval failed for a (sub-)question.
	placeholderAnswer = "Sorry, I could not process this question right now. Please try again in a moment."
	// Shown when retrieval succeeded but answer generation failed. The
	// request still completes with HTTP 200.
	degradedAnswer = "I found relevant material but could not generate an answer right now. Please try again shortly."

	maxParallelSubQuestions = 3
	historyLimit            = 10
)

// ContextProvider supplies optional conversation context for answer
// composition. Failures here are logged and never abort the answer flow.
type ContextProvider interface {
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]chat_type.ChatMessage, error)
	FactsForUser(ctx context.Context, userID string) ([]chat_type.UserFact, error)
}

// Orchestrator sequences embedding, similarity search and answer composition
// for one request.
type Orchestrator struct {
	embedder embedding_service.Embedder
	searcher search_service.Searcher
	composer composer.AnswerComposer
	splitter *Splitter
	provider ContextProvider // may be nil
	logger   *slog.Logger
}

func New(embedder embedding_service.Embedder, searcher search_service.Searcher, answerComposer composer.AnswerComposer, provider ContextProvider, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		searcher: searcher,
		composer: answerComposer,
		splitter: NewSplitter(),
		provider: provider,
		logger:   logger,
	}
}

// Process runs the full pipeline for one query. It returns an error only for
// validation failures; upstream failures degrade in-band so the caller can
// still answer with HTTP 200.
func (o *Orchestrator) Process(ctx context.Context, q chat_type.Query) (*chat_type.ProcessingResult, error) {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return nil, &ValidationError{Field: "question", Reason: "must not be empty"}
	}

	result := &chat_type.ProcessingResult{
		QueryID:   uuid.New().String(),
		SessionID: q.SessionID,
	}
	if result.SessionID == "" {
		result.SessionID = uuid.New().String()
	}

	history, facts := o.loadContext(ctx, result.SessionID, q.UserID)

	subQuestions := o.splitter.Split(question)
	if len(subQuestions) <= 1 {
		answer, perf := o.answerOne(ctx, question, q, history, facts)
		result.Answer = answer.Answer
		result.Sources = answer.Sources
		result.Performance = perf
		return result, nil
	}

	o.logger.Info("Processing multi-question request",
		slog.String("query_id", result.QueryID),
		slog.Int("sub_questions", len(subQuestions)))

	answers := make([]chat_type.AnswerResult, len(subQuestions))
	perfs := make([]chat_type.Performance, len(subQuestions))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallelSubQuestions)
	for i, sub := range subQuestions {
		wg.Add(1)
		go func(i int, sub string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			answers[i], perfs[i] = o.answerOne(ctx, sub, q, history, facts)
		}(i, sub)
	}
	wg.Wait()

	result.Answers = answers
	for _, p := range perfs {
		result.Performance.EmbeddingMS += p.EmbeddingMS
		result.Performance.SearchMS += p.SearchMS
		result.Performance.GenerateMS += p.GenerateMS
		result.Performance.TotalMS += p.TotalMS
	}
	return result, nil
}

// answerOne runs Embedding -> Searching -> Answer for a single question. Any
// failure is converted into a placeholder or degraded answer so that one
// failing sub-question never aborts a batch.
func (o *Orchestrator) answerOne(ctx context.Context, question string, q chat_type.Query, history []chat_type.ChatMessage, facts []chat_type.UserFact) (chat_type.AnswerResult, chat_type.Performance) {
	var perf chat_type.Performance
	answer := chat_type.AnswerResult{Question: question}
	start := time.Now()

	embedStart := time.Now()
	embedding, err := o.embedder.CreateEmbedding(ctx, question)
	perf.EmbeddingMS = time.Since(embedStart).Milliseconds()
	if err != nil {
		o.logger.Error("Embedding failed",
			slog.String("error", err.Error()))
		answer.Answer = placeholderAnswer
		answer.Failed = true
		perf.TotalMS = time.Since(start).Milliseconds()
		return answer, perf
	}

	searchStart := time.Now()
	chunks, cachedSearch, err := o.searcher.SearchSimilarChunks(ctx, embedding, q.DatasetID, q.SimilarityThreshold, q.MaxChunks)
	if err != nil {
		o.logger.Error("Similarity search failed",
			slog.String("dataset_id", q.DatasetID),
			slog.String("error", err.Error()))
		answer.Answer = placeholderAnswer
		answer.Failed = true
		perf.SearchMS = time.Since(searchStart).Milliseconds()
		perf.TotalMS = time.Since(start).Milliseconds()
		return answer, perf
	}
	if cachedSearch {
		perf.SearchMS = 0
	} else {
		perf.SearchMS = time.Since(searchStart).Milliseconds()
	}

	answer.Sources = search_service.Sources(chunks)

	generateStart := time.Now()
	text, err := o.composer.ComposeAnswer(ctx, question, chunks, history, facts)
	perf.GenerateMS = time.Since(generateStart).Milliseconds()
	perf.TotalMS = time.Since(start).Milliseconds()
	if err != nil {
		o.logger.Error("Answer generation failed, degrading",
			slog.String("error", err.Error()))
		answer.Answer = degradedAnswer
		answer.Failed = true
		return answer, perf
	}

	answer.Answer = text
	return answer, perf
}

func (o *Orchestrator) loadContext(ctx context.Context, sessionID, userID string) ([]chat_type.ChatMessage, []chat_type.UserFact) {
	if o.provider == nil {
		return nil, nil
	}

	var history []chat_type.ChatMessage
	var facts []chat_type.UserFact
	var err error

	if sessionID != "" {
		history, err = o.provider.RecentMessages(ctx, sessionID, historyLimit)
		if err != nil {
			o.logger.Warn("Failed to load conversation history",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
		}
	}
	if userID != "" {
		facts, err = o.provider.FactsForUser(ctx, userID)
		if err != nil {
			o.logger.Warn("Failed to load user facts",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
	return history, facts
}

// DegradedAnswer reports whether text is one of the in-band failure strings.
func DegradedAnswer(text string) bool {
	return text == placeholderAnswer || text == degradedAnswer
}
