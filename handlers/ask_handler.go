package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/agent_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/orchestrator"
)

// QueryProcessor is the orchestration pipeline as the HTTP layer sees it.
type QueryProcessor interface {
	Process(ctx context.Context, q chat_type.Query) (*chat_type.ProcessingResult, error)
}

// ExchangeStore persists the session, message, and fact rows behind /ask.
type ExchangeStore interface {
	CreateSession(ctx context.Context, userID, title string) (chat_type.ChatSession, error)
	SaveMessage(ctx context.Context, sessionID, role, content string) (chat_type.ChatMessage, error)
	FactsForUser(ctx context.Context, userID string) ([]chat_type.UserFact, error)
}

// AskDefaults carries per-deployment retrieval defaults for requests that
// omit the optional tuning fields.
type AskDefaults struct {
	DatasetID           string
	SimilarityThreshold float64
	MaxChunks           int
}

type AskRequest struct {
	Question            string   `json:"question"`
	SessionID           string   `json:"session_id"`
	UserID              string   `json:"user_id"`
	DatasetID           string   `json:"dataset_id"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	MaxChunks           *int     `json:"max_chunks"`
	Stream              bool     `json:"stream"`
}

type AskHandler struct {
	processor QueryProcessor
	store     ExchangeStore                    // may be nil
	facts     *agent_service.FactExtractor     // may be nil
	suggester *agent_service.SuggestionService // may be nil
	defaults  AskDefaults
	logger    *slog.Logger
}

func NewAskHandler(processor QueryProcessor, store ExchangeStore, facts *agent_service.FactExtractor, suggester *agent_service.SuggestionService, defaults AskDefaults, logger *slog.Logger) *AskHandler {
	return &AskHandler{
		processor: processor,
		store:     store,
		facts:     facts,
		suggester: suggester,
		defaults:  defaults,
		logger:    logger,
	}
}

func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query, err := h.buildQuery(&req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	query.SessionID = h.ensureSession(r.Context(), req)

	result, err := h.processor.Process(r.Context(), query)
	if err != nil {
		var vErr *orchestrator.ValidationError
		if errors.As(err, &vErr) {
			writeJSONError(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		queryID := "error_" + uuid.New().String()
		h.logger.Error("Request processing failed",
			slog.String("query_id", queryID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "Internal server error",
			"query_id": queryID,
		})
		return
	}

	h.persistExchange(r.Context(), query, result)
	h.enrich(r.Context(), query, result)

	writeJSON(w, http.StatusOK, result)
}

func (h *AskHandler) buildQuery(req *AskRequest) (chat_type.Query, error) {
	// Reject before any persistence: an invalid question must leave no trace.
	if strings.TrimSpace(req.Question) == "" {
		return chat_type.Query{}, fmt.Errorf("question must not be empty")
	}

	query := chat_type.Query{
		Question:            req.Question,
		DatasetID:           req.DatasetID,
		SimilarityThreshold: h.defaults.SimilarityThreshold,
		MaxChunks:           h.defaults.MaxChunks,
		UserID:              req.UserID,
		SessionID:           req.SessionID,
	}
	if query.DatasetID == "" {
		query.DatasetID = h.defaults.DatasetID
	}

	if req.SimilarityThreshold != nil {
		t := *req.SimilarityThreshold
		if t < 0 || t > 1 {
			return chat_type.Query{}, fmt.Errorf("similarity threshold must be between 0 and 1")
		}
		query.SimilarityThreshold = t
	}
	if req.MaxChunks != nil {
		m := *req.MaxChunks
		if m < 1 || m > 50 {
			return chat_type.Query{}, fmt.Errorf("max chunks must be between 1 and 50")
		}
		query.MaxChunks = m
	}
	return query, nil
}

// ensureSession creates a persistent session when a known user asks their
// first question. Failures fall back to an orchestrator-assigned transient
// session id.
func (h *AskHandler) ensureSession(ctx context.Context, req AskRequest) string {
	if req.SessionID != "" || h.store == nil || req.UserID == "" {
		return req.SessionID
	}

	title := sessionTitle(req.Question)
	session, err := h.store.CreateSession(ctx, req.UserID, title)
	if err != nil {
		h.logger.Warn("Failed to create session, continuing without persistence",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()))
		return ""
	}
	return session.ID
}

// sessionTitle truncates the first question to 80 bytes without splitting a
// UTF-8 sequence.
func sessionTitle(question string) string {
	title := strings.TrimSpace(question)
	if len(title) <= 80 {
		return title
	}
	cut := 80
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

func (h *AskHandler) persistExchange(ctx context.Context, query chat_type.Query, result *chat_type.ProcessingResult) {
	if h.store == nil || query.SessionID == "" {
		return
	}

	if _, err := h.store.SaveMessage(ctx, query.SessionID, "user", query.Question); err != nil {
		h.logger.Warn("Failed to persist user message",
			slog.String("session_id", query.SessionID),
			slog.String("error", err.Error()))
		return
	}

	answer := result.Answer
	if answer == "" && len(result.Answers) > 0 {
		parts, _ := json.Marshal(result.Answers)
		answer = string(parts)
	}
	if _, err := h.store.SaveMessage(ctx, query.SessionID, "assistant", answer); err != nil {
		h.logger.Warn("Failed to persist assistant message",
			slog.String("session_id", query.SessionID),
			slog.String("error", err.Error()))
	}
}

// enrich attaches follow-up suggestions and fires fact extraction. Both are
// auxiliary: failures never affect the answer.
func (h *AskHandler) enrich(ctx context.Context, query chat_type.Query, result *chat_type.ProcessingResult) {
	if h.suggester != nil {
		// Bound the extra model call so a slow suggester cannot stall the
		// answer; Generate falls back to the static set on any failure.
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var facts []chat_type.UserFact
		if h.store != nil && query.UserID != "" {
			var err error
			if facts, err = h.store.FactsForUser(sctx, query.UserID); err != nil {
				h.logger.Warn("Failed to load user facts for suggestions",
					slog.String("user_id", query.UserID),
					slog.String("error", err.Error()))
				facts = nil
			}
		}

		history := []chat_type.ChatMessage{{Role: "user", Content: query.Question}}
		if result.Answer != "" {
			history = append(history, chat_type.ChatMessage{Role: "assistant", Content: result.Answer})
		}
		result.Suggestions = h.suggester.Generate(sctx, history, facts, 3)
	}

	if h.facts != nil && query.UserID != "" {
		go func(userID, question string) {
			factCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.facts.ExtractAndStore(factCtx, userID, question)
		}(query.UserID, query.Question)
	}
}
