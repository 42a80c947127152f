package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/agent_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/chat_store"
)

type SuggestionHandler struct {
	suggester *agent_service.SuggestionService
	store     *chat_store.Store // may be nil
	logger    *slog.Logger
}

func NewSuggestionHandler(suggester *agent_service.SuggestionService, store *chat_store.Store, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggester: suggester, store: store, logger: logger}
}

type suggestionRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Count     int    `json:"count"`
}

// Generate serves the model-backed suggestion endpoints
// (/suggestions/modern and /agent/ai-suggestions share this behavior).
func (h *SuggestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 3
	}

	var history []chat_type.ChatMessage
	var facts []chat_type.UserFact
	if h.store != nil {
		var err error
		if req.SessionID != "" {
			history, err = h.store.RecentMessages(r.Context(), req.SessionID, 10)
			if err != nil {
				h.logger.Warn("Failed to load history for suggestions",
					slog.String("session_id", req.SessionID),
					slog.String("error", err.Error()))
			}
		}
		if req.UserID != "" {
			facts, err = h.store.FactsForUser(r.Context(), req.UserID)
			if err != nil {
				h.logger.Warn("Failed to load facts for suggestions",
					slog.String("user_id", req.UserID),
					slog.String("error", err.Error()))
			}
		}
	}

	suggestions := h.suggester.Generate(r.Context(), history, facts, req.Count)
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

// Fallback serves the static suggestion set without touching the model.
func (h *SuggestionHandler) Fallback(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = suggestionRequest{}
	}
	if req.Count <= 0 {
		req.Count = 3
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": h.suggester.Fallback(req.Count)})
}

func (h *SuggestionHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "OK",
		"model_backed": true,
	})
}
