package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/agent_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/chat_store"
)

type WelcomeHandler struct {
	store     *chat_store.Store
	suggester *agent_service.SuggestionService
	logger    *slog.Logger
}

func NewWelcomeHandler(store *chat_store.Store, suggester *agent_service.SuggestionService, logger *slog.Logger) *WelcomeHandler {
	return &WelcomeHandler{store: store, suggester: suggester, logger: logger}
}

func (h *WelcomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	greeting := "Hello! I can answer your questions about the European Accessibility Act."
	suggestions := h.suggester.Fallback(3)

	if h.store != nil {
		facts, err := h.store.FactsForUser(r.Context(), userID)
		if err != nil {
			h.logger.Warn("Failed to load user facts for welcome",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		} else if len(facts) > 0 {
			greeting = fmt.Sprintf("Welcome back! Last time we talked about your situation (%s). How can I help today?", facts[0].Fact)
			suggestions = h.suggester.Generate(r.Context(), nil, facts, 3)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"greeting":    greeting,
		"suggestions": suggestions,
	})
}
