package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/chat_store"
)

type SessionHandler struct {
	store  *chat_store.Store
	logger *slog.Logger
}

func NewSessionHandler(store *chat_store.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeJSONError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	session, err := h.store.CreateSession(r.Context(), req.UserID, req.Title)
	if err != nil {
		h.logger.Error("Failed to create session",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	sessions, err := h.store.GetSessionsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list sessions",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	err := h.store.DeleteSession(r.Context(), sessionID)
	if errors.Is(err, chat_store.ErrNotFound) {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	messages, err := h.store.GetMessages(r.Context(), sessionID)
	if errors.Is(err, chat_store.ErrNotFound) {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch messages",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
