package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/agent_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/chat_store"
)

const analysisMessageWindow = 20

type AgentHandler struct {
	detector  *agent_service.FrustrationDetector
	explainer *agent_service.TermExplainer
	store     *chat_store.Store
	logger    *slog.Logger
}

func NewAgentHandler(detector *agent_service.FrustrationDetector, explainer *agent_service.TermExplainer, store *chat_store.Store, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{
		detector:  detector,
		explainer: explainer,
		store:     store,
		logger:    logger,
	}
}

// ProactiveAnalysis scores a session for user frustration and, when needed,
// drafts the escalation material.
func (h *AgentHandler) ProactiveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		writeJSONError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	messages, err := h.store.RecentMessages(r.Context(), req.SessionID, analysisMessageWindow)
	if err != nil {
		h.logger.Error("Failed to load messages for analysis",
			slog.String("session_id", req.SessionID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to load session messages", http.StatusInternalServerError)
		return
	}

	report, err := h.detector.Analyze(r.Context(), messages)
	if err != nil {
		h.logger.Error("Frustration analysis failed",
			slog.String("session_id", req.SessionID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *AgentHandler) ExplainTerm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Term == "" {
		writeJSONError(w, "term is required", http.StatusBadRequest)
		return
	}

	explanation, err := h.explainer.Explain(r.Context(), req.Term)
	if err != nil {
		h.logger.Error("Term explanation failed",
			slog.String("term", req.Term),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to explain term", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"term":        req.Term,
		"explanation": explanation,
	})
}
