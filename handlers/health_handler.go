package handlers

import (
	"net/http"
	"time"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ConfigInfo is the public runtime configuration exposed to the UI.
type ConfigInfo struct {
	Environment         string  `json:"environment"`
	ChatModel           string  `json:"chat_model"`
	EmbeddingModel      string  `json:"embedding_model"`
	WhisperModel        string  `json:"whisper_model"`
	DefaultDatasetID    string  `json:"default_dataset_id"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxChunks           int     `json:"max_chunks"`
}

type ConfigHandler struct {
	info ConfigInfo
}

func NewConfigHandler(info ConfigInfo) *ConfigHandler {
	return &ConfigHandler{info: info}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
