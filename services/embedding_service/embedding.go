package embedding_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/result_cache"
)

const defaultEmbeddingAPIURL = "https://api.openai.com/v1/embeddings"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Service calls the hosted embedding model, with a cache in front of it.
// Upstream failures are propagated without retry.
type Service struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	model      string
	apiURL     string
	cache      *result_cache.Cache
}

func New(logger *slog.Logger, apiKey, model string, cache *result_cache.Cache) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		apiKey:     apiKey,
		model:      model,
		apiURL:     defaultEmbeddingAPIURL,
		cache:      cache,
	}
}

func (s *Service) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := result_cache.TextFingerprint(text)
	if cached, ok := s.cache.Get(key); ok {
		if vector, ok := cached.([]float32); ok {
			return vector, nil
		}
	}

	vector, tokens, err := s.callEmbeddingAPI(ctx, text)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Generated embedding",
		slog.Int("dimensions", len(vector)),
		slog.Int("tokens", tokens))

	s.cache.Set(key, vector)
	return vector, nil
}

func (s *Service) callEmbeddingAPI(ctx context.Context, text string) ([]float32, int, error) {
	if s.apiKey == "" {
		return nil, 0, fmt.Errorf("OPENAI_API_KEY not set")
	}

	requestBody := embeddingRequest{
		Input: text,
		Model: s.model,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode embedding response: %v", err)
	}

	if len(embeddingResp.Data) == 0 {
		return nil, 0, fmt.Errorf("no embedding data received")
	}

	return embeddingResp.Data[0].Embedding, embeddingResp.Usage.TotalTokens, nil
}
