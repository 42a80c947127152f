package transcription_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultTranscriptionAPIURL = "https://api.openai.com/v1/audio/transcriptions"

// MaxAudioSize is the upload limit accepted by the hosted speech-to-text API.
const MaxAudioSize = 25 << 20

// Service wraps the hosted speech-to-text API.
type Service struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	model      string
	apiURL     string
}

func New(logger *slog.Logger, apiKey, model string) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		apiKey:     apiKey,
		model:      model,
		apiURL:     defaultTranscriptionAPIURL,
	}
}

// Transcribe sends one audio file to the hosted model and returns the
// transcript text.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to copy audio data: %w", err)
	}
	if err := writer.WriteField("model", s.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call transcription API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	s.logger.Debug("Transcribed audio",
		slog.String("filename", filename),
		slog.Int("transcript_length", len(result.Text)))

	return result.Text, nil
}
