package llm_service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestOpenAIService(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewOpenAIService(slog.New(slog.NewTextHandler(io.Discard, nil)), "test-key", "gpt-4o-mini")
	s.apiURL = srv.URL
	s.httpClient = srv.Client()
	return s
}

func TestCompleteParsesChoice(t *testing.T) {
	s := newTestOpenAIService(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Messages[0].Role != "system" {
			t.Errorf("expected system prompt first, got %q", payload.Messages[0].Role)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "The EAA covers e-commerce."}},
			},
		})
	})

	answer, err := s.Complete(context.Background(), "You are helpful.",
		[]Message{{Role: "user", Content: "Does the EAA cover e-commerce?"}}, 0.3, 100)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "The EAA covers e-commerce." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestCompleteDoesNotRetryAuthErrors(t *testing.T) {
	var calls int64
	s := newTestOpenAIService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, http.StatusUnauthorized)
	})

	_, err := s.Complete(context.Background(), "", []Message{{Role: "user", Content: "q"}}, 0, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("auth error must not be retried, got %d calls", got)
	}

	httpErr, ok := err.(*OpenAIHttpError)
	if !ok {
		t.Fatalf("expected *OpenAIHttpError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected status: %d", httpErr.StatusCode)
	}
}

func TestCompleteHonorsContextDuringRetryBackoff(t *testing.T) {
	s := newTestOpenAIService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Complete(ctx, "", []Message{{Role: "user", Content: "q"}}, 0, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("cancelled context must cut the retry backoff short")
	}
}
