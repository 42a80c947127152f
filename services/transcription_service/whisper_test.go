package transcription_service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), "test-key", "whisper-1")
	s.apiURL = srv.URL
	s.httpClient = srv.Client()
	return s
}

func TestTranscribeSendsMultipartAndParsesText(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("expected model field, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatal(err)
		}
		defer file.Close()
		if header.Filename != "question.webm" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake audio bytes" {
			t.Errorf("audio body not forwarded: %q", data)
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "what is the EAA"})
	})

	transcript, err := s.Transcribe(context.Background(), "question.webm", strings.NewReader("fake audio bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if transcript != "what is the EAA" {
		t.Errorf("unexpected transcript %q", transcript)
	}
}

func TestTranscribePropagatesUpstreamFailure(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"file too large"}}`, http.StatusRequestEntityTooLarge)
	})

	_, err := s.Transcribe(context.Background(), "big.wav", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "413") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), "", "whisper-1")
	_, err := s.Transcribe(context.Background(), "a.wav", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}
