package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/transcription_service"
)

func newWhisperHandler() *WhisperHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWhisperHandler(transcription_service.New(logger, "test-key", "whisper-1"), logger)
}

func postAudio(t *testing.T, h *WhisperHandler, field string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "recording.mp3")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(payload); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/whisper/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWhisperRejectsOversizeBody(t *testing.T) {
	h := newWhisperHandler()

	payload := bytes.Repeat([]byte{0xff}, transcription_service.MaxAudioSize+2<<20)
	rec := postAudio(t, h, "audio", payload)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWhisperMissingFileIs400(t *testing.T) {
	h := newWhisperHandler()

	rec := postAudio(t, h, "", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
