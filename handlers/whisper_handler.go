package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/transcription_service"
)

type WhisperHandler struct {
	transcriber *transcription_service.Service
	logger      *slog.Logger
}

func NewWhisperHandler(transcriber *transcription_service.Service, logger *slog.Logger) *WhisperHandler {
	return &WhisperHandler{transcriber: transcriber, logger: logger}
}

func (h *WhisperHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Cap the request body itself: without this an oversize upload would be
	// read in full before the per-file size check. The extra megabyte covers
	// multipart framing around a maximum-size file.
	r.Body = http.MaxBytesReader(w, r.Body, transcription_service.MaxAudioSize+1<<20)

	if err := r.ParseMultipartForm(transcription_service.MaxAudioSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "Audio file exceeds 25MB limit", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}
	// Multipart parsing may spill large uploads to temp files; release them
	// on every exit path.
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn("Failed to clean up multipart temp files",
					slog.String("error", err.Error()))
			}
		}
	}()

	file, header, err := r.FormFile("audio")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		writeJSONError(w, "Missing audio file in form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > transcription_service.MaxAudioSize {
		writeJSONError(w, "Audio file exceeds 25MB limit", http.StatusBadRequest)
		return
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("Transcription failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to transcribe audio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}
