package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/rag_service"
)

const maxDocumentSize = 10 << 20

type UploadHandler struct {
	processor      *rag_service.Processor
	indexManager   *rag_service.IndexManager
	fetcher        *rag_service.WebPageFetcher
	defaultDataset string
	logger         *slog.Logger
}

func NewUploadHandler(processor *rag_service.Processor, indexManager *rag_service.IndexManager, fetcher *rag_service.WebPageFetcher, defaultDataset string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		processor:      processor,
		indexManager:   indexManager,
		fetcher:        fetcher,
		defaultDataset: defaultDataset,
		logger:         logger,
	}
}

// UploadDocument ingests one PDF or Word document into the knowledge base.
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn("Failed to clean up multipart temp files",
					slog.String("error", err.Error()))
			}
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	datasetID := r.FormValue("dataset_id")
	if datasetID == "" {
		datasetID = h.defaultDataset
	}

	h.logger.Info("Received document upload",
		slog.String("filename", header.Filename),
		slog.String("dataset_id", datasetID),
		slog.Int64("size", header.Size))

	response, err := h.processor.ProcessDocument(r.Context(), datasetID, header.Filename, buf.Bytes())
	if err != nil {
		h.logger.Error("Document ingestion failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to ingest document", http.StatusInternalServerError)
		return
	}

	if response.Status == "completed" {
		h.rebuildIndexAsync()
	}

	writeJSON(w, http.StatusOK, response)
}

// IngestURL fetches a web page and ingests its readable text.
func (h *UploadHandler) IngestURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL       string `json:"url"`
		DatasetID string `json:"dataset_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}
	if req.DatasetID == "" {
		req.DatasetID = h.defaultDataset
	}

	title, text, err := h.fetcher.FetchText(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("URL fetch failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to fetch URL", http.StatusBadGateway)
		return
	}
	if title == "" {
		title = req.URL
	}

	response, err := h.processor.ProcessText(r.Context(), req.DatasetID, title, text)
	if err != nil {
		h.logger.Error("URL ingestion failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to ingest page", http.StatusInternalServerError)
		return
	}

	if response.Status == "completed" {
		h.rebuildIndexAsync()
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *UploadHandler) rebuildIndexAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := h.indexManager.CreateOrUpdateIndex(ctx); err != nil {
			h.logger.Error("Vector index rebuild failed",
				slog.String("error", err.Error()))
		}
	}()
}
