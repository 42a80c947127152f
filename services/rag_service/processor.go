package rag_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/embedding_service"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Processor turns uploaded documents and fetched pages into embedded chunks
// in the vector store.
type Processor struct {
	db        *pgxpool.Pool
	logger    *slog.Logger
	extractor *DocumentExtractor
	embedder  embedding_service.Embedder
}

func NewProcessor(db *pgxpool.Pool, embedder embedding_service.Embedder, logger *slog.Logger) *Processor {
	return &Processor{
		db:        db,
		logger:    logger,
		extractor: NewDocumentExtractor(logger),
		embedder:  embedder,
	}
}

func (p *Processor) ProcessDocument(ctx context.Context, datasetID, filename string, content []byte) (*chat_type.IngestResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	metadata := chat_type.DocumentMetadata{
		ContentType: getMimeType(ext),
	}

	extractStart := time.Now()
	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = p.extractor.ExtractTextFromPDF(content)
	case ".doc", ".docx":
		text, err = p.extractor.ExtractTextFromWord(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	if err != nil {
		p.logger.Error("Text extraction failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))

		return &chat_type.IngestResponse{
			Message:  "Failed to extract text from document",
			Status:   "failed",
			Error:    err.Error(),
			Metadata: metadata,
		}, nil
	}

	metadata.ProcessingStats.ExtractionTime = time.Since(extractStart).Seconds()
	return p.ingestText(ctx, datasetID, filename, text, metadata)
}

// ProcessText embeds and stores already-extracted text, the shared tail of
// document and URL ingestion.
func (p *Processor) ProcessText(ctx context.Context, datasetID, sourceName, text string) (*chat_type.IngestResponse, error) {
	return p.ingestText(ctx, datasetID, sourceName, text, chat_type.DocumentMetadata{ContentType: "text/plain"})
}

func (p *Processor) ingestText(ctx context.Context, datasetID, sourceName, text string, metadata chat_type.DocumentMetadata) (*chat_type.IngestResponse, error) {
	metadata.WordCount = len(strings.Fields(text))
	if len(text) > 250 {
		metadata.ContentPreview = text[:250] + "..."
	} else {
		metadata.ContentPreview = text
	}

	chunks := SplitIntoChunks(text)
	metadata.ProcessingStats.ChunkCount = len(chunks)
	if len(chunks) == 0 {
		return &chat_type.IngestResponse{
			Message:  "Document contained no usable text",
			Status:   "failed",
			Error:    "empty document",
			Metadata: metadata,
		}, nil
	}

	embedStart := time.Now()
	for i, chunk := range chunks {
		embedding, err := p.embedder.CreateEmbedding(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d/%d: %w", i+1, len(chunks), err)
		}

		chunkMetadata, err := json.Marshal(map[string]interface{}{
			"title":       sourceName,
			"chunk_index": i,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}

		_, err = p.db.Exec(ctx, `
            INSERT INTO chunks (dataset_id, content, embedding, metadata)
            VALUES ($1, $2, $3, $4)
        `, datasetID, chunk, pgvector.NewVector(embedding), chunkMetadata)
		if err != nil {
			return nil, fmt.Errorf("failed to store chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	metadata.ProcessingStats.EmbeddingTime = time.Since(embedStart).Seconds()

	p.logger.Info("Document ingested",
		slog.String("dataset_id", datasetID),
		slog.String("source", sourceName),
		slog.Int("chunks", len(chunks)))

	return &chat_type.IngestResponse{
		Message:  fmt.Sprintf("Ingested %d chunks", len(chunks)),
		Status:   "completed",
		Metadata: metadata,
	}, nil
}

func getMimeType(ext string) string {
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
