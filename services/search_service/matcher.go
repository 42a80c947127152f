package search_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
)

// Matcher is the vector-store collaborator contract. The threshold and limit
// are hints; results are expected sorted by descending similarity.
type Matcher interface {
	Match(ctx context.Context, embedding []float32, datasetID string, threshold float64, limit int) ([]chat_type.Chunk, error)
}

// PgMatcher runs cosine-similarity search against the chunks table.
type PgMatcher struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgMatcher(db *pgxpool.Pool, logger *slog.Logger) *PgMatcher {
	return &PgMatcher{db: db, logger: logger}
}

func (m *PgMatcher) Match(ctx context.Context, embedding []float32, datasetID string, threshold float64, limit int) ([]chat_type.Chunk, error) {
	query := `
        WITH scored_chunks AS (
            SELECT
                c.id,
                c.content,
                1 - (c.embedding <=> $1) AS similarity,
                c.metadata
            FROM chunks c
            WHERE c.dataset_id = $2
        )
        SELECT id, content, similarity, metadata
        FROM scored_chunks
        WHERE similarity >= $3
        ORDER BY similarity DESC
        LIMIT $4
    `

	rows, err := m.db.Query(ctx, query, pgvector.NewVector(embedding), datasetID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}
	defer rows.Close()

	chunks := make([]chat_type.Chunk, 0)
	for rows.Next() {
		var chunk chat_type.Chunk
		var metadata []byte
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.Similarity, &metadata); err != nil {
			m.logger.Error("Failed to scan chunk row",
				slog.String("error", err.Error()))
			continue
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				m.logger.Error("Failed to parse chunk metadata",
					slog.String("chunk_id", chunk.ID),
					slog.String("error", err.Error()))
			}
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search row iteration failed: %w", err)
	}

	return chunks, nil
}
