package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexManager handles vector index operations
type IndexManager struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewIndexManager(db *pgxpool.Pool, logger *slog.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateOrUpdateIndex rebuilds the similarity index after ingestion. The
// number of ivfflat lists scales with the chunk count.
func (im *IndexManager) CreateOrUpdateIndex(ctx context.Context) error {
	var count int
	err := im.db.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	lists := int(math.Sqrt(float64(count)))
	if lists < 100 {
		lists = 100
	}

	_, err = im.db.Exec(ctx, "DROP INDEX IF EXISTS idx_chunks_embedding")
	if err != nil {
		return fmt.Errorf("failed to drop existing index: %w", err)
	}

	createIndexSQL := fmt.Sprintf(`
        CREATE INDEX idx_chunks_embedding
        ON chunks
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = %d)
    `, lists)

	_, err = im.db.Exec(ctx, createIndexSQL)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	im.logger.Info("Vector index created/updated",
		slog.Int("chunk_count", count),
		slog.Int("lists", lists))

	return nil
}
