package search_service

import (
	"context"
	"log/slog"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/result_cache"
)

// Searcher is the contract consumed by the orchestrator. The cached return
// value reports whether the search was served without touching the store.
type Searcher interface {
	SearchSimilarChunks(ctx context.Context, embedding []float32, datasetID string, threshold float64, maxChunks int) (chunks []chat_type.Chunk, cached bool, err error)
}

// Service fronts the vector store with a result cache. Raw (untrimmed)
// results are cached so a hit can still honor a different trim outcome.
type Service struct {
	matcher Matcher
	cache   *result_cache.Cache
	logger  *slog.Logger
}

func New(matcher Matcher, cache *result_cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		matcher: matcher,
		cache:   cache,
		logger:  logger,
	}
}

func (s *Service) SearchSimilarChunks(ctx context.Context, embedding []float32, datasetID string, threshold float64, maxChunks int) ([]chat_type.Chunk, bool, error) {
	key := result_cache.SearchFingerprint(embedding, datasetID, threshold, maxChunks)

	if cached, ok := s.cache.Get(key); ok {
		if chunks, ok := cached.([]chat_type.Chunk); ok {
			return TrimChunks(chunks), true, nil
		}
	}

	chunks, err := s.matcher.Match(ctx, embedding, datasetID, threshold, maxChunks)
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("Similarity search completed",
		slog.String("dataset_id", datasetID),
		slog.Int("chunks", len(chunks)))

	s.cache.Set(key, chunks)
	return TrimChunks(chunks), false, nil
}

// Sources derives client-facing citations from chunks.
func Sources(chunks []chat_type.Chunk) []chat_type.Source {
	sources := make([]chat_type.Source, 0, len(chunks))
	for _, c := range chunks {
		source := chat_type.Source{
			ID:         c.ID,
			Similarity: c.Similarity,
		}
		if title, ok := c.Metadata["title"].(string); ok {
			source.Title = title
		}
		sources = append(sources, source)
	}
	return sources
}
