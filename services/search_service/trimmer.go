package search_service

import "github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"

const (
	highConfidenceSimilarity = 0.9
	highConfidenceKeep       = 3
	defaultKeep              = 5
)

// TrimChunks bounds the number of chunks fed into the prompt. A very strong
// top match needs fewer supporting chunks; a weaker one benefits from more
// context. Input order is preserved and never re-sorted.
func TrimChunks(chunks []chat_type.Chunk) []chat_type.Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	keep := defaultKeep
	if chunks[0].Similarity > highConfidenceSimilarity {
		keep = highConfidenceKeep
	}

	if len(chunks) <= keep {
		return chunks
	}
	return chunks[:keep]
}
