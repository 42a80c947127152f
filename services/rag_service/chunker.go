package rag_service

import "strings"

const (
	chunkSize    = 1200
	chunkOverlap = 200
)

// SplitIntoChunks cuts extracted text into overlapping chunks sized for
// embedding. Splits prefer paragraph, then sentence boundaries; a hard cut is
// the last resort for pathological input.
func SplitIntoChunks(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/chunkSize+1)
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBoundary(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - chunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

func findBoundary(text string, start, end int) int {
	window := text[start:end]

	if i := strings.LastIndex(window, "\n\n"); i > chunkSize/2 {
		return start + i
	}
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(window, sep); i > chunkSize/2 {
			return start + i + len(sep)
		}
	}
	return end
}
