package rag_service

import (
	"strings"
	"testing"
)

func TestSplitIntoChunks(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		if chunks := SplitIntoChunks("   "); chunks != nil {
			t.Errorf("expected nil, got %#v", chunks)
		}
	})

	t.Run("Short text stays whole", func(t *testing.T) {
		chunks := SplitIntoChunks("The EAA is Directive (EU) 2019/882.")
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
	})

	t.Run("Long text is split with bounded chunk sizes", func(t *testing.T) {
		sentence := "The European Accessibility Act sets requirements for products and services. "
		text := strings.Repeat(sentence, 100)

		chunks := SplitIntoChunks(text)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if len(c) > chunkSize {
				t.Errorf("chunk %d exceeds max size: %d", i, len(c))
			}
			if strings.TrimSpace(c) == "" {
				t.Errorf("chunk %d is blank", i)
			}
		}
	})

	t.Run("No text is lost at split points", func(t *testing.T) {
		sentence := "Accessibility requirements apply to self-service terminals. "
		text := strings.Repeat(sentence, 60)

		chunks := SplitIntoChunks(text)
		joined := strings.Join(chunks, " ")
		if !strings.Contains(joined, "self-service terminals") {
			t.Error("content missing after chunking")
		}
		// Overlap means total length may exceed the input, never undershoot
		// by more than trimmed whitespace.
		var total int
		for _, c := range chunks {
			total += len(c)
		}
		if total < len(strings.TrimSpace(text))-len(chunks)*2 {
			t.Errorf("chunks lost content: input %d, total %d", len(text), total)
		}
	})

	t.Run("Pathological unbroken text still terminates", func(t *testing.T) {
		text := strings.Repeat("a", 5000)
		chunks := SplitIntoChunks(text)
		if len(chunks) < 3 {
			t.Fatalf("expected hard splits, got %d chunks", len(chunks))
		}
	})
}
