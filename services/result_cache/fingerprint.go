package result_cache

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// TextFingerprint builds a cache key for a piece of input text. Long inputs
// are truncated to keep keys bounded; the length suffix keeps truncated
// prefixes from colliding.
func TextFingerprint(text string) string {
	trimmed := strings.TrimSpace(text)
	head := trimmed
	if len(head) > 200 {
		head = head[:200]
	}
	return fmt.Sprintf("%s:%d", head, len(trimmed))
}

// VectorFingerprint builds a cache key from an embedding vector. Components
// are rounded to 5 decimal places before hashing so that floating-point noise
// between identical queries does not defeat the cache.
func VectorFingerprint(vector []float32) string {
	var sb strings.Builder
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		rounded := math.Round(float64(v)*1e5) / 1e5
		sb.WriteString(strconv.FormatFloat(rounded, 'f', -1, 64))
	}
	h := fnv.New64a()
	h.Write([]byte(sb.String()))
	return strconv.FormatUint(h.Sum64(), 16)
}

// SearchFingerprint keys a search result on everything that influences it.
func SearchFingerprint(vector []float32, datasetID string, threshold float64, maxChunks int) string {
	return fmt.Sprintf("%s|%.5f|%d|%s", datasetID, threshold, maxChunks, VectorFingerprint(vector))
}
