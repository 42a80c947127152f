package chat_type

import "time"

// Chunk is a retrieved knowledge-base fragment. Chunks come back from the
// vector store already sorted by descending similarity.
type Chunk struct {
	ID         string                 `json:"id"`
	Content    string                 `json:"content"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Source is the client-facing citation derived from a chunk.
type Source struct {
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Similarity float64 `json:"similarity"`
}

// Performance carries per-phase durations in milliseconds.
type Performance struct {
	EmbeddingMS int64 `json:"embedding_ms"`
	SearchMS    int64 `json:"search_ms"`
	GenerateMS  int64 `json:"generate_ms"`
	TotalMS     int64 `json:"total_ms"`
}

// SearchResult is the outcome of one similarity search, before or after
// trimming.
type SearchResult struct {
	Chunks      []Chunk     `json:"chunks"`
	Sources     []Source    `json:"sources"`
	Performance Performance `json:"performance"`
}

// Query is one validated inbound question. Immutable once constructed.
type Query struct {
	Question            string
	DatasetID           string
	SimilarityThreshold float64
	MaxChunks           int
	UserID              string
	SessionID           string
}

// AnswerResult is the answer for a single (sub-)question.
type AnswerResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources,omitempty"`
	Failed   bool     `json:"failed,omitempty"`
}

// ProcessingResult is the orchestrator's response payload for one request.
// Answer is set in single-question mode, Answers in multi-question mode.
type ProcessingResult struct {
	Answer      string         `json:"answer,omitempty"`
	Answers     []AnswerResult `json:"answers,omitempty"`
	Sources     []Source       `json:"sources,omitempty"`
	Performance Performance    `json:"performance"`
	SessionID   string         `json:"session_id"`
	QueryID     string         `json:"query_id"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type UserFact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Fact      string    `json:"fact"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentMetadata describes one ingested knowledge-base document.
type DocumentMetadata struct {
	ContentType     string          `json:"content_type"`
	WordCount       int             `json:"word_count"`
	ContentPreview  string          `json:"content_preview"`
	ProcessingStats ProcessingStats `json:"processing_stats"`
}

type ProcessingStats struct {
	ExtractionTime float64 `json:"extraction_time_seconds"`
	EmbeddingTime  float64 `json:"embedding_time_seconds"`
	ChunkCount     int     `json:"chunk_count"`
	TokensUsed     int     `json:"tokens_used"`
}

// IngestResponse is returned by the document upload and URL ingestion
// endpoints.
type IngestResponse struct {
	Message  string           `json:"message"`
	Status   string           `json:"status"`
	Error    string           `json:"error,omitempty"`
	Metadata DocumentMetadata `json:"metadata"`
}
