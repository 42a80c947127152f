package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
)

type mockEmbedder struct {
	calls int64
	err   error
}

func (m *mockEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type mockSearcher struct {
	chunks []chat_type.Chunk
	cached bool
	err    error
	errFor string // fail only for questions containing this substring
	calls  int64
}

func (m *mockSearcher) SearchSimilarChunks(ctx context.Context, embedding []float32, datasetID string, threshold float64, maxChunks int) ([]chat_type.Chunk, bool, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.err != nil {
		return nil, false, m.err
	}
	return m.chunks, m.cached, nil
}

type mockComposer struct {
	answer string
	err    error
	errFor string
}

func (m *mockComposer) ComposeAnswer(ctx context.Context, question string, chunks []chat_type.Chunk, history []chat_type.ChatMessage, facts []chat_type.UserFact) (string, error) {
	if m.errFor != "" && strings.Contains(question, m.errFor) {
		return "", errors.New("generation failed")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.answer != "" {
		return m.answer, nil
	}
	return "answer to: " + question, nil
}

func testQuery(question string) chat_type.Query {
	return chat_type.Query{
		Question:            question,
		DatasetID:           "eaa",
		SimilarityThreshold: 0.75,
		MaxChunks:           3,
		SessionID:           "session-1",
	}
}

func newTestOrchestrator(e *mockEmbedder, s *mockSearcher, c *mockComposer) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(e, s, c, nil, logger)
}

func TestEmptyQuestionNeverReachesGateways(t *testing.T) {
	embedder := &mockEmbedder{}
	o := newTestOrchestrator(embedder, &mockSearcher{}, &mockComposer{})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := o.Process(context.Background(), testQuery(q))
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	assert.Equal(t, int64(0), atomic.LoadInt64(&embedder.calls))
}

func TestSingleQuestionEndToEnd(t *testing.T) {
	searcher := &mockSearcher{chunks: []chat_type.Chunk{
		{ID: "c1", Content: "The EAA is Directive (EU) 2019/882.", Similarity: 0.95},
		{ID: "c2", Content: "It covers products and services.", Similarity: 0.88},
		{ID: "c3", Content: "Deadline: June 2025.", Similarity: 0.81},
	}}
	o := newTestOrchestrator(&mockEmbedder{}, searcher, &mockComposer{})

	result, err := o.Process(context.Background(), testQuery("What is EAA?"))
	require.NoError(t, err)

	assert.NotEmpty(t, result.Answer)
	assert.False(t, DegradedAnswer(result.Answer))
	assert.Len(t, result.Sources, 3)
	assert.Equal(t, "session-1", result.SessionID)
	assert.NotEmpty(t, result.QueryID)
	assert.GreaterOrEqual(t, result.Performance.TotalMS, result.Performance.EmbeddingMS+result.Performance.SearchMS)
}

func TestSessionIDAssignedWhenMissing(t *testing.T) {
	o := newTestOrchestrator(&mockEmbedder{}, &mockSearcher{}, &mockComposer{})

	q := testQuery("What is EAA?")
	q.SessionID = ""
	result, err := o.Process(context.Background(), q)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestEmbeddingFailureDegradesInBand(t *testing.T) {
	o := newTestOrchestrator(&mockEmbedder{err: errors.New("quota exceeded")}, &mockSearcher{}, &mockComposer{})

	result, err := o.Process(context.Background(), testQuery("What is EAA?"))
	require.NoError(t, err, "upstream failure must not surface as an error")
	assert.True(t, DegradedAnswer(result.Answer))
	assert.NotEmpty(t, result.QueryID)
}

func TestGenerationFailureKeepsSources(t *testing.T) {
	searcher := &mockSearcher{chunks: []chat_type.Chunk{{ID: "c1", Similarity: 0.9}}}
	o := newTestOrchestrator(&mockEmbedder{}, searcher, &mockComposer{err: errors.New("model overloaded")})

	result, err := o.Process(context.Background(), testQuery("What is EAA?"))
	require.NoError(t, err)
	assert.True(t, DegradedAnswer(result.Answer))
	assert.Len(t, result.Sources, 1, "retrieval succeeded, sources must survive generation failure")
}

func TestCachedSearchReportsZeroSearchTime(t *testing.T) {
	searcher := &mockSearcher{cached: true, chunks: []chat_type.Chunk{{ID: "c1", Similarity: 0.9}}}
	o := newTestOrchestrator(&mockEmbedder{}, searcher, &mockComposer{})

	result, err := o.Process(context.Background(), testQuery("What is EAA?"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Performance.SearchMS)
}

func TestMultiQuestionPartialFailureIsolation(t *testing.T) {
	searcher := &mockSearcher{chunks: []chat_type.Chunk{{ID: "c1", Similarity: 0.85}}}
	// Sub-question 2 fails at generation; 1 and 3 must still answer.
	o := newTestOrchestrator(&mockEmbedder{}, searcher, &mockComposer{errFor: "ATMs"})

	question := "1. Does the EAA apply to e-books?\n2. What about ATMs?\n3. Are microenterprises exempt?"
	result, err := o.Process(context.Background(), testQuery(question))
	require.NoError(t, err)

	require.Len(t, result.Answers, 3)
	assert.False(t, result.Answers[0].Failed)
	assert.True(t, result.Answers[1].Failed)
	assert.False(t, result.Answers[2].Failed)
	assert.True(t, DegradedAnswer(result.Answers[1].Answer))

	// Order must match the input order regardless of concurrency.
	assert.Contains(t, result.Answers[0].Question, "e-books")
	assert.Contains(t, result.Answers[2].Question, "microenterprises")
}

func TestMultiQuestionAggregatesPerformance(t *testing.T) {
	searcher := &mockSearcher{chunks: []chat_type.Chunk{{ID: "c1", Similarity: 0.85}}}
	o := newTestOrchestrator(&mockEmbedder{}, searcher, &mockComposer{})

	question := "What products does the EAA cover? When does enforcement start in the member states?"
	result, err := o.Process(context.Background(), testQuery(question))
	require.NoError(t, err)

	require.Len(t, result.Answers, 2)
	assert.GreaterOrEqual(t, result.Performance.TotalMS,
		result.Performance.EmbeddingMS+result.Performance.SearchMS)
}
