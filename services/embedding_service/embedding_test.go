package embedding_service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndriiEagle/eaa-chatbot-sub002/services/result_cache"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := New(slog.New(slog.NewTextHandler(testWriter{t}, nil)), "test-key", "text-embedding-3-small",
		result_cache.New(10, time.Minute))
	s.apiURL = srv.URL
	return s, srv
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestCreateEmbeddingCachesUpstreamCall(t *testing.T) {
	var calls int64
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is eaa", req.Input)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":  []map[string]interface{}{{"embedding": []float32{0.1, 0.2, 0.3}}},
			"usage": map[string]int{"total_tokens": 3},
		})
	})

	first, err := s.CreateEmbedding(context.Background(), "what is eaa")
	require.NoError(t, err)
	second, err := s.CreateEmbedding(context.Background(), "what is eaa")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second call must be served from cache")
}

func TestCreateEmbeddingPropagatesUpstreamError(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := s.CreateEmbedding(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCreateEmbeddingRejectsEmptyResponse(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	})

	_, err := s.CreateEmbedding(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding data")
}
