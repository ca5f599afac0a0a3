package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingClientEmbed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Content.Parts, 1)
		assert.Equal(t, "과제 마감일", req.Content.Parts[0].Text)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{
				"values": []float32{0.1, 0.2, 0.3},
			},
		})
	}))
	defer srv.Close()

	client := NewEmbeddingClient("test-key")
	client.SetBaseURL(srv.URL)

	vec, err := client.Embed(context.Background(), "과제 마감일")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbeddingClientEmbedPermanentError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "invalid argument",
				"status":  "INVALID_ARGUMENT",
			},
		})
	}))
	defer srv.Close()

	client := NewEmbeddingClient("test-key")
	client.SetBaseURL(srv.URL)

	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	assert.Equal(t, int32(1), calls.Load(), "permanent errors must not be retried")
}

func TestEmbeddingClientRejectsEmptyText(t *testing.T) {
	t.Parallel()

	client := NewEmbeddingClient("test-key")

	_, err := client.Embed(context.Background(), "   ")
	require.Error(t, err)
}

func TestEmbeddingClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	client := NewEmbeddingClient("")
	assert.False(t, client.IsConfigured())

	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
}

func TestEmbeddingFuncAdapter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{
				"values": []float32{1, 2},
			},
		})
	}))
	defer srv.Close()

	client := NewEmbeddingClient("test-key")
	client.SetBaseURL(srv.URL)

	fn := client.EmbeddingFunc()
	vec, err := fn(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 2)
}
