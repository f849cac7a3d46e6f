package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jinaTestResponse(dims int, model string) map[string]interface{} {
	return map[string]interface{}{
		"model": model,
		"data": []map[string]interface{}{
			{"index": 0, "embedding": make([]float32, dims)},
		},
	}
}

func TestJinaProvider(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		os.Unsetenv(EnvJinaAPIKey)
		_, err := NewJinaProvider("")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("falls back to the environment variable", func(t *testing.T) {
		os.Setenv(EnvJinaAPIKey, "env-key")
		defer os.Unsetenv(EnvJinaAPIKey)

		provider, err := NewJinaProvider("")
		require.NoError(t, err)
		defer provider.Close()
		assert.Equal(t, "env-key", provider.apiKey)
	})

	t.Run("provider metadata", func(t *testing.T) {
		provider, err := NewJinaProvider("test-key")
		require.NoError(t, err)
		defer provider.Close()

		assert.Equal(t, ProviderJina, provider.Provider())
		assert.Equal(t, JinaDimension, provider.Dimension())
		assert.Equal(t, DefaultJinaModel, provider.Model())
	})

	t.Run("generates an embedding against a mock endpoint", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(jinaTestResponse(JinaDimension, DefaultJinaModel))
		}))
		defer server.Close()

		provider, err := NewJinaProvider("test-key")
		require.NoError(t, err)
		provider.baseURL = server.URL
		defer provider.Close()

		emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "func foo() {}"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, JinaDimension, emb.Dimension)
		assert.Greater(t, emb.Tokens, 0)
	})

	t.Run("retries transient failures then succeeds", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(jinaTestResponse(JinaDimension, DefaultJinaModel))
		}))
		defer server.Close()

		provider, err := NewJinaProvider("test-key")
		require.NoError(t, err)
		provider.baseURL = server.URL
		defer provider.Close()

		_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "retry me"})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("gives up after MaxRetries failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		provider, err := NewJinaProvider("test-key")
		require.NoError(t, err)
		provider.baseURL = server.URL
		defer provider.Close()

		_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "always fails"})
		assert.ErrorIs(t, err, ErrProviderFailed)
	})

	t.Run("validation errors propagate before any network call", func(t *testing.T) {
		provider, err := NewJinaProvider("test-key")
		require.NoError(t, err)
		defer provider.Close()

		ctx := context.Background()

		_, err = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: ""})
		assert.ErrorIs(t, err, ErrEmptyText)

		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{}})
		assert.ErrorIs(t, err, ErrInvalidInput)

		largeTexts := make([]string, MaxBatchSize+1)
		for i := range largeTexts {
			largeTexts[i] = "text"
		}
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: largeTexts})
		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})
}

func TestOpenAIProvider(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		os.Unsetenv(EnvOpenAIAPIKey)
		_, err := NewOpenAIProvider("")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("provider metadata", func(t *testing.T) {
		provider, err := NewOpenAIProvider("test-key")
		require.NoError(t, err)
		defer provider.Close()

		assert.Equal(t, ProviderOpenAI, provider.Provider())
		assert.Equal(t, OpenAIDimension, provider.Dimension())
		assert.Equal(t, DefaultOpenAIModel, provider.Model())
	})

	t.Run("generates a batch against a mock endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			resp := map[string]interface{}{
				"model": DefaultOpenAIModel,
				"data": []map[string]interface{}{
					{"index": 0, "embedding": make([]float32, OpenAIDimension)},
					{"index": 1, "embedding": make([]float32, OpenAIDimension)},
				},
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		provider, err := NewOpenAIProvider("test-key")
		require.NoError(t, err)
		provider.baseURL = server.URL
		defer provider.Close()

		resp, err := provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"a", "b"}})
		require.NoError(t, err)
		assert.Len(t, resp.Embeddings, 2)
		assert.Equal(t, resp.TotalTokens, resp.Embeddings[0].Tokens+resp.Embeddings[1].Tokens)
	})
}

func TestLocalProvider(t *testing.T) {
	t.Run("is deterministic for equal inputs", func(t *testing.T) {
		provider := NewLocalProvider()
		ctx := context.Background()

		a, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "authenticateUser"})
		require.NoError(t, err)
		b, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "authenticateUser"})
		require.NoError(t, err)

		assert.Equal(t, a.Vector, b.Vector)
	})

	t.Run("differs across inputs", func(t *testing.T) {
		provider := NewLocalProvider()
		ctx := context.Background()

		a, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "authenticateUser"})
		require.NoError(t, err)
		b, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "renderLogin"})
		require.NoError(t, err)

		assert.NotEqual(t, a.Vector, b.Vector)
	})

	t.Run("produces unit-length vectors", func(t *testing.T) {
		provider := NewLocalProvider()
		emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "anything"})
		require.NoError(t, err)

		var sumSquares float64
		for _, v := range emb.Vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, sumSquares, 1e-4)
	})

	t.Run("batch matches sequential single calls", func(t *testing.T) {
		provider := NewLocalProvider()
		ctx := context.Background()
		texts := []string{"one", "two", "three"}

		resp, err := provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts})
		require.NoError(t, err)
		require.Len(t, resp.Embeddings, len(texts))

		for i, text := range texts {
			single, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
			require.NoError(t, err)
			assert.Equal(t, single.Vector, resp.Embeddings[i].Vector)
		}
	})

	t.Run("provider metadata", func(t *testing.T) {
		provider := NewLocalProvider()
		assert.Equal(t, ProviderLocal, provider.Provider())
		assert.Equal(t, LocalDimension, provider.Dimension())
		assert.NoError(t, provider.Close())
	})
}
