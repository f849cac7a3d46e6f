package embedder

import (
	"context"

	"github.com/gocontext/retrieval/internal/tokencount"
)

// ProviderNoOp is the provider name reported when embeddings are disabled.
const ProviderNoOp = "noop"

// noopEmbedder returns empty vectors for every request. NewFromEnv returns
// it when EMBEDDINGS_DISABLED is set, and the Builder substitutes it when
// given a nil embedder. A provider that fails to initialize is not replaced
// by it: NewFromEnv returns that error to the caller.
type noopEmbedder struct{}

// NoOp returns an Embedder that never fails and never produces a vector.
func NoOp() Embedder { return noopEmbedder{} }

func (noopEmbedder) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	return &Embedding{Provider: ProviderNoOp, Model: ProviderNoOp, Tokens: tokencount.Count(req.Text)}, nil
}

func (noopEmbedder) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	out := make([]*Embedding, len(req.Texts))
	total := 0
	for i, text := range req.Texts {
		tokens := tokencount.Count(text)
		out[i] = &Embedding{Provider: ProviderNoOp, Model: ProviderNoOp, Tokens: tokens}
		total += tokens
	}
	return &BatchEmbeddingResponse{Embeddings: out, Provider: ProviderNoOp, Model: ProviderNoOp, TotalTokens: total}, nil
}

func (noopEmbedder) Dimension() int   { return 0 }
func (noopEmbedder) Provider() string { return ProviderNoOp }
func (noopEmbedder) Model() string    { return ProviderNoOp }
func (noopEmbedder) Close() error     { return nil }
