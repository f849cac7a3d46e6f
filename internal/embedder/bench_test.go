package embedder

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkLocalProviderGenerateEmbedding(b *testing.B) {
	texts := []string{
		"short",
		"medium length text for embedding",
		"this is a longer text that represents a typical code chunk that might be embedded for semantic search in a codebase",
	}

	provider := NewLocalProvider()
	ctx := context.Background()

	for _, text := range texts {
		b.Run(fmt.Sprintf("len=%d", len(text)), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
			}
		})
	}
}

func BenchmarkLocalProviderGenerateBatch(b *testing.B) {
	provider := NewLocalProvider()
	ctx := context.Background()

	for _, size := range []int{1, 10, 50} {
		texts := make([]string, size)
		for i := range texts {
			texts[i] = fmt.Sprintf("symbol number %d with a short doc comment", i)
		}

		b.Run(fmt.Sprintf("batch=%d", size), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts})
			}
		})
	}
}

func BenchmarkValidateBatchRequest(b *testing.B) {
	texts := make([]string, DefaultBatchSize)
	for i := range texts {
		texts[i] = fmt.Sprintf("symbol-%d", i)
	}
	req := BatchEmbeddingRequest{Texts: texts}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ValidateBatchRequest(req)
	}
}
