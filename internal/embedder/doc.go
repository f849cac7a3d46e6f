// Package embedder generates vector embeddings for code symbols using one
// of three providers: Jina AI, OpenAI, or a deterministic local stand-in.
//
// # Basic usage
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: "authenticateUser validates credentials and issues a session",
//	})
//	fmt.Printf("Vector dimension: %d\n", len(result.Vector))
//
// # Batching
//
// GenerateBatch amortizes one HTTP round trip across many texts. A batch is
// rejected locally, before any network call, if it exceeds MaxBatchSize
// items or its combined internal/tokencount estimate exceeds MaxBatchTokens
// — the same cheap token heuristic the Retriever and Pipeline use for
// budget packing, so a batch that would blow an API's per-request token
// ceiling never leaves the process.
//
// # Provider selection
//
// NewFromEnv selects a provider from the environment:
//
//  1. EMBEDDINGS_DISABLED=true → NoOp
//  2. RETRIEVAL_EMBEDDING_PROVIDER set → use that provider
//  3. JINA_API_KEY set → Jina
//  4. OPENAI_API_KEY set → OpenAI
//  5. otherwise → local
//
// # Caching
//
// This package does not cache embeddings itself. internal/builder consults
// internal/embedcache (a persistent, content-hash-keyed store) before ever
// calling an Embedder, so a rebuild over unchanged files never re-requests
// their vectors. internal/resolver keeps a small in-process LRU of query
// embeddings for its own repeated-query case. Providers here always hit the
// network (or, for local, always recompute); that's by design — one cache
// per concern, not one per call site.
//
// # Retries
//
// Jina and OpenAI calls retry with exponential backoff (retryWithBackoff),
// logging each failed attempt via log/slog before giving up with
// ErrProviderFailed. Retry is skipped immediately on context cancellation.
package embedder
