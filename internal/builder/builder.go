package builder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

// EmbedCache is the persistent content-hash-keyed vector cache the Builder
// consults before calling the embedder, implemented by internal/embedcache.
type EmbedCache interface {
	Get(hash string) ([]float32, bool)
	Set(hash string, vector []float32)
	Flush() error
}

// Builder walks a root directory, parses every file tree-sitter supports,
// and produces a fresh Code Graph.
type Builder struct {
	Embedder embedder.Embedder
	Cache    EmbedCache
	Workers  int
	Logger   *slog.Logger
}

// New constructs a Builder. If embed is nil, a no-op embedder is
// substituted per the "embeddings disabled" failure mode.
func New(embed embedder.Embedder, cache EmbedCache) *Builder {
	if embed == nil {
		embed = embedder.NoOp()
	}
	logger := slog.Default().With("component", "builder")
	return &Builder{Embedder: embed, Cache: cache, Workers: runtime.NumCPU(), Logger: logger}
}

// Build parses every supported file under root and returns a fresh graph.
func (b *Builder) Build(ctx context.Context, root string) (*graph.Graph, error) {
	w := newWalker(root)

	var paths []struct {
		path string
		lang Language
	}
	err := w.Walk(func(path string, lang Language) error {
		paths = append(paths, struct {
			path string
			lang Language
		}{path, lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]*snapshot, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.Workers))
	var mu sync.Mutex

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			source, rerr := os.ReadFile(filepath.Join(root, p.path))
			if rerr != nil {
				b.Logger.Warn("read failed, skipping file", "path", p.path, "error", rerr)
				return nil
			}
			snap, perr := parseFile(p.path, p.lang, source)
			if perr != nil {
				// Parse failure is fatal to this file only.
				b.Logger.Warn("parse failed, skipping file", "path", p.path, "error", perr)
				return nil
			}
			mu.Lock()
			b.acquireEmbeddings(ctx, snap)
			mu.Unlock()
			snapshots[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if b.Cache != nil {
		if err := b.Cache.Flush(); err != nil {
			b.Logger.Warn("embed cache flush failed", "error", err)
		}
	}

	result := graph.New()
	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		result.UpsertNode(snap.file)
		for _, sym := range snap.symbols {
			result.UpsertNode(sym)
		}
	}
	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		for _, e := range snap.edges {
			_ = result.AddEdge(e) // contains edges always resolve; see parseFile
		}
	}

	exportIndex := result.ExportIndex()
	resolveReferences(result, snapshots, exportIndex, root)

	return result, nil
}

// acquireEmbeddings fills in Embedding/EmbeddingText for every symbol in
// snap, consulting the cache before calling the embedder.
func (b *Builder) acquireEmbeddings(ctx context.Context, snap *snapshot) {
	for _, sym := range snap.symbols {
		text := embeddingText(sym)
		sym.Attributes.EmbeddingText = text
		hash := digestOf([]byte(text))

		if b.Cache != nil {
			if vec, ok := b.Cache.Get(hash); ok {
				sym.Embedding = vec
				continue
			}
		}
		emb, err := b.Embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			b.Logger.Warn("embedding failed, continuing without vector", "symbol", sym.Name, "error", err)
			continue
		}
		sym.Embedding = emb.Vector
		if b.Cache != nil {
			b.Cache.Set(hash, emb.Vector)
		}
	}
}

// embeddingText builds the text handed to the embedder: signature plus
// documentation, falling back to raw content.
func embeddingText(sym *types.Node) string {
	parts := []string{sym.Name}
	if sym.Attributes.Signature != "" {
		parts = append(parts, sym.Attributes.Signature)
	}
	if sym.Attributes.Documentation != "" {
		parts = append(parts, sym.Attributes.Documentation)
	}
	if len(parts) == 1 {
		parts = append(parts, sym.Content)
	}
	return strings.Join(parts, "\n")
}
