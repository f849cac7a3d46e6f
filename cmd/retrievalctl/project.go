package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocontext/retrieval/internal/builder"
	"github.com/gocontext/retrieval/internal/config"
	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/embedcache"
	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/manager"
	"github.com/gocontext/retrieval/internal/pipeline"
	"github.com/gocontext/retrieval/internal/store"
)

// cliProject bundles the one-shot Manager/Pipeline a CLI invocation builds
// for a single project root, plus the embed cache handle it must close.
type cliProject struct {
	manager  *manager.Manager
	pipeline *pipeline.Pipeline
	cache    io.Closer
}

func openProject(ctx context.Context, cfg *config.Config, root string, forceRebuild bool) (*cliProject, error) {
	embed, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	var cross crossencoder.CrossEncoder = crossencoder.NoOp()
	if cfg.CrossEncoderEnabled {
		cross = crossencoder.Heuristic{}
	}

	cache, closer, err := openCache(cfg, root)
	if err != nil {
		return nil, err
	}

	b := builder.New(embed, cache)
	st := store.NewMemory()
	m := manager.New(root, b, st)
	if err := m.Initialize(ctx, forceRebuild); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("initialize %s: %w", root, err)
	}

	pl := pipeline.New(m, embed, cross, pipeline.Config{MaxIterations: cfg.MaxIterations})
	return &cliProject{manager: m, pipeline: pl, cache: closer}, nil
}

func (p *cliProject) Close() {
	if p.cache != nil {
		_ = p.cache.Close()
	}
}

func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if cfg.EmbeddingsDisabled {
		return embedder.NoOp(), nil
	}
	return embedder.NewFromEnv()
}

func openCache(cfg *config.Config, root string) (builder.EmbedCache, io.Closer, error) {
	if cfg.EmbedCacheBackend == "redis" {
		c := embedcache.NewRedisCache(cfg.RedisAddr, 0)
		return c, c, nil
	}
	path := expandCachePath(cfg.EmbedCachePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create cache dir: %w", err)
	}
	c, err := embedcache.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open embed cache: %w", err)
	}
	return c, c, nil
}

func expandCachePath(path string) string {
	if path == "" {
		path = "~/.retrieval/embed-cache.db"
	}
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

func resolveRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
