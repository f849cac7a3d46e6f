package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gocontext/retrieval/internal/builder"
	"github.com/gocontext/retrieval/internal/config"
	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/embedcache"
	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/manager"
	"github.com/gocontext/retrieval/internal/pipeline"
	"github.com/gocontext/retrieval/internal/store"
)

const (
	// ServerName is the MCP server name advertised during the handshake.
	ServerName = "retrieval-mcp"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// project bundles the per-root Graph Manager and Pipeline a tool call
// operates against.
type project struct {
	manager  *manager.Manager
	pipeline *pipeline.Pipeline
	cache    io.Closer
}

// Server wraps the MCP protocol server with the embedder/cross-encoder
// shared across every indexed project, and a registry of per-root
// projects built lazily on first use.
type Server struct {
	mcp   *server.MCPServer
	embed embedder.Embedder
	cross crossencoder.CrossEncoder
	cfg   *config.Config

	mu       sync.Mutex
	projects map[string]*project
}

// NewServer constructs a Server from cfg, selecting the embedder and
// cross-encoder implementations the environment switches call for.
func NewServer(cfg *config.Config) (*Server, error) {
	embed, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: embedder: %w", err)
	}

	var cross crossencoder.CrossEncoder = crossencoder.NoOp()
	if cfg.CrossEncoderEnabled {
		cross = crossencoder.Heuristic{}
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		embed:    embed,
		cross:    cross,
		cfg:      cfg,
		projects: make(map[string]*project),
	}
	s.registerTools()
	return s, nil
}

func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if cfg.EmbeddingsDisabled {
		return embedder.NoOp(), nil
	}
	return embedder.NewFromEnv()
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeAll()
	return server.ServeStdio(s.mcp)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.cache != nil {
			_ = p.cache.Close()
		}
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexCodebaseTool(), s.handleIndexCodebase)
	s.mcp.AddTool(retrieveContextTool(), s.handleRetrieveContext)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// getOrBuildProject returns the cached project for root, building one
// (and running Initialize) when absent or when forceRebuild is set.
func (s *Server) getOrBuildProject(ctx context.Context, root string, forceRebuild bool) (*project, error) {
	s.mu.Lock()
	p, ok := s.projects[root]
	s.mu.Unlock()
	if ok && !forceRebuild {
		return p, nil
	}

	cache, closer, err := s.openCache(root)
	if err != nil {
		return nil, err
	}

	b := builder.New(s.embed, cache)
	st := store.NewMemory()
	m := manager.New(root, b, st)
	if err := m.Initialize(ctx, forceRebuild); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("mcpserver: initialize %s: %w", root, err)
	}

	pl := pipeline.New(m, s.embed, s.cross, pipeline.Config{MaxIterations: maxIterations(s.cfg)})

	p = &project{manager: m, pipeline: pl, cache: closer}
	s.mu.Lock()
	s.projects[root] = p
	s.mu.Unlock()
	return p, nil
}

func (s *Server) openCache(root string) (builder.EmbedCache, io.Closer, error) {
	if s.cfg.EmbedCacheBackend == "redis" {
		c := embedcache.NewRedisCache(s.cfg.RedisAddr, 0)
		return c, c, nil
	}
	path := expandCachePath(s.cfg.EmbedCachePath, root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mcpserver: create cache dir: %w", err)
	}
	c, err := embedcache.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mcpserver: open embed cache: %w", err)
	}
	return c, c, nil
}

func expandCachePath(path, root string) string {
	if path == "" {
		path = "~/.retrieval/embed-cache.db"
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	_ = root
	return path
}

func maxIterations(cfg *config.Config) int {
	if cfg.MaxIterations <= 0 {
		return 2
	}
	return cfg.MaxIterations
}
