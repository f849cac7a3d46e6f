package manager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gocontext/retrieval/internal/builder"
	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/internal/overlay"
	"github.com/gocontext/retrieval/internal/store"
)

// HookEvent is the lifecycle event an overlay hook fires for.
type HookEvent string

const (
	HookCreated   HookEvent = "created"
	HookUpdated   HookEvent = "updated"
	HookCommitted HookEvent = "committed"
	HookDiscarded HookEvent = "discarded"
)

// Hook is called on overlay lifecycle transitions. For HookCommitted,
// payload is the committed overlay's JSON; otherwise nil.
type Hook func(event HookEvent, payload []byte)

// Manager owns the base graph and the single live overlay layered on top
// of it, memoizing overlay.Apply so repeated GetGraph calls between
// mutations are cheap.
type Manager struct {
	root    string
	builder *builder.Builder
	store   store.Store
	logger  *slog.Logger

	mu           sync.Mutex
	base         *graph.Graph
	ov           *overlay.Overlay
	invalidated  bool
	cached       *graph.Graph
	modified     map[string]bool
	hooks        []Hook
}

// New constructs a Manager for root, using b to rebuild from source and s
// to persist/load snapshots.
func New(root string, b *builder.Builder, s store.Store) *Manager {
	return &Manager{
		root:     root,
		builder:  b,
		store:    s,
		logger:   slog.Default().With("component", "manager"),
		modified: make(map[string]bool),
	}
}

// AddHook registers a lifecycle hook.
func (m *Manager) AddHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

func (m *Manager) fire(event HookEvent, payload []byte) {
	for _, h := range m.hooks {
		h(event, payload)
	}
}

// Initialize loads the base graph. When forceRebuild is false it tries the
// store first; on a miss (or when forced) it rebuilds from source via the
// Builder and saves the result. Any existing overlay state is reset.
func (m *Manager) Initialize(ctx context.Context, forceRebuild bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !forceRebuild && m.store != nil {
		if g, ok, err := m.store.Load(m.root); err != nil {
			return fmt.Errorf("manager: load store: %w", err)
		} else if ok {
			m.base = g
			m.resetOverlayLocked()
			return nil
		}
	}

	g, err := m.builder.Build(ctx, m.root)
	if err != nil {
		return fmt.Errorf("manager: build: %w", err)
	}
	if m.store != nil {
		if err := m.store.Save(m.root, g); err != nil {
			m.logger.Warn("store save failed", "error", err)
		}
	}
	m.base = g
	m.resetOverlayLocked()
	return nil
}

// GetGraph returns the base graph when no overlay is live, otherwise a
// memoized overlay.Apply(base), recomputed only after an overlay mutation.
func (m *Manager) GetGraph() *graph.Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getGraphLocked()
}

func (m *Manager) getGraphLocked() *graph.Graph {
	if m.ov == nil || m.ov.IsEmpty() {
		return m.base
	}
	if m.invalidated || m.cached == nil {
		m.cached = m.ov.Apply(m.base)
		m.invalidated = false
	}
	return m.cached
}

// RecordFileModification rebuilds path's snapshot, opens an overlay if
// none exists, drops any prior ops for path, and emits remove ops for
// every base-graph node on that path plus add ops for the new nodes and
// the subset of edges that resolve against a working copy of base+new.
func (m *Manager) RecordFileModification(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.builder.BuildFile(ctx, m.root, path)
	if err != nil {
		return fmt.Errorf("manager: build file %s: %w", path, err)
	}

	if m.ov == nil {
		m.ov = overlay.New(snapshotID(m.base))
		m.fire(HookCreated, nil)
	}
	m.ov.ClearPath(path)

	for _, n := range m.base.GetNodesByPath(path) {
		m.ov.RemoveNode(path, n.ID)
	}

	m.ov.AddNode(path, result.File)
	for _, sym := range result.Symbols {
		m.ov.AddNode(path, sym)
	}
	for _, e := range result.ContainsEdges {
		m.ov.AddEdge(path, e)
	}

	index := m.base.ExportIndex()
	for _, sym := range result.Symbols {
		index[path+"#"+sym.Name] = sym.ID
	}
	imports := builder.ResolveFileImports(m.root, path, result.Symbols)

	for _, ref := range result.References {
		targetID, ok := builder.ResolveReferenceAgainst(ref, imports, result.Symbols, index)
		if !ok {
			continue // placeholder edge unresolvable against the working copy; dropped
		}
		m.ov.AddEdge(path, edgeFor(ref.FromID, targetID, ref.Type))
	}

	m.modified[path] = true
	m.invalidated = true
	m.fire(HookUpdated, nil)
	return nil
}

// MergeOverlay commits by rebuilding the entire graph from source (the
// simplest convergence guarantee available), saving it, and replacing the
// base graph. The overlay's JSON is passed to the committed hook before
// state resets.
func (m *Manager) MergeOverlay(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ov == nil || m.ov.IsEmpty() {
		return nil
	}

	payload, _ := marshalOverlay(m.ov)

	g, err := m.builder.Build(ctx, m.root)
	if err != nil {
		return fmt.Errorf("manager: rebuild on merge: %w", err)
	}
	if m.store != nil {
		if err := m.store.Save(m.root, g); err != nil {
			m.logger.Warn("store save failed", "error", err)
		}
	}
	m.base = g
	m.fire(HookCommitted, payload)
	m.resetOverlayLocked()
	return nil
}

// DiscardOverlay drops the live overlay without touching the base graph.
func (m *Manager) DiscardOverlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetOverlayLocked()
	m.fire(HookDiscarded, nil)
}

// ClearStore clears the persisted snapshot and resets all in-memory state.
func (m *Manager) ClearStore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Clear(m.root); err != nil {
			return err
		}
	}
	m.base = graph.New()
	m.resetOverlayLocked()
	return nil
}

func (m *Manager) resetOverlayLocked() {
	m.ov = nil
	m.cached = nil
	m.invalidated = false
	m.modified = make(map[string]bool)
}

func snapshotID(g *graph.Graph) string {
	data, _ := g.ToJSON()
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func marshalOverlay(ov *overlay.Overlay) ([]byte, error) {
	return jsonMarshal(ov)
}
