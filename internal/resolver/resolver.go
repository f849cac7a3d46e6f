package resolver

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gocontext/retrieval/internal/annindex"
	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/fusion"
	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/internal/textindex"
	"github.com/gocontext/retrieval/pkg/types"
)

// queryCacheSize bounds the Resolver's in-process query-embedding cache.
// Pipeline widening re-issues the same or a lightly-modified query across
// iterations, so caching a few hundred recent query vectors avoids
// re-embedding them on every widen.
const queryCacheSize = 256

// DefaultLimit is the candidate-list length Resolve truncates to when the
// caller doesn't request a different one.
const DefaultLimit = 10

// seedScoreBonus is the fixed score a seed path (from recentPaths or a
// query-inferred path) receives.
const seedScoreBonus = 5.0

// Options controls one Resolve call.
type Options struct {
	RecentPaths []string // dataset/session hint: paths the caller has recently touched
	Limit       int       // defaults to DefaultLimit when <= 0
}

// Resolver builds an ANN index and a BM25 index once from a graph snapshot
// at construction and answers queries against them. Indexes never mutate
// after New returns; a new Resolver must be constructed to reflect an
// updated graph (or to add/remove a cross-encoder).
type Resolver struct {
	graph *graph.Graph
	embed embedder.Embedder
	cross crossencoder.CrossEncoder

	ann  *annindex.Index
	bm25 *textindex.Index

	nodesByID map[string]*types.Node
	// nameIndex maps a lowercased symbol/file name to the set of
	// normalized paths it appears under, for query-to-path inference.
	nameIndex map[string]map[string]bool

	// queryCache holds recently-embedded query vectors, keyed by the exact
	// query string. It never holds graph-node vectors (those live on the
	// node / in the ANN index) and is unrelated to internal/embedcache's
	// persistent, content-hash-keyed store.
	queryCache *lru.Cache[string, []float32]
}

var authWords = []string{"auth", "token", "login", "oauth"}
var uiWords = []string{"ui", "component", "tsx", "react", "form", "input", "button", "validation"}
var testWords = []string{"test", "spec"}

var knownExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py"}

// New builds a Resolver over every node in g. embed and cross may be nil;
// nodes that already carry an embedding are ANN-indexed either way, but a
// nil embed skips ANN search (and semantic scoring falls back to lexical
// alone); a nil cross disables the reranker's cross-encoder term.
func New(ctx context.Context, g *graph.Graph, embed embedder.Embedder, cross crossencoder.CrossEncoder) (*Resolver, error) {
	queryCache, err := lru.New[string, []float32](queryCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which queryCacheSize never is.
		return nil, err
	}

	r := &Resolver{
		graph:      g,
		embed:      embed,
		cross:      cross,
		ann:        annindex.New(annindex.Config{}),
		bm25:       textindex.New(),
		nodesByID:  make(map[string]*types.Node),
		nameIndex:  make(map[string]map[string]bool),
		queryCache: queryCache,
	}

	for _, n := range g.GetAllNodes() {
		r.nodesByID[n.ID] = n

		if len(n.Embedding) > 0 {
			// Add never fails here: dimension is fixed by the graph's
			// embedder for the whole build, and vectors are non-empty.
			_ = r.ann.Add(n.ID, n.Embedding)
		}

		text := n.Attributes.EmbeddingText
		if text == "" {
			text = n.Content
		}
		if text != "" {
			r.bm25.AddDocument(n.ID, text)
		}

		path := normalizePath(n.Path)
		r.indexName(n.Name, path)
		if n.Type == types.NodeFile {
			r.indexName(filepath.Base(path), path)
		}
	}

	return r, nil
}

func (r *Resolver) indexName(name, path string) {
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	set, ok := r.nameIndex[key]
	if !ok {
		set = make(map[string]bool)
		r.nameIndex[key] = set
	}
	set[path] = true
}

// Resolve turns query into a ranked Resolution. An empty Resolution (no
// error) is returned when neither ANN nor BM25 produce any hits and no
// seed/intent boost applies.
func (r *Resolver) Resolve(ctx context.Context, query string, opts Options) (*types.Resolution, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	seed := limit * 3
	if seed < limit {
		seed = limit
	}

	annIDs, annSims := r.searchANN(ctx, query, seed)
	bm25Results := r.bm25.Search(query, seed)
	bm25IDs := make([]string, len(bm25Results))
	bm25Scores := make([]float64, len(bm25Results))
	for i, res := range bm25Results {
		bm25IDs[i] = res.ID
		bm25Scores[i] = res.Score
	}

	byPath := make(map[string]*types.Candidate)
	getCandidate := func(path string) *types.Candidate {
		c, ok := byPath[path]
		if !ok {
			c = &types.Candidate{Path: path, SourceScores: make(map[string]float64)}
			byPath[path] = c
		}
		return c
	}

	if len(annIDs) > 0 || len(bm25IDs) > 0 {
		fused := fusion.RRF(annIDs, annSims, bm25IDs, bm25Scores, seed)
		signals := make([]fusion.Signals, 0, len(fused))
		for _, f := range fused {
			n, ok := r.nodesByID[f.ID]
			if !ok {
				continue
			}
			s := fusion.Signals{
				ID:       f.ID,
				Semantic: f.Semantic,
				Lexical:  f.Lexical,
				Exported: n.Attributes.Exported,
				LineSpan: n.LineSpan(),
			}
			if r.cross != nil {
				score, err := r.cross.Score(ctx, query, n)
				if err == nil {
					s.CrossEncoder, s.HasCross = score, true
				}
			}
			signals = append(signals, s)
		}

		reranked := fusion.Rerank(signals, fusion.DefaultWeights())
		sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })

		for _, rr := range reranked {
			n, ok := r.nodesByID[rr.ID]
			if !ok {
				continue
			}
			c := getCandidate(normalizePath(n.Path))
			c.Score += rr.Score
			c.Semantic += rr.Semantic
			c.Lexical += rr.Lexical
			c.Structural += rr.Structural
			c.SourceScores["semantic"] += rr.Semantic
			c.SourceScores["lexical"] += rr.Lexical
			c.SourceScores["structural"] += rr.Structural
			if rr.HasCross {
				c.CrossEncoder += rr.CrossEncoder
				c.HasCrossEncoder = true
				c.SourceScores["cross"] += rr.CrossEncoder
			}
			c.Nodes = append(c.Nodes, n)
			c.AddReason("Matched symbol " + n.Name)
		}
	}

	for _, path := range r.seedPaths(query, opts.RecentPaths) {
		c := getCandidate(path)
		c.Score += seedScoreBonus
		c.AddReason("Seed path (dataset hint)")
	}

	recent := make(map[string]bool, len(opts.RecentPaths))
	for _, p := range opts.RecentPaths {
		recent[normalizePath(p)] = true
	}
	for path, c := range byPath {
		if recent[path] {
			c.Score += 1
			c.AddReason("Recent focus")
		}
	}

	r.applyIntentBoosts(query, byPath)

	out := make([]*types.Candidate, 0, len(byPath))
	for _, c := range byPath {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return &types.Resolution{Candidates: out}, nil
}

func (r *Resolver) searchANN(ctx context.Context, query string, seed int) ([]string, []float64) {
	if r.embed == nil {
		return nil, nil
	}

	vector, ok := r.queryCache.Get(query)
	if !ok {
		emb, err := r.embed.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
		if err != nil || emb == nil || len(emb.Vector) == 0 {
			return nil, nil
		}
		vector = emb.Vector
		r.queryCache.Add(query, vector)
	}

	results := r.ann.Search(vector, seed, 0)
	ids := make([]string, len(results))
	sims := make([]float64, len(results))
	for i, res := range results {
		ids[i] = res.ID
		sims[i] = res.Similarity
	}
	return ids, sims
}

// seedPaths computes dataset-hint candidate paths: recentPaths plus paths
// inferred from the query itself, either literal file tokens with a known
// extension or tokens matching an indexed symbol/file name.
func (r *Resolver) seedPaths(query string, recentPaths []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		path = normalizePath(path)
		if path == "" || seen[path] {
			return
		}
		if len(r.graph.GetNodesByPath(path)) == 0 {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, p := range recentPaths {
		add(p)
	}

	for _, tok := range strings.Fields(query) {
		tok = strings.Trim(tok, ".,;:()\"'`")
		if tok == "" {
			continue
		}
		if hasKnownExtension(tok) {
			add(tok)
			continue
		}
		if paths, ok := r.nameIndex[strings.ToLower(tok)]; ok {
			for path := range paths {
				add(path)
			}
		}
	}
	return out
}

func hasKnownExtension(tok string) bool {
	ext := strings.ToLower(filepath.Ext(tok))
	for _, known := range knownExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// applyIntentBoosts adds the spec's hard-coded path-pattern boosts based
// on keywords present in the query.
func (r *Resolver) applyIntentBoosts(query string, byPath map[string]*types.Candidate) {
	lower := strings.ToLower(query)

	if containsAny(lower, authWords) {
		for path, c := range byPath {
			if strings.Contains(path, "src/auth/") {
				c.Score += 2
				c.AddReason("Auth intent boost")
			}
		}
	}
	if containsAny(lower, uiWords) {
		for path, c := range byPath {
			if strings.Contains(path, "src/ui/") {
				c.Score += 2
				c.AddReason("UI intent boost")
			}
		}
	}
	if containsAny(lower, testWords) {
		for path, c := range byPath {
			if strings.Contains(path, "tests/") {
				c.Score += 1.5
				c.AddReason("Test intent boost")
			}
		}
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}
