package annindex

import (
	"errors"
	"math"
	"math/rand"
	"sync"
)

var (
	// ErrDimensionMismatch is returned when a vector's length doesn't
	// match the dimension fixed by the first insert.
	ErrDimensionMismatch = errors.New("annindex: vector dimension mismatch")
	// ErrEmptyVector is returned for zero-length vectors.
	ErrEmptyVector = errors.New("annindex: vector must not be empty")
)

// Index is a layered small-world approximate nearest-neighbor index over
// L2-normalized float32 vectors, searched by cosine similarity.
type Index struct {
	mu sync.RWMutex

	dim            int
	maxConnections int // M
	efConstruction int
	efSearch       int

	byExternalID map[string]uint32
	nodes        []*node // indexed by internal id
	entry        uint32
	hasEntry     bool
	maxLevel     int

	rng *rand.Rand
}

// Config controls HNSW construction/search parameters.
type Config struct {
	MaxConnections int // M, default 16
	EfConstruction int // default 200
	EfSearch       int // default 64
}

// New constructs an empty index. Dimension is fixed on first insert.
func New(cfg Config) *Index {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 16
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = 200
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = 64
	}
	return &Index{
		maxConnections: cfg.MaxConnections,
		efConstruction: cfg.EfConstruction,
		efSearch:       cfg.EfSearch,
		byExternalID:   make(map[string]uint32),
		rng:            rand.New(rand.NewSource(1)),
	}
}

// Reset clears the index back to empty, keeping its configuration.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dim = 0
	idx.byExternalID = make(map[string]uint32)
	idx.nodes = nil
	idx.hasEntry = false
	idx.maxLevel = 0
}

// Stats reports the index's current shape.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	count := 0
	for _, n := range idx.nodes {
		if !n.deleted {
			count++
		}
	}
	return Stats{Count: count, Dimension: idx.dim, MaxLevel: idx.maxLevel, MaxConnections: idx.maxConnections}
}

// Add inserts or replaces the vector for id. Replacing an existing id is a
// semantic update: the old node is marked deleted, so Search never returns
// its vector again, and the new vector is inserted at a freshly sampled
// level.
func (idx *Index) Add(id string, vector []float32) error {
	if len(vector) == 0 {
		return ErrEmptyVector
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dim == 0 {
		idx.dim = len(vector)
	} else if len(vector) != idx.dim {
		return ErrDimensionMismatch
	}

	if internalID, ok := idx.byExternalID[id]; ok {
		idx.nodes[internalID].deleted = true
	}

	level := idx.sampleLevel()
	n := &node{
		id:          id,
		vector:      normalize(vector),
		connections: make([][]uint32, level+1),
		level:       level,
	}
	internalID := uint32(len(idx.nodes))
	idx.nodes = append(idx.nodes, n)
	idx.byExternalID[id] = internalID

	if !idx.hasEntry {
		idx.entry = internalID
		idx.hasEntry = true
		idx.maxLevel = level
		return nil
	}

	idx.insert(internalID, level)
	if level > idx.maxLevel {
		idx.entry = internalID
		idx.maxLevel = level
	}
	return nil
}

// Remove soft-deletes id, detaching it from every layer's neighbor sets.
// If it was the entry point, a new one is chosen among surviving nodes.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	internalID, ok := idx.byExternalID[id]
	if !ok {
		return
	}
	idx.nodes[internalID].deleted = true
	delete(idx.byExternalID, id)

	for _, n := range idx.nodes {
		for layer := range n.connections {
			n.connections[layer] = removeUint32(n.connections[layer], internalID)
		}
	}

	if idx.entry == internalID {
		idx.recomputeEntry()
	}
}

func (idx *Index) recomputeEntry() {
	idx.hasEntry = false
	idx.maxLevel = 0
	for i, n := range idx.nodes {
		if n.deleted {
			continue
		}
		if !idx.hasEntry || n.level > idx.maxLevel {
			idx.entry = uint32(i)
			idx.maxLevel = n.level
			idx.hasEntry = true
		}
	}
}

// Search returns up to topK nearest neighbors to query by cosine
// similarity, sorted descending. An empty index or a dimension mismatch
// returns an empty list rather than an error, so callers can fall back to
// lexical search unconditionally.
func (idx *Index) Search(query []float32, topK int, ef int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.hasEntry || len(query) != idx.dim || topK <= 0 {
		return nil
	}
	if ef < topK {
		ef = idx.efSearch
	}
	if ef < topK {
		ef = topK
	}
	q := normalize(query)

	ep := idx.entry
	for layer := idx.maxLevel; layer > 0; layer-- {
		ep = idx.greedyDescend(ep, q, layer)
	}

	candidates := idx.searchLayer(ep, q, ef, 0)
	sortBySimilarityDesc(candidates)
	// A replaced id's old node stays in the graph and may be the entry
	// point, which searchLayer always returns.
	live := candidates[:0]
	for _, c := range candidates {
		if !idx.nodes[c.id].deleted {
			live = append(live, c)
		}
	}
	candidates = live
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Result{ID: idx.nodes[c.id].id, Similarity: c.sim})
	}
	return out
}

// sampleLevel draws a level ~ floor(-ln(U) / ln(M)).
func (idx *Index) sampleLevel() int {
	u := idx.rng.Float64()
	if u <= 0 {
		u = 1e-12
	}
	level := int(math.Floor(-math.Log(u) / math.Log(float64(idx.maxConnections))))
	if level < 0 {
		level = 0
	}
	return level
}
