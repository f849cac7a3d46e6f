package annindex

import (
	"math"
	"sort"
)

type candidate struct {
	id  uint32
	sim float64
}

// greedyDescend walks from ep toward the closest neighbor to query at
// layer, repeating until no neighbor improves on the current node.
func (idx *Index) greedyDescend(ep uint32, query []float32, layer int) uint32 {
	current := ep
	currentSim := idx.similarityTo(current, query)
	for {
		improved := false
		for _, neighbor := range idx.neighborsAt(current, layer) {
			if idx.nodes[neighbor].deleted {
				continue
			}
			sim := idx.similarityTo(neighbor, query)
			if sim > currentSim {
				current, currentSim = neighbor, sim
				improved = true
			}
		}
		if !improved {
			return current
		}
	}
}

// searchLayer performs a beam search at layer starting from ep, keeping
// the ef best candidates found.
func (idx *Index) searchLayer(ep uint32, query []float32, ef, layer int) []candidate {
	visited := map[uint32]bool{ep: true}
	start := candidate{id: ep, sim: idx.similarityTo(ep, query)}
	best := []candidate{start}
	frontier := []candidate{start}

	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].sim > frontier[j].sim })
		cur := frontier[0]
		frontier = frontier[1:]

		for _, neighbor := range idx.neighborsAt(cur.id, layer) {
			if visited[neighbor] || idx.nodes[neighbor].deleted {
				continue
			}
			visited[neighbor] = true
			sim := idx.similarityTo(neighbor, query)
			c := candidate{id: neighbor, sim: sim}
			best = append(best, c)
			frontier = append(frontier, c)
		}
	}

	sortBySimilarityDesc(best)
	if len(best) > ef {
		best = best[:ef]
	}
	return best
}

// insert links internalID into every layer from min(level, maxLevel) down
// to 0: find ef-best neighbors, keep the closest M, link symmetrically,
// and prune the neighbor's set back to M by closest.
func (idx *Index) insert(internalID uint32, level int) {
	ep := idx.entry
	query := idx.nodes[internalID].vector

	for layer := idx.maxLevel; layer > min(level, idx.maxLevel); layer-- {
		ep = idx.greedyDescend(ep, query, layer)
	}

	for layer := min(level, idx.maxLevel); layer >= 0; layer-- {
		candidates := idx.searchLayer(ep, query, idx.efConstruction, layer)
		selected := selectClosest(candidates, idx.maxConnections)

		for _, c := range selected {
			idx.link(internalID, c.id, layer)
			idx.link(c.id, internalID, layer)
			idx.pruneToM(c.id, layer)
		}
		if len(selected) > 0 {
			ep = selected[0].id
		}
	}
}

func (idx *Index) link(from, to uint32, layer int) {
	n := idx.nodes[from]
	for len(n.connections) <= layer {
		n.connections = append(n.connections, nil)
	}
	for _, existing := range n.connections[layer] {
		if existing == to {
			return
		}
	}
	n.connections[layer] = append(n.connections[layer], to)
}

// pruneToM trims id's neighbor set at layer back to the M closest to id's
// own vector.
func (idx *Index) pruneToM(id uint32, layer int) {
	n := idx.nodes[id]
	if layer >= len(n.connections) || len(n.connections[layer]) <= idx.maxConnections {
		return
	}
	cands := make([]candidate, 0, len(n.connections[layer]))
	for _, neighbor := range n.connections[layer] {
		cands = append(cands, candidate{id: neighbor, sim: idx.similarityTo(neighbor, n.vector)})
	}
	sortBySimilarityDesc(cands)
	kept := cands[:idx.maxConnections]
	n.connections[layer] = make([]uint32, len(kept))
	for i, c := range kept {
		n.connections[layer][i] = c.id
	}
}

func selectClosest(cands []candidate, m int) []candidate {
	sortBySimilarityDesc(cands)
	if len(cands) > m {
		cands = cands[:m]
	}
	return cands
}

func (idx *Index) neighborsAt(id uint32, layer int) []uint32 {
	n := idx.nodes[id]
	if layer >= len(n.connections) {
		return nil
	}
	return n.connections[layer]
}

func (idx *Index) similarityTo(id uint32, query []float32) float64 {
	return cosine(idx.nodes[id].vector, query)
}

func sortBySimilarityDesc(c []candidate) {
	sort.Slice(c, func(i, j int) bool { return c[i].sim > c[j].sim })
}

func removeUint32(s []uint32, v uint32) []uint32 {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// cosine computes cosine similarity, equivalent to the dot product since
// both vectors are L2-normalized on insert/query.
func cosine(a, b []float32) float64 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

