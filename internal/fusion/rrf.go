package fusion

import "sort"

// rrfConstant is RRF's k constant, fixed per spec at 60.
const rrfConstant = 60.0

// Ranked is one fused result: an id and its RRF score, plus the original
// per-source scores preserved for telemetry.
type Ranked struct {
	ID         string
	Score      float64
	Semantic   float64
	HasSemantic bool
	Lexical    float64
	HasLexical bool
}

// RRF fuses ann-ranked and bm25-ranked id lists (each already sorted best
// first) with Reciprocal Rank Fusion: an id appearing at 0-based rank r in
// either list contributes 1/(k+r+1). Output is sorted by fused score
// descending and truncated to topK.
func RRF(annIDs []string, annSim []float64, bm25IDs []string, bm25Scores []float64, topK int) []Ranked {
	scores := make(map[string]float64)
	semantic := make(map[string]float64)
	lexical := make(map[string]float64)

	for rank, id := range annIDs {
		scores[id] += 1.0 / (rrfConstant + float64(rank) + 1)
		if rank < len(annSim) {
			semantic[id] = annSim[rank]
		}
	}
	for rank, id := range bm25IDs {
		scores[id] += 1.0 / (rrfConstant + float64(rank) + 1)
		if rank < len(bm25Scores) {
			lexical[id] = bm25Scores[rank]
		}
	}

	out := make([]Ranked, 0, len(scores))
	for id, score := range scores {
		r := Ranked{ID: id, Score: score}
		if v, ok := semantic[id]; ok {
			r.Semantic, r.HasSemantic = v, true
		}
		if v, ok := lexical[id]; ok {
			r.Lexical, r.HasLexical = v, true
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
