package fusion

import "math"

// Signals is one candidate's raw scoring inputs going into the reranker.
type Signals struct {
	ID           string
	Semantic     float64 // raw ANN similarity
	Lexical      float64 // raw BM25 score
	Exported     bool
	LineSpan     int
	CrossEncoder float64
	HasCross     bool
}

// Reranked is a candidate's blended score plus the normalized signal
// values that produced it, kept for telemetry.
type Reranked struct {
	ID           string
	Score        float64
	Semantic     float64
	Lexical      float64
	Structural   float64
	CrossEncoder float64
	HasCross     bool
}

// Weights controls the reranker's signal blend. Defaults sum to 1 without
// a cross-encoder; when any candidate has one, all four are renormalized
// to sum to 1 with Cross at 0.2.
type Weights struct {
	Semantic   float64
	Lexical    float64
	Structural float64
	Cross      float64
}

// DefaultWeights is the spec's default blend.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.5, Lexical: 0.3, Structural: 0.2}
}

// Rerank blends min-max normalized semantic/lexical/structural/cross
// signals across the candidate set. A constant signal (all candidates
// equal) normalizes to all-ones rather than dividing by zero.
func Rerank(candidates []Signals, weights Weights) []Reranked {
	if len(candidates) == 0 {
		return nil
	}

	semantic := normalize(extract(candidates, func(s Signals) float64 { return s.Semantic }))
	lexical := normalize(extract(candidates, func(s Signals) float64 { return s.Lexical }))
	structural := normalize(structuralSignal(candidates))

	hasCross := false
	for _, c := range candidates {
		if c.HasCross {
			hasCross = true
			break
		}
	}
	var cross []float64
	w := weights
	if hasCross {
		cross = normalize(extract(candidates, func(s Signals) float64 {
			if s.HasCross {
				return s.CrossEncoder
			}
			return 0
		}))
		if w.Cross == 0 {
			w.Cross = 0.2
		}
		sum := w.Semantic + w.Lexical + w.Structural + w.Cross
		if sum > 0 {
			w.Semantic, w.Lexical, w.Structural, w.Cross = w.Semantic/sum, w.Lexical/sum, w.Structural/sum, w.Cross/sum
		}
	}

	out := make([]Reranked, len(candidates))
	for i, c := range candidates {
		r := Reranked{
			ID:         c.ID,
			Semantic:   semantic[i],
			Lexical:    lexical[i],
			Structural: structural[i],
		}
		score := w.Semantic*semantic[i] + w.Lexical*lexical[i] + w.Structural*structural[i]
		if hasCross {
			r.CrossEncoder = cross[i]
			r.HasCross = true
			score += w.Cross * cross[i]
		}
		r.Score = score
		out[i] = r
	}
	return out
}

// structuralSignal combines an exported bit (weight 0.7) with a locality
// factor 1/ln(lineSpan+1) (weight 0.3).
func structuralSignal(candidates []Signals) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		exportedBit := 0.0
		if c.Exported {
			exportedBit = 1.0
		}
		span := c.LineSpan
		if span < 1 {
			span = 1
		}
		locality := 1.0 / math.Log(float64(span)+1)
		out[i] = 0.7*exportedBit + 0.3*locality
	}
	return out
}

func extract(candidates []Signals, f func(Signals) float64) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = f(c)
	}
	return out
}

// normalize applies min-max normalization; a constant input normalizes to
// all-ones.
func normalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}
