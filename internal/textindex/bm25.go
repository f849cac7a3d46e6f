package textindex

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	k1 = 1.5
	b  = 0.75
)

var tokenPattern = regexp.MustCompile(`[^a-z0-9_]+`)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "will": true, "with": true,
}

// Tokenize lowercases s, splits on non-alphanumeric (underscore allowed),
// drops stopwords, and keeps tokens of length >= 2.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	raw := tokenPattern.Split(lower, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Result is one hit returned by Search.
type Result struct {
	ID    string
	Score float64
}

// Index is a BM25 index with k1=1.5, b=0.75 over documents keyed by
// string id. AddDocument replaces any prior entry for the same id.
type Index struct {
	docFreq    map[string]int // term -> number of documents containing it
	docLens    map[string]int
	docTerms   map[string]map[string]int // id -> term -> count
	totalLen   int
	docCount   int
}

// New constructs an empty BM25 index.
func New() *Index {
	return &Index{
		docFreq:  make(map[string]int),
		docLens:  make(map[string]int),
		docTerms: make(map[string]map[string]int),
	}
}

// AddDocument indexes text under id, replacing any prior document with
// that id.
func (idx *Index) AddDocument(id, text string) {
	idx.RemoveDocument(id)

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	idx.docTerms[id] = counts
	idx.docLens[id] = len(tokens)
	idx.totalLen += len(tokens)
	idx.docCount++
	for term := range counts {
		idx.docFreq[term]++
	}
}

// RemoveDocument removes id from the index, if present.
func (idx *Index) RemoveDocument(id string) {
	counts, ok := idx.docTerms[id]
	if !ok {
		return
	}
	for term := range counts {
		idx.docFreq[term]--
		if idx.docFreq[term] <= 0 {
			delete(idx.docFreq, term)
		}
	}
	idx.totalLen -= idx.docLens[id]
	idx.docCount--
	delete(idx.docTerms, id)
	delete(idx.docLens, id)
}

// Search returns ids with positive BM25 score for query, sorted
// descending, truncated to topK. An empty index returns an empty list.
func (idx *Index) Search(query string, topK int) []Result {
	if idx.docCount == 0 {
		return nil
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}
	avgLen := float64(idx.totalLen) / float64(idx.docCount)

	scores := make(map[string]float64)
	for _, term := range terms {
		df := idx.docFreq[term]
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (float64(idx.docCount)-float64(df)+0.5)/(float64(df)+0.5))
		for id, counts := range idx.docTerms {
			tf := float64(counts[term])
			if tf == 0 {
				continue
			}
			docLen := float64(idx.docLens[id])
			denom := tf + k1*(1-b+b*docLen/avgLen)
			scores[id] += idf * (tf * (k1 + 1) / denom)
		}
	}

	out := make([]Result, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			out = append(out, Result{ID: id, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
