package crossencoder

import (
	"context"
	"strings"
	"unicode"

	"github.com/gocontext/retrieval/pkg/types"
)

// score(query, node) -> [0,1], best-effort; failures yield 0 and never
// propagate to the caller.
type CrossEncoder interface {
	Score(ctx context.Context, query string, node *types.Node) (float64, error)
}

// noop never scores anything; the Resolver treats its absence the same as
// a nil CrossEncoder, this type exists for call sites that want a non-nil
// default.
type noop struct{}

// NoOp returns a CrossEncoder that always scores 0.
func NoOp() CrossEncoder { return noop{} }

func (noop) Score(ctx context.Context, query string, node *types.Node) (float64, error) {
	return 0, nil
}

// Heuristic scores lexical overlap between the query and a node's
// embedding text (or content), normalized by query length. It stands in
// for a learned cross-encoder model when none is configured, per
// CROSS_ENCODER_ENABLED.
type Heuristic struct{}

func (Heuristic) Score(ctx context.Context, query string, node *types.Node) (float64, error) {
	queryTerms := splitTerms(query)
	if len(queryTerms) == 0 {
		return 0, nil
	}
	text := node.Attributes.EmbeddingText
	if text == "" {
		text = node.Content
	}
	docTerms := termSet(splitTerms(text))

	hits := 0
	for _, t := range queryTerms {
		if docTerms[t] {
			hits++
		}
	}
	score := float64(hits) / float64(len(queryTerms))
	if score > 1 {
		score = 1
	}
	return score, nil
}

func splitTerms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func termSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}
