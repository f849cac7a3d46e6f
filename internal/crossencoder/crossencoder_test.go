package crossencoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/pkg/types"
)

func TestNoOpAlwaysScoresZero(t *testing.T) {
	ce := NoOp()
	score, err := ce.Score(context.Background(), "auth middleware", &types.Node{Name: "auth"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestHeuristicRewardsTermOverlap(t *testing.T) {
	node := &types.Node{
		Name: "validateToken",
		Attributes: types.NodeAttributes{
			EmbeddingText: "validateToken checks jwt auth token signature",
		},
	}
	ce := Heuristic{}

	high, err := ce.Score(context.Background(), "validate auth token", node)
	require.NoError(t, err)

	low, err := ce.Score(context.Background(), "render dashboard widget", node)
	require.NoError(t, err)

	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, 1.0)
}

func TestHeuristicEmptyQueryScoresZero(t *testing.T) {
	ce := Heuristic{}
	score, err := ce.Score(context.Background(), "", &types.Node{Content: "whatever"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestHeuristicFallsBackToContent(t *testing.T) {
	node := &types.Node{Content: "function login(user, pass) { return auth(user, pass) }"}
	ce := Heuristic{}
	score, err := ce.Score(context.Background(), "auth login", node)
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
}
