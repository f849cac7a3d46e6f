package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

type staticSource struct{ g *graph.Graph }

func (s staticSource) GetGraph() *graph.Graph { return s.g }

func buildAuthGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	authFile := &types.Node{ID: "file:auth", Type: types.NodeFile, Name: "auth.ts", Path: "src/auth.ts", Content: "export function authenticateUser() {}"}
	authFn := &types.Node{
		ID: "fn:authenticateUser", Type: types.NodeFunction, Name: "authenticateUser", Path: "src/auth.ts",
		Content: "export function authenticateUser() {}", StartLine: 1, EndLine: 10,
		Attributes: types.NodeAttributes{Exported: true, EmbeddingText: "authenticateUser validates credentials and issues a session"},
	}
	loginFile := &types.Node{ID: "file:login", Type: types.NodeFile, Name: "login.ts", Path: "src/login.ts", Content: "import auth"}
	loginFn := &types.Node{
		ID: "fn:handleLogin", Type: types.NodeFunction, Name: "handleLogin", Path: "src/login.ts",
		Content: "function handleLogin() { authenticateUser(); }", StartLine: 1, EndLine: 10,
		Attributes: types.NodeAttributes{Exported: true, EmbeddingText: "handleLogin calls authenticateUser on submit"},
	}
	uiFile := &types.Node{ID: "file:ui", Type: types.NodeFile, Name: "ui.ts", Path: "src/ui.ts", Content: "import login"}
	uiFn := &types.Node{
		ID: "fn:renderLogin", Type: types.NodeFunction, Name: "renderLogin", Path: "src/ui.ts",
		Content: "function renderLogin() { handleLogin(); }", StartLine: 1, EndLine: 10,
		Attributes: types.NodeAttributes{Exported: true, EmbeddingText: "renderLogin calls handleLogin to render the form"},
	}

	for _, n := range []*types.Node{authFile, authFn, loginFile, loginFn, uiFile, uiFn} {
		g.UpsertNode(n)
	}

	require.NoError(t, g.AddEdge(&types.Edge{ID: "e1", FromID: authFile.ID, ToID: authFn.ID, Type: types.EdgeContains}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e2", FromID: loginFile.ID, ToID: loginFn.ID, Type: types.EdgeContains}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e3", FromID: uiFile.ID, ToID: uiFn.ID, Type: types.EdgeContains}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e4", FromID: loginFn.ID, ToID: authFn.ID, Type: types.EdgeCalls}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e5", FromID: loginFile.ID, ToID: authFile.ID, Type: types.EdgeImports}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e6", FromID: uiFn.ID, ToID: loginFn.ID, Type: types.EdgeCalls}))
	require.NoError(t, g.AddEdge(&types.Edge{ID: "e7", FromID: uiFile.ID, ToID: loginFile.ID, Type: types.EdgeImports}))

	return g
}

func TestPipelinePassesOnFirstIteration(t *testing.T) {
	g := buildAuthGraph(t)
	p := New(staticSource{g}, nil, nil, Config{})

	result, err := p.Run(context.Background(), Request{
		Query:       "refactor authenticateUser",
		GroundTruth: []string{"src/auth.ts", "src/login.ts"},
		EvalConfig:  types.EvaluationConfig{PrecisionThreshold: 0.5, RecallThreshold: 0.5, CoverageThreshold: 0.85},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, []string{
		"graph.load", "components.build", "retriever.initialize",
		"target.resolve", "context.build", "agent.evaluate",
	}, result.Trace.NodeNames())
}

func TestPipelineWidensSearchUnderStrictThresholds(t *testing.T) {
	g := buildAuthGraph(t)
	p := New(staticSource{g}, nil, nil, Config{})

	result, err := p.Run(context.Background(), Request{
		Query:       "audit authentication pipeline",
		TargetPath:  "src/auth.ts",
		GroundTruth: []string{"src/auth.ts", "src/login.ts", "src/ui.ts", "src/missing.ts"},
		EvalConfig:  types.EvaluationConfig{PrecisionThreshold: 0.95, RecallThreshold: 1.0, CoverageThreshold: 0.5},
	})
	require.NoError(t, err)
	assert.False(t, result.Evaluation.Pass)
	assert.Greater(t, result.Iterations, 1)
	assert.Contains(t, result.Actions, types.ActionEnableCrossEncoder)
	assert.Contains(t, result.Actions, types.ActionIncreaseWalkDepth)
	assert.Contains(t, result.Actions, types.ActionExpandRelated)
}

func TestPipelineErrorsWithoutGraphSource(t *testing.T) {
	p := New(nil, nil, nil, Config{})
	result, err := p.Run(context.Background(), Request{Query: "anything"})
	assert.Error(t, err)
	assert.True(t, result.Trace.HasError())
	assert.Equal(t, []string{"graph.load"}, result.Trace.NodeNames())
}
