package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/evaluator"
	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/internal/resolver"
	"github.com/gocontext/retrieval/internal/retriever"
	"github.com/gocontext/retrieval/pkg/types"
)

const defaultMaxIterations = 2

const (
	startTokenBudget = 6000
	maxTokenBudget   = 12000
	tokenBudgetStep  = 2000

	startWalkDepth = 2
	maxWalkDepth   = 5

	startRelatedLimit = 5
	relatedLimitStep  = 2

	startBreadthLimit = 3
	maxBreadthLimit   = 6
)

// GraphSource supplies the graph a pipeline run operates over. It is
// satisfied by *manager.Manager's GetGraph, kept as an interface here so
// the pipeline doesn't import the manager package just to call one method.
type GraphSource interface {
	GetGraph() *graph.Graph
}

// Config controls a Pipeline's bounded retry behavior.
type Config struct {
	MaxIterations int // defaults to 2
}

// Request is one pipeline run's input.
type Request struct {
	Query       string
	TargetPath  string
	RecentPaths []string
	GroundTruth []string
	EvalConfig  types.EvaluationConfig
}

// Result is the outcome of one pipeline run.
type Result struct {
	Context    *types.DependencyContext
	Resolution *types.Resolution
	Evaluation types.Evaluation
	Iterations int
	Trace      types.Trace
	Actions    []types.Action
}

// Pipeline wires a graph source, embedder, and cross-encoder into
// iterative resolve/build/evaluate runs.
type Pipeline struct {
	source GraphSource
	embed  embedder.Embedder
	cross  crossencoder.CrossEncoder
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
	spans  *memoryExporter
}

// New constructs a Pipeline. cross may be nil; it is only consulted once
// a run's state enables the cross-encoder via the enable_cross_encoder
// action.
func New(source GraphSource, embed embedder.Embedder, cross crossencoder.CrossEncoder, cfg Config) *Pipeline {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	tracer, exp := newTracer()
	return &Pipeline{
		source: source,
		embed:  embed,
		cross:  cross,
		cfg:    cfg,
		logger: slog.Default().With("component", "pipeline"),
		tracer: tracer,
		spans:  exp,
	}
}

// Spans returns the otel spans recorded by Run calls so far, for
// diagnostics and tests. The structured Trace returned from Run remains
// the authoritative artifact; spans are an additive observability layer.
func (p *Pipeline) Spans() []sdktrace.ReadOnlySpan {
	return p.spans.Spans()
}

// searchState is the widened-on-failure parameter set carried across one
// run's iterations. Every field only ever moves toward a wider search.
type searchState struct {
	tokenBudget     int
	walkDepth       int
	relatedLimit    int
	breadthLimit    int
	useCrossEncoder bool
}

func initialState() searchState {
	return searchState{
		tokenBudget:  startTokenBudget,
		walkDepth:    startWalkDepth,
		relatedLimit: startRelatedLimit,
		breadthLimit: startBreadthLimit,
	}
}

func (s *searchState) apply(actions []types.Action) {
	for _, a := range actions {
		switch a {
		case types.ActionEnableCrossEncoder:
			s.useCrossEncoder = true
		case types.ActionIncreaseWalkDepth:
			if s.walkDepth < maxWalkDepth {
				s.walkDepth++
			}
		case types.ActionExpandRelated:
			s.relatedLimit += relatedLimitStep
			if s.breadthLimit < maxBreadthLimit {
				s.breadthLimit++
			}
		case types.ActionIncreaseTokenBudget:
			if s.tokenBudget < maxTokenBudget {
				s.tokenBudget += tokenBudgetStep
			}
		}
	}
}

// Run executes the pipeline's state machine:
// idle -> load_graph -> [build_components -> init_retriever -> resolve ->
// build_context -> evaluate]{<=MaxIterations} -> done. Any stage error
// short-circuits the loop; the caller receives the partial Result and a
// non-nil error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	trace := &types.Trace{}
	result := &Result{}

	var g *graph.Graph
	if ok := p.stage(ctx, trace, "graph.load", func() (map[string]any, error) {
		if p.source == nil {
			return nil, fmt.Errorf("pipeline: no graph source configured")
		}
		g = p.source.GetGraph()
		if g == nil {
			return nil, fmt.Errorf("pipeline: graph source returned nil graph")
		}
		return map[string]any{"nodes": len(g.GetAllNodes())}, nil
	}); !ok {
		result.Trace = *trace
		return result, fmt.Errorf("pipeline: %s", lastTraceError(trace))
	}

	st := initialState()
	var seeds []string
	var actionHistory []types.Action

	for iteration := 1; iteration <= p.cfg.MaxIterations; iteration++ {
		var res *resolver.Resolver
		var ret *retriever.Retriever
		var resolution *types.Resolution
		var dc *types.DependencyContext
		var eval types.Evaluation

		ok := p.stage(ctx, trace, "components.build", func() (map[string]any, error) {
			var cross crossencoder.CrossEncoder
			if st.useCrossEncoder {
				cross = p.cross
			}
			var err error
			res, err = resolver.New(ctx, g, p.embed, cross)
			return map[string]any{"useCrossEncoder": st.useCrossEncoder}, err
		})
		if !ok {
			break
		}

		ok = p.stage(ctx, trace, "retriever.initialize", func() (map[string]any, error) {
			ret = retriever.New(g, p.embed)
			return nil, nil
		})
		if !ok {
			break
		}

		ok = p.stage(ctx, trace, "target.resolve", func() (map[string]any, error) {
			recentPaths := make([]string, 0, len(req.RecentPaths)+len(seeds))
			recentPaths = append(recentPaths, req.RecentPaths...)
			recentPaths = append(recentPaths, seeds...)
			var err error
			resolution, err = res.Resolve(ctx, req.Query, resolver.Options{RecentPaths: recentPaths})
			count := 0
			if resolution != nil {
				count = len(resolution.Candidates)
			}
			return map[string]any{"candidates": count}, err
		})
		if !ok {
			break
		}

		ok = p.stage(ctx, trace, "context.build", func() (map[string]any, error) {
			var err error
			dc, err = ret.Build(ctx, req.Query, resolution, retriever.Options{
				TargetPath:     req.TargetPath,
				CandidatePaths: seeds,
				TokenBudget:    st.tokenBudget,
				WalkDepth:      st.walkDepth,
				RelatedLimit:   st.relatedLimit,
				BreadthLimit:   st.breadthLimit,
			})
			return map[string]any{"tokenBudget": st.tokenBudget, "walkDepth": st.walkDepth}, err
		})
		if !ok {
			break
		}

		_ = p.stage(ctx, trace, "agent.evaluate", func() (map[string]any, error) {
			eval = evaluator.Evaluate(resolution, dc, req.GroundTruth, iteration, req.EvalConfig)
			return map[string]any{"pass": eval.Pass, "precision": eval.Precision, "recall": eval.Recall}, nil
		})

		result.Context = dc
		result.Resolution = resolution
		result.Evaluation = eval
		result.Iterations = iteration
		actionHistory = append(actionHistory, eval.Actions...)

		if eval.Pass || len(eval.Actions) == 0 {
			break
		}

		p.logger.Info("pipeline.iteration", "n", iteration, "precision", eval.Precision, "recall", eval.Recall, "actions", eval.Actions)
		seeds = append(seeds, resolution.Paths()...)
		st.apply(eval.Actions)
	}

	result.Trace = *trace
	result.Actions = actionHistory

	if trace.HasError() {
		return result, fmt.Errorf("pipeline: %s", lastTraceError(trace))
	}
	return result, nil
}

// stage runs fn as one named trace entry, recording start time, duration,
// status, and any metadata/error it returns. It reports whether the
// pipeline should continue to the next stage. Each stage additionally
// opens and closes an otel span of the same name; the span is an additive
// observability layer, the returned Trace remains authoritative.
func (p *Pipeline) stage(ctx context.Context, trace *types.Trace, name string, fn func() (map[string]any, error)) bool {
	_, span := p.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	meta, err := fn()
	entry := types.TraceEntry{
		Node:     name,
		Start:    start,
		Duration: time.Since(start),
		Metadata: meta,
	}
	for k, v := range meta {
		span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", v)))
	}
	if err != nil {
		entry.Status = types.TraceError
		entry.Error = err.Error()
		trace.Append(entry)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("pipeline.stage.error", "node", name, "error", err)
		return false
	}
	entry.Status = types.TraceOK
	trace.Append(entry)
	span.SetStatus(codes.Ok, "")
	return true
}

func lastTraceError(trace *types.Trace) string {
	for i := len(trace.Entries) - 1; i >= 0; i-- {
		if trace.Entries[i].Status == types.TraceError {
			return trace.Entries[i].Error
		}
	}
	return ""
}
