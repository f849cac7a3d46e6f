package retriever

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocontext/retrieval/internal/embedder"
	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/internal/textindex"
	"github.com/gocontext/retrieval/internal/tokencount"
	"github.com/gocontext/retrieval/pkg/types"
)

const (
	minTokenBudget = 6000
	maxTokenBudget = 12000

	defaultWalkDepth    = 2
	defaultRelatedLimit = 5
	defaultBreadthLimit = 3

	semanticFloor = 0.6
)

var expansionEdgeTypes = []types.EdgeType{types.EdgeCalls, types.EdgeImports, types.EdgeReferences, types.EdgeContains}

var actionKeywords = map[string]float64{
	"refactor": 2, "fix": 2, "update": 2, "change": 2, "modify": 2,
	"audit": 2, "implement": 2, "add": 1, "remove": 1, "delete": 1,
}

// Options controls one Build call.
type Options struct {
	TargetPath    string
	CandidatePaths []string
	TokenBudget   int
	WalkDepth     int
	RelatedLimit  int
	BreadthLimit  int
}

// Retriever builds a DependencyContext for a target file by walking the
// code graph and ranking a related set, all under a token budget.
type Retriever struct {
	graph *graph.Graph
	embed embedder.Embedder
	bm25  *textindex.Index
}

// New constructs a Retriever over g. embed may be nil, in which case the
// semantic-ranking step of the related set degrades to lexical-only.
func New(g *graph.Graph, embed embedder.Embedder) *Retriever {
	bm25 := textindex.New()
	for _, n := range g.GetAllNodes() {
		text := n.Attributes.EmbeddingText
		if text == "" {
			text = n.Content
		}
		if text != "" {
			bm25.AddDocument(n.ID, text)
		}
	}
	return &Retriever{graph: g, embed: embed, bm25: bm25}
}

// Build assembles a DependencyContext for the resolved target file.
func (re *Retriever) Build(ctx context.Context, query string, resolution *types.Resolution, opts Options) (*types.DependencyContext, error) {
	budget := clampBudget(opts.TokenBudget)
	walkDepth := opts.WalkDepth
	if walkDepth <= 0 {
		walkDepth = defaultWalkDepth
	}
	relatedLimit := opts.RelatedLimit
	if relatedLimit <= 0 {
		relatedLimit = defaultRelatedLimit
	}
	breadthLimit := opts.BreadthLimit
	if breadthLimit <= 0 {
		breadthLimit = defaultBreadthLimit
	}

	targetPath, err := re.resolveTargetPath(opts, resolution)
	if err != nil {
		return nil, err
	}

	targets := re.identifyTargetNodes(query, targetPath, resolution)
	if len(targets) == 0 {
		return nil, fmt.Errorf("retriever: no target nodes found for %s", targetPath)
	}

	forwardAll := bfsDependencies(re.graph, targets, walkDepth, true, nil)
	forward := limitByPriority(forwardAll, breadthLimit)

	// A node reachable both by calling out from the target and by being
	// called from it (mutual/cyclic calls) would otherwise land in both
	// Forward and Backward. Claim every node the forward walk reached,
	// truncated or not, before walking backward so the two sets stay
	// disjoint per the dependency-context invariant.
	claimedByForward := idSet(targets)
	addIDs(claimedByForward, forwardAll)
	backwardAll := bfsDependencies(re.graph, targets, walkDepth, false, claimedByForward)
	backward := limitByPriority(backwardAll, breadthLimit)

	excluded := idSet(targets)
	addIDs(excluded, forward)
	addIDs(excluded, backward)

	related := re.buildRelated(ctx, query, excluded, targets, relatedLimit)

	dc := packBudget(&types.DependencyContext{
		Target: targets, Forward: forward, Backward: backward, Related: related,
	}, budget)

	dc.Formatted = formatContext(dc)
	dc.TokensUsed = tokencount.Count(dc.Formatted)
	fullFile := fullFileTokenEstimate(re.graph, targetPath)
	dc.TokensSaved = maxInt(0, fullFile-dc.TokensUsed)

	dc.Telemetry = re.buildTelemetry(targetPath, resolution, budget, dc.TokensUsed, dc.TokensSaved)

	return dc, nil
}

// resolveTargetPath prefers an explicit option, then the Resolver's
// primary candidate, then the first of the caller-supplied candidate
// paths (accumulated seeds from a prior pipeline iteration).
func (re *Retriever) resolveTargetPath(opts Options, resolution *types.Resolution) (string, error) {
	if opts.TargetPath != "" {
		return normalizePath(opts.TargetPath), nil
	}
	if resolution != nil {
		if primary := resolution.Primary(); primary != nil {
			return normalizePath(primary.Path), nil
		}
	}
	if len(opts.CandidatePaths) > 0 {
		return normalizePath(opts.CandidatePaths[0]), nil
	}
	return "", fmt.Errorf("retriever: no target file could be resolved")
}

// identifyTargetNodes picks the nodes representing the edit site within
// targetPath: Resolver-contributed nodes for that path, else the
// query-scored top 3 in-file symbols, else every function/class in the
// file, else the file node itself.
func (re *Retriever) identifyTargetNodes(query, targetPath string, resolution *types.Resolution) []*types.Node {
	if resolution != nil {
		for _, c := range resolution.Candidates {
			if normalizePath(c.Path) == targetPath && len(c.Nodes) > 0 {
				return dedupeNodes(c.Nodes)
			}
		}
	}

	all := re.graph.GetNodesByPath(targetPath)
	var fileNode *types.Node
	var nonFile []*types.Node
	for _, n := range all {
		if n.Type == types.NodeFile {
			fileNode = n
			continue
		}
		nonFile = append(nonFile, n)
	}
	if len(nonFile) == 0 {
		if fileNode != nil {
			return []*types.Node{fileNode}
		}
		return nil
	}

	if top := scoreNodesByQuery(nonFile, query); len(top) > 0 {
		if len(top) > 3 {
			top = top[:3]
		}
		return top
	}

	var callables []*types.Node
	for _, n := range nonFile {
		if n.IsCallable() {
			callables = append(callables, n)
		}
	}
	if len(callables) > 0 {
		return callables
	}
	if fileNode != nil {
		return []*types.Node{fileNode}
	}
	return nonFile
}

// scoreNodesByQuery scores in-file symbols by query identifier overlap,
// name containment, and action/type keyword bonuses, returning nodes with
// positive score sorted descending.
func scoreNodesByQuery(nodes []*types.Node, query string) []*types.Node {
	queryTerms := textindex.Tokenize(query)
	termSet := make(map[string]bool, len(queryTerms))
	for _, t := range queryTerms {
		termSet[t] = true
	}
	lowerQuery := strings.ToLower(query)

	type scored struct {
		n     *types.Node
		score float64
	}
	var out []scored
	for _, n := range nodes {
		score := 0.0
		for _, t := range textindex.Tokenize(n.Name + " " + n.Attributes.EmbeddingText) {
			if termSet[t] {
				score++
			}
		}
		if strings.Contains(lowerQuery, strings.ToLower(n.Name)) {
			score += 3
		}
		for kw, bonus := range actionKeywords {
			if strings.Contains(lowerQuery, kw) {
				score += bonus * 0.1
			}
		}
		if n.Type == types.NodeFunction && (strings.Contains(lowerQuery, "function") || strings.Contains(lowerQuery, "method")) {
			score += 0.5
		}
		if n.Type == types.NodeClass && (strings.Contains(lowerQuery, "class") || strings.Contains(lowerQuery, "interface")) {
			score += 0.5
		}
		if score > 0 {
			out = append(out, scored{n, score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].n.ID < out[j].n.ID
	})
	result := make([]*types.Node, len(out))
	for i, s := range out {
		result[i] = s.n
	}
	return result
}

// bfsDependencies walks the graph from seeds along DependencyEdgeTypes up
// to depth levels, forward along outgoing edges or backward along
// incoming edges. The seeds themselves, file-typed nodes, and anything in
// exclude are never visited or returned; traversal may still pass through
// a file node to reach symbols beyond it.
func bfsDependencies(g *graph.Graph, seeds []*types.Node, depth int, forward bool, exclude map[string]bool) []*types.Node {
	visited := make(map[string]bool, len(seeds)+len(exclude))
	for _, s := range seeds {
		visited[s.ID] = true
	}
	for id := range exclude {
		visited[id] = true
	}
	type item struct {
		id string
		d  int
	}
	var queue []item
	for _, s := range seeds {
		queue = append(queue, item{s.ID, 0})
	}

	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.d >= depth {
			continue
		}
		var edges []*types.Edge
		if forward {
			edges = g.GetOutgoingEdges(cur.id)
		} else {
			edges = g.GetIncomingEdges(cur.id)
		}
		for _, e := range edges {
			if !types.DependencyEdgeTypes[e.Type] {
				continue
			}
			nbr := e.ToID
			if !forward {
				nbr = e.FromID
			}
			if visited[nbr] {
				continue
			}
			visited[nbr] = true
			queue = append(queue, item{nbr, cur.d + 1})
			order = append(order, nbr)
		}
	}

	var out []*types.Node
	for _, id := range order {
		n, ok := g.GetNode(id)
		if !ok || n.Type == types.NodeFile {
			continue
		}
		out = append(out, n)
	}
	return out
}

// limitByPriority keeps the top `limit` nodes by dependency priority
// (exported x2 + locality), the spec's proxy for "callers most likely to
// matter".
func limitByPriority(nodes []*types.Node, limit int) []*types.Node {
	type scored struct {
		n        *types.Node
		priority float64
	}
	out := make([]scored, len(nodes))
	for i, n := range nodes {
		exported := 0.0
		if n.Attributes.Exported {
			exported = 1
		}
		locality := 1.0 / math.Log(float64(n.LineSpan())+1)
		out[i] = scored{n, 2*exported + locality}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].n.ID < out[j].n.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	result := make([]*types.Node, len(out))
	for i, s := range out {
		result[i] = s.n
	}
	return result
}

// buildRelated ranks the remaining non-excluded, non-file nodes by
// semantic similarity to the query (falling back to a lexical blend when
// the semantic signal is weak), then pads the primary related set with
// exported same-file siblings of the targets, outgoing neighbors of the
// related set, and 1-depth backward dependents of the targets — this
// padding pass includes synthesized "contains" edges, unlike the
// dependency walk above.
func (re *Retriever) buildRelated(ctx context.Context, query string, excluded map[string]bool, targets []*types.Node, relatedLimit int) []*types.Node {
	var remaining []*types.Node
	for _, n := range re.graph.GetAllNodes() {
		if n.Type == types.NodeFile || excluded[n.ID] {
			continue
		}
		remaining = append(remaining, n)
	}

	var queryVec []float32
	if re.embed != nil {
		if emb, err := re.embed.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query}); err == nil && emb != nil {
			queryVec = emb.Vector
		}
	}

	type scored struct {
		n   *types.Node
		sem float64
	}
	scoredList := make([]scored, len(remaining))
	topSem := 0.0
	for i, n := range remaining {
		sem := 0.0
		if len(queryVec) > 0 && len(n.Embedding) == len(queryVec) {
			sem = cosine(queryVec, n.Embedding)
		}
		if sem > topSem {
			topSem = sem
		}
		scoredList[i] = scored{n, sem}
	}

	if topSem < semanticFloor {
		results := re.bm25.Search(query, len(remaining))
		lex := make(map[string]float64, len(results))
		for _, r := range results {
			lex[r.ID] = r.Score
		}
		sems := make([]float64, len(scoredList))
		lexs := make([]float64, len(scoredList))
		for i, s := range scoredList {
			sems[i] = s.sem
			lexs[i] = lex[s.n.ID]
		}
		nsem := minMaxNormalize(sems)
		nlex := minMaxNormalize(lexs)
		for i := range scoredList {
			scoredList[i].sem = 0.6*nsem[i] + 0.4*nlex[i]
		}
	}

	sort.SliceStable(scoredList, func(i, j int) bool {
		if scoredList[i].sem != scoredList[j].sem {
			return scoredList[i].sem > scoredList[j].sem
		}
		return scoredList[i].n.ID < scoredList[j].n.ID
	})

	placed := make(map[string]bool)
	var out []*types.Node
	for _, s := range scoredList {
		if len(out) >= relatedLimit {
			break
		}
		out = append(out, s.n)
		placed[s.n.ID] = true
	}

	pad := func(n *types.Node) {
		if len(out) >= relatedLimit || n == nil {
			return
		}
		if n.Type == types.NodeFile || excluded[n.ID] || placed[n.ID] {
			return
		}
		placed[n.ID] = true
		out = append(out, n)
	}

	for _, t := range targets {
		for _, sib := range re.graph.GetNodesByPath(t.Path) {
			if sib.Attributes.Exported {
				pad(sib)
			}
		}
	}

	for _, n := range append([]*types.Node{}, out...) {
		for _, et := range expansionEdgeTypes {
			edgeType := et
			for _, nb := range re.graph.GetNeighbors(n.ID, &edgeType) {
				pad(nb)
			}
		}
	}

	for _, t := range targets {
		for _, e := range re.graph.GetIncomingEdges(t.ID) {
			if e.Type != types.EdgeContains && !types.DependencyEdgeTypes[e.Type] {
				continue
			}
			if nb, ok := re.graph.GetNode(e.FromID); ok {
				pad(nb)
			}
		}
	}

	return out
}

// packBudget always keeps the target nodes, then greedily packs backward
// within 80% of budget, forward within 95%, and related within 100%,
// costing each candidate by the estimated tokens of its formatted
// rendering.
func packBudget(dc *types.DependencyContext, budget int) *types.DependencyContext {
	used := 0
	for _, n := range dc.Target {
		used += tokencount.Count(formatNode(n, types.CategoryTarget))
	}

	packSection := func(nodes []*types.Node, category types.NodeCategory, fraction float64) []*types.Node {
		limit := int(float64(budget) * fraction)
		var kept []*types.Node
		for _, n := range nodes {
			cost := tokencount.Count(formatNode(n, category))
			if used+cost > limit {
				continue
			}
			used += cost
			kept = append(kept, n)
		}
		return kept
	}

	return &types.DependencyContext{
		Target:   dc.Target,
		Backward: packSection(dc.Backward, types.CategoryBackward, 0.8),
		Forward:  packSection(dc.Forward, types.CategoryForward, 0.95),
		Related:  packSection(dc.Related, types.CategoryRelated, 1.0),
	}
}

// formatContext renders a DependencyContext into the four labelled
// sections: target code, dependents (backward, callers that must
// update), dependencies (forward), and related context.
func formatContext(dc *types.DependencyContext) string {
	var sb strings.Builder
	writeSection := func(title string, category types.NodeCategory, nodes []*types.Node) {
		if len(nodes) == 0 {
			return
		}
		sb.WriteString("# " + title + "\n\n")
		for _, n := range nodes {
			sb.WriteString(formatNode(n, category))
		}
	}
	writeSection("TARGET CODE (being modified)", types.CategoryTarget, dc.Target)
	writeSection("DEPENDENTS (callers that MUST update if signature changes)", types.CategoryBackward, dc.Backward)
	writeSection("DEPENDENCIES", types.CategoryForward, dc.Forward)
	writeSection("RELATED CONTEXT", types.CategoryRelated, dc.Related)
	return sb.String()
}

// formatNode renders one node's heading, location, and fenced content.
// category tags which disjoint DependencyContext section the node was
// placed into, per the categorise-and-deduplicate step of Build.
func formatNode(n *types.Node, category types.NodeCategory) string {
	return fmt.Sprintf("## %s: %s [%s]\n%s:%d-%d\n```\n%s\n```\n\n", n.Type, n.Name, category, n.Path, n.StartLine, n.EndLine, n.Content)
}

// fullFileTokenEstimate is the spec's proxy for "the cost of just handing
// over the whole file": 3x the token count of the target file's own
// content.
func fullFileTokenEstimate(g *graph.Graph, targetPath string) int {
	var contents []string
	for _, n := range g.GetNodesByPath(targetPath) {
		if n.Type == types.NodeFile {
			contents = append(contents, n.Content)
		}
	}
	return 3 * tokencount.CountAll(contents...)
}

func (re *Retriever) buildTelemetry(targetPath string, resolution *types.Resolution, budget, used, saved int) types.RetrievalTelemetry {
	telemetry := types.RetrievalTelemetry{
		PrimaryPath: targetPath,
		Budget:      budget,
		Used:        used,
		Saved:       saved,
	}
	if budget > 0 {
		telemetry.Percent = float64(used) / float64(budget)
	}
	if resolution == nil {
		return telemetry
	}
	telemetry.CandidateCount = len(resolution.Candidates)
	telemetry.SourceScores = make(map[string][]float64)
	sums := make(map[string]float64)
	for _, c := range resolution.Candidates {
		for source, score := range c.SourceScores {
			telemetry.SourceScores[source] = append(telemetry.SourceScores[source], score)
			sums[source] += score
		}
	}
	telemetry.AggregateScores = make(map[string]float64, len(sums))
	for source, sum := range sums {
		n := len(telemetry.SourceScores[source])
		if n > 0 {
			telemetry.AggregateScores[source] = sum / float64(n)
		}
	}
	return telemetry
}

func clampBudget(budget int) int {
	if budget < minTokenBudget {
		return minTokenBudget
	}
	if budget > maxTokenBudget {
		return maxTokenBudget
	}
	return budget
}

func idSet(nodes []*types.Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}

func addIDs(set map[string]bool, nodes []*types.Node) {
	for _, n := range nodes {
		set[n.ID] = true
	}
}

func dedupeNodes(nodes []*types.Node) []*types.Node {
	seen := make(map[string]bool, len(nodes))
	var out []*types.Node
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}
