package evaluator

import (
	"math"

	"github.com/gocontext/retrieval/pkg/types"
)

// canonicalActionOrder fixes a deterministic order for the action set so
// that two evaluations which trigger the same conditions produce
// identically ordered Evaluation.Actions, even though the underlying
// collection is semantically a set.
var canonicalActionOrder = []types.Action{
	types.ActionEnableCrossEncoder,
	types.ActionIncreaseWalkDepth,
	types.ActionExpandRelated,
	types.ActionIncreaseTokenBudget,
}

// Evaluate scores resolution/dc against groundTruth under cfg. iteration
// is accepted for the caller's trace/logging purposes but does not affect
// the computation.
func Evaluate(resolution *types.Resolution, dc *types.DependencyContext, groundTruth []string, iteration int, cfg types.EvaluationConfig) types.Evaluation {
	candidatePaths := resolution.Paths()
	candidateCount := len(candidatePaths)

	k := cfg.MaxK
	if k <= 0 {
		k = candidateCount
	}
	if k > candidateCount {
		k = candidateCount
	}
	if k < 0 {
		k = 0
	}

	truth := make(map[string]bool, len(groundTruth))
	for _, p := range groundTruth {
		truth[p] = true
	}

	hits := 0
	for _, p := range candidatePaths[:k] {
		if truth[p] {
			hits++
		}
	}

	precision := 0.0
	if k > 0 {
		precision = float64(hits) / float64(k)
	}

	recall := 1.0
	if len(truth) > 0 {
		recall = float64(hits) / float64(len(truth))
	}

	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	coverage := 0.0
	budget := 0
	used := 0
	if dc != nil {
		budget = dc.Telemetry.Budget
		used = dc.TokensUsed
	}
	if budget > 0 {
		coverage = float64(used) / float64(budget)
	}

	pass := precision >= cfg.PrecisionThreshold && recall >= cfg.RecallThreshold

	actionSet := make(map[types.Action]bool)
	if precision < cfg.PrecisionThreshold {
		actionSet[types.ActionEnableCrossEncoder] = true
		actionSet[types.ActionIncreaseWalkDepth] = true
		actionSet[types.ActionExpandRelated] = true
		if precision < math.Min(0.4, cfg.PrecisionThreshold) {
			actionSet[types.ActionIncreaseTokenBudget] = true
		}
	}
	if recall < cfg.RecallThreshold {
		actionSet[types.ActionIncreaseWalkDepth] = true
		actionSet[types.ActionExpandRelated] = true
	}
	if cfg.CoverageThreshold > 0 && coverage > cfg.CoverageThreshold {
		actionSet[types.ActionIncreaseTokenBudget] = true
	}

	var actions []types.Action
	for _, a := range canonicalActionOrder {
		if actionSet[a] {
			actions = append(actions, a)
		}
	}

	return types.Evaluation{
		K:         k,
		Hits:      hits,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Coverage:  coverage,
		Pass:      pass,
		Actions:   actions,
	}
}
