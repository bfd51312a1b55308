package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/plebguard/plebguard/internal/publication"
)

// factorFunc computes one factor given the evaluation context and its
// configured weight. Factors must never return an error for missing or
// malformed optional data; they degrade to a neutral score with weight 0.
type factorFunc func(ctx context.Context, ec *EvalContext, weight float64) FactorResult

// factorDescriptor registers one factor in the evaluation order.
type factorDescriptor struct {
	name    string
	compute factorFunc
}

// Engine evaluates publication attempts against the registered factor set.
// The engine itself is stateless with respect to requests; calculators are
// pure given their inputs, so a host may parallelize them if it chooses.
type Engine struct {
	factors []factorDescriptor
	logger  *slog.Logger
}

// NewEngine creates a risk scoring engine with the default factor set.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		factors: defaultFactors(),
		logger:  logger,
	}
}

// defaultFactors returns the ordered factor registry. The aggregation and
// tier logic never reference individual factors, so adding or removing one
// is a matter of editing this list.
func defaultFactors() []factorDescriptor {
	return []factorDescriptor{
		{FactorAccountAge, accountAgeFactor},
		{FactorKarma, karmaFactor},
		{FactorContentTitle, contentTitleFactor},
		{FactorURL, urlFactor},
		{FactorVelocity, velocityFactor},
		{FactorWalletVelocity, walletVelocityFactor},
		{FactorIP, ipFactor},
		{FactorBanHistory, banHistoryFactor},
		{FactorModqueueRate, modqueueRateFactor},
		{FactorRemovalRate, removalRateFactor},
		{FactorSocial, socialFactor},
		{FactorAuthorReputation, authorReputationFactor},
	}
}

// Evaluate computes the risk score for one publication attempt. A nil
// weights map selects the built-in preset for ec.IPIntelAvailable.
//
// The only error conditions are caller precondition violations (missing or
// unrecognizable publication); data-quality problems never error.
func (e *Engine) Evaluate(ctx context.Context, ec *EvalContext, weights Weights) (*ScoreResult, error) {
	if ec == nil || ec.Publication == nil {
		return nil, fmt.Errorf("risk: %w", publication.ErrNoPayload)
	}
	if err := ec.Publication.Validate(); err != nil {
		return nil, fmt.Errorf("risk: %w", err)
	}
	if weights == nil {
		weights = PresetFor(ec.IPIntelAvailable)
	}

	results := make([]FactorResult, 0, len(e.factors))
	for _, d := range e.factors {
		r := d.compute(ctx, ec, weights[d.name])
		r.Name = d.name
		results = append(results, r)
	}

	score := aggregate(results)

	return &ScoreResult{
		Score:       score,
		Factors:     results,
		Explanation: explain(score, results),
	}, nil
}

// aggregate computes the weighted sum with weight redistribution, writing
// effective weights back into results. Effective weights over active
// factors always sum to 1; if nothing is active the result is the fixed
// neutral score.
func aggregate(results []FactorResult) float64 {
	var sumWeights float64
	for _, r := range results {
		if r.Weight > 0 {
			sumWeights += r.Weight
		}
	}
	if sumWeights <= 0 {
		return NeutralScore
	}

	var score float64
	for i := range results {
		if results[i].Weight <= 0 {
			results[i].EffectiveWeight = 0
			continue
		}
		results[i].EffectiveWeight = results[i].Weight / sumWeights
		score += results[i].Score * results[i].EffectiveWeight
	}

	// Safety net against factor-implementation bugs.
	return clamp(score)
}

// explain builds the operator-facing summary: a coarse risk label plus the
// top contributing active factors.
func explain(score float64, results []FactorResult) string {
	label := "Low"
	switch {
	case score >= 0.66:
		label = "High"
	case score >= 0.33:
		label = "Moderate"
	}

	active := make([]FactorResult, 0, len(results))
	for _, r := range results {
		if r.EffectiveWeight > 0 {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return fmt.Sprintf("%s risk (%.3f): no factor had data, neutral score applied", label, score)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].Score*active[i].EffectiveWeight > active[j].Score*active[j].EffectiveWeight
	})
	top := active
	if len(top) > 3 {
		top = top[:3]
	}

	parts := make([]string, 0, len(top))
	for _, r := range top {
		parts = append(parts, fmt.Sprintf("%s=%.2f (%s)", r.Name, r.Score, r.Explanation))
	}
	return fmt.Sprintf("%s risk (%.3f): %s", label, math.Round(score*1000)/1000, strings.Join(parts, "; "))
}

// skip produces an opted-out result with a human-readable reason.
func skip(reason string) FactorResult {
	return FactorResult{Score: NeutralScore, Weight: 0, Explanation: reason}
}

// active produces a participating result.
func active(score, weight float64, explanation string) FactorResult {
	return FactorResult{Score: clamp(score), Weight: weight, Explanation: explanation}
}
