// Package risk implements the risk scoring engine of the anti-abuse gateway.
//
// A publication attempt is evaluated by an ordered set of independent risk
// factors (account age, karma, posting velocity, content heuristics,
// network-wide moderation history, social verification, IP reputation).
// Each factor produces a score in [0,1] and either participates with its
// configured weight or opts out with weight 0 when it has no data. Opted-out
// weight is redistributed proportionally across the remaining active
// factors, so effective weights always sum to 1. The final weighted score is
// mapped to an enforcement tier by the challenge package.
package risk

import (
	"github.com/plebguard/plebguard/internal/history"
	"github.com/plebguard/plebguard/internal/ipintel"
	"github.com/plebguard/plebguard/internal/publication"
)

// Factor names. These double as weight-configuration keys.
const (
	FactorAccountAge       = "accountAge"
	FactorKarma            = "karmaScore"
	FactorContentTitle     = "commentContentTitleRisk"
	FactorURL              = "commentUrlRisk"
	FactorVelocity         = "velocityRisk"
	FactorWalletVelocity   = "walletVelocity"
	FactorIP               = "ipRisk"
	FactorBanHistory       = "networkBanHistory"
	FactorModqueueRate     = "modqueueRejectionRate"
	FactorRemovalRate      = "networkRemovalRate"
	FactorSocial           = "socialVerification"
	FactorAuthorReputation = "authorReputation" // reserved
)

// NeutralScore is the result when every factor opts out.
const NeutralScore = 0.5

// FactorResult is one factor's contribution to an evaluation.
//
// Weight == 0 means the factor opted out for lack of data, not that the
// author scored zero risk.
type FactorResult struct {
	Name            string  `json:"name"`
	Score           float64 `json:"score"`
	Weight          float64 `json:"weight"`
	EffectiveWeight float64 `json:"effectiveWeight"`
	Explanation     string  `json:"explanation"`
}

// ScoreResult is the outcome of a single evaluation. Computed once, never
// mutated; persistence of the resulting tier is the caller's responsibility.
type ScoreResult struct {
	Score       float64        `json:"score"`
	Factors     []FactorResult `json:"factors"`
	Explanation string         `json:"explanation"`
}

// Weights maps factor names to base weights. Only relative proportions
// matter; redistribution normalizes over the active factors.
type Weights map[string]float64

// DefaultWeights is the preset used when no IP intelligence is available.
// Base weights sum to 1.0 by construction.
var DefaultWeights = Weights{
	FactorAccountAge:       0.15,
	FactorKarma:            0.15,
	FactorContentTitle:     0.10,
	FactorURL:              0.10,
	FactorVelocity:         0.15,
	FactorWalletVelocity:   0.10,
	FactorBanHistory:       0.10,
	FactorModqueueRate:     0.05,
	FactorRemovalRate:      0.05,
	FactorSocial:           0.05,
	FactorAuthorReputation: 0,
}

// DefaultWeightsWithIP is the preset used when an IP intelligence provider
// is wired in.
var DefaultWeightsWithIP = Weights{
	FactorAccountAge:       0.13,
	FactorKarma:            0.13,
	FactorContentTitle:     0.09,
	FactorURL:              0.09,
	FactorVelocity:         0.14,
	FactorWalletVelocity:   0.09,
	FactorIP:               0.12,
	FactorBanHistory:       0.09,
	FactorModqueueRate:     0.05,
	FactorRemovalRate:      0.04,
	FactorSocial:           0.03,
	FactorAuthorReputation: 0,
}

// PresetFor returns the built-in weight preset for the deployment.
func PresetFor(ipIntelAvailable bool) Weights {
	if ipIntelAvailable {
		return DefaultWeightsWithIP
	}
	return DefaultWeights
}

// EvalContext bundles everything one evaluation needs. All state is
// request-scoped; the engine holds no cross-request mutable state.
type EvalContext struct {
	// Publication is the already-verified publication attempt.
	Publication *publication.Publication

	// Now is the evaluation time in unix seconds, injectable for tests.
	Now int64

	// IPIntelAvailable selects the default weight preset. IPIntel holds
	// the provider result for this request, or nil when the provider had
	// no data.
	IPIntelAvailable bool
	IPIntel          *ipintel.Result

	// History is the combined view over the gateway log and the crawler
	// index.
	History *history.Service

	// OAuthBaseCredibility maps provider names to base credibility in
	// [0.5, 1.0]. Empty means social verification is disabled.
	OAuthBaseCredibility map[string]float64
}

// clamp bounds v to [0,1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
