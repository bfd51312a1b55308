package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
)

const (
	// socialDecay is the geometric decay applied per additional identity,
	// highest credibility first. Two Googles are not twice one Google.
	socialDecay = 0.7

	// socialCredibilityCap bounds combined credibility.
	socialCredibilityCap = 2.5

	// socialUnverifiedScore applies when providers are configured but the
	// author has linked none of them.
	socialUnverifiedScore = 1.0
)

// credibilityToRisk converts combined credibility c to a risk score via
// 1 − 0.75c + 0.15c², clamped to [0,1]. One unshared max-credibility
// identity (c=1.0) lands at 0.40; two combine to c=1.7 and 0.1585.
func credibilityToRisk(c float64) float64 {
	return clamp(1 - 0.75*c + 0.15*c*c)
}

// socialFactor scores OAuth-linked identity credibility. Each identity has
// a per-provider base credibility, discounted by 1/sqrt(n) when the same
// external identity is linked to n local authors (anti-farming), then
// combined across identities with geometric decay and capped.
func socialFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	providers := ec.OAuthBaseCredibility
	if len(providers) == 0 {
		return skip("social verification disabled")
	}

	creds := make([]float64, 0, len(ec.Publication.OAuthIdentities))
	for _, ident := range ec.Publication.OAuthIdentities {
		base, ok := providers[ident.Provider]
		if !ok {
			continue
		}
		cred := base
		if ec.History != nil {
			if shared := ec.History.SharedIdentityAuthors(ctx, ident.Provider, ident.ExternalID); shared > 1 {
				cred = base / math.Sqrt(float64(shared))
			}
		}
		creds = append(creds, cred)
	}

	if len(creds) == 0 {
		return active(socialUnverifiedScore, weight, "no verified identity")
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(creds)))
	combined := 0.0
	decay := 1.0
	for _, c := range creds {
		combined += c * decay
		decay *= socialDecay
	}
	if combined > socialCredibilityCap {
		combined = socialCredibilityCap
	}

	return active(credibilityToRisk(combined), weight,
		fmt.Sprintf("combined credibility %.2f from %d identities", combined, len(creds)))
}

// authorReputationFactor is a reserved slot for a future author-reputation
// signal. It always opts out.
func authorReputationFactor(_ context.Context, _ *EvalContext, _ float64) FactorResult {
	return skip("reserved")
}
