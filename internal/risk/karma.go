package risk

import (
	"context"
	"fmt"
)

// Net-trust brackets: the number of communities voting for the author minus
// those voting against, mapped to a score. Counting communities instead of
// summing raw karma stops a few hostile communities from dominating via
// large negative numbers.
var karmaBrackets = []struct {
	minNet int
	score  float64
}{
	{5, 0.1},
	{3, 0.25},
	{1, 0.4},
	{0, 0.5},
	{-2, 0.65},
	{-4, 0.8},
}

const karmaWorstScore = 0.9

// karmaFactor scores cross-community reputation as a count-based vote:
// each community where the author has any nonzero combined karma
// contributes +1 or -1 to a net trust count, independent of magnitude.
//
// The current request's community is dropped from the historical map and
// replaced by the live snapshot carried on the publication, which is the
// freshest observation available.
func karmaFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	pub := ec.Publication

	var net, communities int
	if ec.History != nil {
		for sub, snap := range ec.History.KarmaBySubplebbit(ctx, pub.AuthorKey) {
			if sub == pub.SubplebbitAddress {
				continue
			}
			combined := snap.Combined()
			if combined == 0 {
				continue
			}
			communities++
			if combined > 0 {
				net++
			} else {
				net--
			}
		}
	}

	if live := pub.AuthorKarma.Combined(); live != 0 {
		communities++
		if live > 0 {
			net++
		} else {
			net--
		}
	}

	if communities == 0 {
		return active(NeutralScore, weight, "no karma data in any community")
	}

	for _, b := range karmaBrackets {
		if net >= b.minNet {
			return active(b.score, weight, fmt.Sprintf("net trust %+d across %d communities", net, communities))
		}
	}
	return active(karmaWorstScore, weight, fmt.Sprintf("net trust %+d across %d communities", net, communities))
}
