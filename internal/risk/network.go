package risk

import (
	"context"
	"fmt"

	"github.com/plebguard/plebguard/internal/history"
)

// Rate brackets shared by the modqueue rejection and network removal
// factors: the fraction of moderated-away content maps to a score.
var moderationRateBrackets = []struct {
	maxRate float64
	score   float64
}{
	{0.05, 0.1},
	{0.15, 0.25},
	{0.30, 0.4},
	{0.50, 0.6},
	{0.75, 0.75},
	{1.01, 0.9},
}

func moderationRateScore(rate float64) float64 {
	for _, b := range moderationRateBrackets {
		if rate < b.maxRate {
			return b.score
		}
	}
	return 0.9
}

// networkCounts fetches the author's indexer aggregates, or nil when the
// author was never indexed.
func networkCounts(ctx context.Context, ec *EvalContext) *history.NetworkCounts {
	if ec.History == nil {
		return nil
	}
	return ec.History.NetworkCounts(ctx, ec.Publication.AuthorKey)
}

// banHistoryFactor scores bans across indexed communities. Stepped rather
// than proportional: a single ban is already a strong signal.
func banHistoryFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	counts := networkCounts(ctx, ec)
	if counts == nil {
		return skip("author not present in network index")
	}

	var score float64
	switch {
	case counts.BanCount >= 3:
		score = 0.85
	case counts.BanCount == 2:
		score = 0.6
	case counts.BanCount == 1:
		score = 0.4
	default:
		score = 0.0
	}
	return active(score, weight, fmt.Sprintf("%d bans across indexed communities", counts.BanCount))
}

// modqueueRateFactor scores the author's rejection rate in network-wide
// moderation queues. No resolved items means the rate is undefined, scored
// neutral.
func modqueueRateFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	counts := networkCounts(ctx, ec)
	if counts == nil {
		return skip("author not present in network index")
	}

	resolved := counts.ModqueueAccepted + counts.ModqueueRejected
	if resolved == 0 {
		return active(NeutralScore, weight, "no resolved modqueue items")
	}

	rate := float64(counts.ModqueueRejected) / float64(resolved)
	return active(moderationRateScore(rate), weight,
		fmt.Sprintf("%.0f%% modqueue rejection rate over %d items", rate*100, resolved))
}

// removalRateFactor scores the fraction of the author's indexed comments
// that were removed, disapproved, or became unfetchable.
func removalRateFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	counts := networkCounts(ctx, ec)
	if counts == nil {
		return skip("author not present in network index")
	}
	if counts.TotalIndexedComments == 0 {
		return active(NeutralScore, weight, "no indexed comments")
	}

	removed := counts.RemovalCount + counts.DisapprovalCount + counts.UnfetchableCount
	rate := float64(removed) / float64(counts.TotalIndexedComments)
	if rate > 1 {
		rate = 1
	}
	return active(moderationRateScore(rate), weight,
		fmt.Sprintf("%.0f%% removal rate over %d indexed comments", rate*100, counts.TotalIndexedComments))
}
