package risk

import (
	"context"
	"fmt"

	"github.com/plebguard/plebguard/internal/history"
	"github.com/plebguard/plebguard/internal/publication"
)

// rateThresholds are per-hour boundaries for the four velocity bands.
// Beyond suspicious is bot-like.
type rateThresholds struct {
	normal     float64
	elevated   float64
	suspicious float64
}

// Velocity band scores.
const (
	rateScoreNormal     = 0.1
	rateScoreElevated   = 0.4
	rateScoreSuspicious = 0.7
	rateScoreBotLike    = 0.95
)

// Acceptable rates differ by type: votes tolerate far higher throughput
// than posts.
var typeRateThresholds = map[publication.Type]rateThresholds{
	publication.TypePost:       {2, 5, 12},
	publication.TypeReply:      {10, 25, 60},
	publication.TypeVote:       {60, 150, 400},
	publication.TypeEdit:       {5, 12, 30},
	publication.TypeModeration: {20, 50, 120},
}

// aggregateRateThresholds bound the summed rate across all types, to catch
// bursts distributed across types to evade any single type's threshold.
var aggregateRateThresholds = rateThresholds{80, 200, 500}

// crossTypeBlend is the share of the gap blended in when another type
// shows a higher velocity score than the current type.
const crossTypeBlend = 0.5

// effectiveRate resists short bursts hidden inside a high daily average:
// the per-hour rate is the worse of the last hour and the 24h average.
func effectiveRate(lastHour, lastDay int) float64 {
	hourly := float64(lastHour)
	daily := float64(lastDay) / 24
	if hourly >= daily {
		return hourly
	}
	return daily
}

// rateScore maps a per-hour rate through a threshold set.
func rateScore(rate float64, t rateThresholds) float64 {
	switch {
	case rate <= t.normal:
		return rateScoreNormal
	case rate <= t.elevated:
		return rateScoreElevated
	case rate <= t.suspicious:
		return rateScoreSuspicious
	default:
		return rateScoreBotLike
	}
}

// blendCrossType elevates the current type's score by half the gap to the
// riskiest other type. An author bursting on votes should elevate risk on a
// concurrent post, not be scored independently per type.
func blendCrossType(current, maxOther float64) float64 {
	if maxOther <= current {
		return current
	}
	return current + (maxOther-current)*crossTypeBlend
}

// velocityScores computes the per-type, aggregate, and blended velocity
// scores for one set of rate windows. Shared by the author and wallet
// velocity factors.
func velocityScores(currentType publication.Type, lastHour, lastDay history.TypeCounts) (final float64, detail string) {
	currentScore := rateScore(
		effectiveRate(lastHour[currentType], lastDay[currentType]),
		typeRateThresholds[currentType],
	)

	maxOther := 0.0
	for _, typ := range publication.Types {
		if typ == currentType {
			continue
		}
		s := rateScore(effectiveRate(lastHour[typ], lastDay[typ]), typeRateThresholds[typ])
		if s > maxOther {
			maxOther = s
		}
	}
	blended := blendCrossType(currentScore, maxOther)

	aggregateScore := rateScore(
		effectiveRate(lastHour.Total(), lastDay.Total()),
		aggregateRateThresholds,
	)

	final = currentScore
	if aggregateScore > final {
		final = aggregateScore
	}
	if blended > final {
		final = blended
	}

	detail = fmt.Sprintf("%s=%.2f aggregate=%.2f cross-type=%.2f", currentType, currentScore, aggregateScore, blended)
	return final, detail
}

// velocityFactor scores the author's publication rate: the worst of the
// current type's rate, the aggregate rate across types, and the cross-type
// blended rate.
func velocityFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	if ec.History == nil {
		return skip("velocity data unavailable")
	}
	lastHour, lastDay, ok := ec.History.AuthorRates(ctx, ec.Publication.AuthorKey, ec.Now)
	if !ok {
		return skip("velocity data unavailable")
	}

	score, detail := velocityScores(ec.Publication.Type, lastHour, lastDay)
	return active(score, weight, detail)
}
