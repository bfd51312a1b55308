package risk

import (
	"context"
	"fmt"
)

// Age brackets in days, with the score assigned to authors at least that
// old. Scores are monotone: older accounts never score higher.
var ageBrackets = []struct {
	minDays int64
	score   float64
}{
	{365, 0.1},
	{90, 0.25},
	{30, 0.4},
	{7, 0.6},
	{1, 0.75},
	{0, 0.9},
}

// noHistoryAgeScore is applied when neither source has any record; a brand
// new identity is the highest-risk age case.
const noHistoryAgeScore = 0.9

// accountAgeFactor scores time since the earliest server-observed activity.
//
// The author-claimed firstCommentTimestamp is deliberately ignored: a
// colluding community can forge it. Only timestamps the gateway or the
// indexer generated themselves are used.
func accountAgeFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	if ec.History == nil {
		return active(noHistoryAgeScore, weight, "no history service, treated as brand-new")
	}

	earliest, ok := ec.History.EarliestTimestamp(ctx, ec.Publication.AuthorKey)
	if !ok {
		return active(noHistoryAgeScore, weight, "no observed history, treated as brand-new")
	}

	ageDays := (ec.Now - earliest) / 86400
	if ageDays < 0 {
		ageDays = 0
	}
	for _, b := range ageBrackets {
		if ageDays >= b.minDays {
			return active(b.score, weight, fmt.Sprintf("first observed %d days ago", ageDays))
		}
	}
	return active(noHistoryAgeScore, weight, fmt.Sprintf("first observed %d days ago", ageDays))
}
