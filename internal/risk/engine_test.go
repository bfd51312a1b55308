package risk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plebguard/plebguard/internal/challenge"
	"github.com/plebguard/plebguard/internal/history"
	"github.com/plebguard/plebguard/internal/ipintel"
	"github.com/plebguard/plebguard/internal/publication"
)

const testNow = int64(1_700_000_000)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPublication() *publication.Publication {
	return &publication.Publication{
		AuthorKey:         "ed25519:author-1",
		SubplebbitAddress: "memes.eth",
		Type:              publication.TypePost,
		Title:             "my first post",
		Content:           "hello everyone, glad to be here",
		Timestamp:         testNow,
	}
}

func testContext(pub *publication.Publication) (*EvalContext, *history.MemoryEngineStore, *history.MemoryIndexerStore) {
	engineStore := history.NewMemoryEngineStore()
	indexerStore := history.NewMemoryIndexerStore()
	ec := &EvalContext{
		Publication: pub,
		Now:         testNow,
		History:     history.NewService(engineStore, indexerStore, testLogger()),
	}
	return ec, engineStore, indexerStore
}

func TestEvaluateRejectsMissingPublication(t *testing.T) {
	e := NewEngine(testLogger())

	_, err := e.Evaluate(context.Background(), nil, nil)
	require.ErrorIs(t, err, publication.ErrNoPayload)

	_, err = e.Evaluate(context.Background(), &EvalContext{}, nil)
	require.ErrorIs(t, err, publication.ErrNoPayload)
}

func TestEvaluateRejectsInvalidPublication(t *testing.T) {
	e := NewEngine(testLogger())
	ec, _, _ := testContext(&publication.Publication{
		SubplebbitAddress: "memes.eth",
		Type:              publication.TypePost,
	})

	_, err := e.Evaluate(context.Background(), ec, nil)
	require.ErrorIs(t, err, publication.ErrNoAuthorKey)
}

func TestEvaluateEffectiveWeightsSumToOne(t *testing.T) {
	e := NewEngine(testLogger())
	ec, _, _ := testContext(testPublication())

	res, err := e.Evaluate(context.Background(), ec, nil)
	require.NoError(t, err)

	var sum float64
	for _, f := range res.Factors {
		require.GreaterOrEqual(t, f.EffectiveWeight, 0.0)
		if f.Weight == 0 {
			assert.Zero(t, f.EffectiveWeight, "opted-out factor %s must not contribute", f.Name)
		}
		sum += f.EffectiveWeight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
	assert.NotEmpty(t, res.Explanation)
}

func TestEvaluateReturnsEveryRegisteredFactor(t *testing.T) {
	e := NewEngine(testLogger())
	ec, _, _ := testContext(testPublication())

	res, err := e.Evaluate(context.Background(), ec, nil)
	require.NoError(t, err)
	require.Len(t, res.Factors, len(defaultFactors()))

	byName := make(map[string]FactorResult, len(res.Factors))
	for _, f := range res.Factors {
		byName[f.Name] = f
	}
	// Reserved slot never participates.
	require.Contains(t, byName, FactorAuthorReputation)
	assert.Zero(t, byName[FactorAuthorReputation].Weight)
	assert.Zero(t, byName[FactorAuthorReputation].EffectiveWeight)
}

// A brand-new author with no history must never be waved through: with the
// default thresholds the score lands in the captcha band.
func TestEvaluateBrandNewAuthor(t *testing.T) {
	e := NewEngine(testLogger())
	ec, _, _ := testContext(testPublication())
	ec.IPIntelAvailable = true
	ec.IPIntel = &ipintel.Result{} // residential

	res, err := e.Evaluate(context.Background(), ec, nil)
	require.NoError(t, err)

	// age 0.9*.13 + karma 0.5*.13 + content 0.3*.09 + url 0.3*.09 +
	// velocity 0.1*.14 + ip 0.2*.12, renormalized over 0.70 of weight.
	assert.InDelta(t, 0.3914, res.Score, 0.001)

	mapper, err := challenge.NewMapper(challenge.DefaultThresholds)
	require.NoError(t, err)
	tier := mapper.Map(res.Score)
	assert.Equal(t, challenge.TierCaptchaOnly, tier)
	assert.NotEqual(t, challenge.TierAutoAccept, tier)
}

func TestAggregateRedistributesOptedOutWeight(t *testing.T) {
	results := []FactorResult{
		{Name: "a", Score: 0.8, Weight: 0.3},
		{Name: "b", Score: 0.2, Weight: 0.3},
		{Name: "c", Score: 0.9, Weight: 0}, // opted out
		{Name: "d", Score: 0.5, Weight: 0.4},
	}

	score := aggregate(results)

	assert.InDelta(t, 0.3, results[0].EffectiveWeight, 1e-9)
	assert.InDelta(t, 0.3, results[1].EffectiveWeight, 1e-9)
	assert.Zero(t, results[2].EffectiveWeight)
	assert.InDelta(t, 0.4, results[3].EffectiveWeight, 1e-9)
	assert.InDelta(t, 0.8*0.3+0.2*0.3+0.5*0.4, score, 1e-9)
}

func TestAggregateNeutralWhenNothingActive(t *testing.T) {
	results := []FactorResult{
		{Name: "a", Score: 0.9, Weight: 0},
		{Name: "b", Score: 0.1, Weight: 0},
	}
	assert.Equal(t, NeutralScore, aggregate(results))
	assert.Zero(t, results[0].EffectiveWeight)
	assert.Zero(t, results[1].EffectiveWeight)
}

func TestAggregateClampsAdversarialScores(t *testing.T) {
	high := []FactorResult{{Name: "a", Score: 50, Weight: 1}}
	assert.Equal(t, 1.0, aggregate(high))

	low := []FactorResult{{Name: "a", Score: -50, Weight: 1}}
	assert.Equal(t, 0.0, aggregate(low))
}

func TestExplainLabels(t *testing.T) {
	active := []FactorResult{{Name: FactorAccountAge, Score: 0.9, Weight: 1, EffectiveWeight: 1, Explanation: "brand new"}}

	assert.Contains(t, explain(0.1, active), "Low risk")
	assert.Contains(t, explain(0.5, active), "Moderate risk")
	assert.Contains(t, explain(0.9, active), "High risk")
	assert.Contains(t, explain(0.9, active), FactorAccountAge)
	assert.Contains(t, explain(0.5, nil), "no factor had data")
}
