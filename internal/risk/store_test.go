package risk

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plebguard/plebguard/internal/publication"
	"github.com/plebguard/plebguard/internal/testutil"
)

func sampleEvaluation(id, authorKey string, evaluatedAt time.Time) *Evaluation {
	return &Evaluation{
		ID:                id,
		AuthorKey:         authorKey,
		SubplebbitAddress: "memes.eth",
		Type:              publication.TypePost,
		Score:             0.42,
		Tier:              "captcha_only",
		Factors: []FactorResult{
			{Name: FactorAccountAge, Score: 0.9, Weight: 0.15, EffectiveWeight: 0.3, Explanation: "brand new"},
		},
		Explanation: "Moderate risk (0.42)",
		EvaluatedAt: evaluatedAt,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		eval := sampleEvaluation(fmt.Sprintf("eval_%d", i), "author", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Record(ctx, eval))
	}

	got, err := store.ListByAuthor(ctx, "author", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "eval_2", got[0].ID, "most recent first")
	assert.Equal(t, "eval_0", got[2].ID)

	got, err = store.ListByAuthor(ctx, "author", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eval_2", got[0].ID)

	got, err = store.ListByAuthor(ctx, "stranger", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreCopiesOnRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, sampleEvaluation("eval_1", "author", time.Now())))

	got, err := store.ListByAuthor(ctx, "author", 1)
	require.NoError(t, err)
	got[0].Factors[0].Score = 99

	again, err := store.ListByAuthor(ctx, "author", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.9, again[0].Factors[0].Score, "callers must not be able to mutate stored state")
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		eval := sampleEvaluation(fmt.Sprintf("eval_pg_%d", i), "author-pg", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Record(ctx, eval))
	}

	got, err := store.ListByAuthor(ctx, "author-pg", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eval_pg_2", got[0].ID)
	assert.Equal(t, "eval_pg_1", got[1].ID)
	assert.Equal(t, publication.TypePost, got[0].Type)
	assert.Equal(t, 0.42, got[0].Score)
	require.Len(t, got[0].Factors, 1)
	assert.Equal(t, FactorAccountAge, got[0].Factors[0].Name)

	got, err = store.ListByAuthor(ctx, "nobody-pg", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
