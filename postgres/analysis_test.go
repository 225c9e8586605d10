package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline/backend"
	"github.com/meikuraledutech/pipeline/postgres"
)

// newStore connects to DATABASE_URL and recreates the schema. Tests using it
// are skipped when no database is configured.
func newStore(t *testing.T) *postgres.PGStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgres.New(pool)
	require.NoError(t, store.DropSchema(ctx))
	require.NoError(t, store.CreateSchema(ctx))
	t.Cleanup(func() { _ = store.DropSchema(context.Background()) })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 21, 5, 9, 0, 0, time.UTC)
	for i, isDAG := range []bool{true, false, true} {
		require.NoError(t, store.RecordAnalysis(ctx, &backend.Analysis{
			NodeCount: i + 1,
			EdgeCount: i,
			IsDAG:     isDAG,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := store.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].NodeCount)
	assert.Equal(t, 2, list[1].NodeCount)
	assert.False(t, list[1].IsDAG)

	got, err := store.GetAnalysis(ctx, list[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(base.Add(2*time.Minute)))
}

func TestGetAnalysis_Missing(t *testing.T) {
	store := newStore(t)

	got, err := store.GetAnalysis(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := store.ListAnalyses(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
