package fakesessionrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/fedteam/sessions"
	fakesessionrepo "github.com/jrsteele09/fedteam/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestFakeSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakesessionrepo.NewFakeSessionRepo()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, sessions.ErrNotFound)

	rec := sessions.Record{Token: "t", User: `{"id":"1"}`, UpdatedAt: time.Now()}
	require.NoError(t, repo.Upsert(ctx, "s1", rec))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	require.Error(t, repo.Upsert(ctx, "", rec))

	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.Equal(t, 0, repo.Len())
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := fakesessionrepo.NewFakeSessionRepo()
	now := time.Now()

	require.NoError(t, repo.Upsert(ctx, "old", sessions.Record{Token: "a", UpdatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, "new", sessions.Record{Token: "b", UpdatedAt: now}))

	removed, err := repo.DeleteExpired(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = repo.Get(ctx, "new")
	require.NoError(t, err)
}
