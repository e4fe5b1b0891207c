package faketreinorepo_test

import (
	"testing"

	"github.com/jrsteele09/fedteam/trainings"
	faketreinorepo "github.com/jrsteele09/fedteam/trainings/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeTreinoRepo(t *testing.T) {
	repo := faketreinorepo.NewFakeTreinoRepo()

	a, err := repo.Create(trainings.Treino{DsTreino: "Push"})
	require.NoError(t, err)
	_, err = repo.Create(trainings.Treino{DsTreino: "Pull"})
	require.NoError(t, err)

	a.DsTreino = "Push A"
	_, err = repo.Update(a)
	require.NoError(t, err)

	got, err := repo.GetByID(a.CdTreino)
	require.NoError(t, err)
	require.Equal(t, "Push A", got.DsTreino)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Push A", list[0].DsTreino)

	require.NoError(t, repo.Delete(a.CdTreino))
	require.ErrorIs(t, repo.Delete(a.CdTreino), trainings.ErrNotFound)
	_, err = repo.Update(trainings.Treino{CdTreino: 50})
	require.ErrorIs(t, err, trainings.ErrNotFound)
}
