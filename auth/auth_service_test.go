package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/sessions"
	fakesessionrepo "github.com/jrsteele09/fedteam/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const testSessionID = "session-1"

type testFixture struct {
	repo    *fakesessionrepo.FakeSessionRepo
	service *auth.Service
	user    auth.User
}

func setupTestFixture(t *testing.T, opts ...auth.ServiceOption) *testFixture {
	t.Helper()

	repo := fakesessionrepo.NewFakeSessionRepo()
	return &testFixture{
		repo:    repo,
		service: auth.NewService(repo, testSessionID, opts...),
		user: auth.User{
			ID:         "7",
			Nome:       "Maria Silva",
			Login:      "maria",
			Email:      "maria@fedteam.com",
			CdTpAcesso: int(auth.AccessAthlete),
		},
	}
}

func TestSetAuthDataRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.False(t, f.service.IsAuthenticated(ctx))
	require.Nil(t, f.service.User(ctx))

	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, "refresh"))

	require.True(t, f.service.IsAuthenticated(ctx))
	require.Equal(t, &f.user, f.service.User(ctx))
	require.Equal(t, "tok", f.service.AccessToken(ctx))
	require.Equal(t, "refresh", f.service.RefreshToken(ctx))

	bearer, ok := f.service.BearerToken(ctx)
	require.True(t, ok)
	require.Equal(t, "Bearer tok", bearer)

	t.Run("missing token is rejected", func(t *testing.T) {
		require.ErrorIs(t, f.service.SetAuthData(ctx, "", f.user, ""), auth.ErrMissingToken)
		require.Equal(t, "tok", f.service.AccessToken(ctx))
	})
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, "refresh"))

	f.service.Logout(ctx)
	require.False(t, f.service.IsAuthenticated(ctx))
	require.Equal(t, 0, f.repo.Len())

	f.service.Logout(ctx)
	require.False(t, f.service.IsAuthenticated(ctx))
	require.Equal(t, 0, f.repo.Len())
	_, ok := f.service.BearerToken(ctx)
	require.False(t, ok)
}

func TestRotate(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, ""))

	require.NoError(t, f.service.Rotate(ctx, "session-2"))
	require.Equal(t, "session-2", f.service.SessionID())
	require.Equal(t, 0, f.repo.Len())
	require.False(t, f.service.IsAuthenticated(ctx))

	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, ""))
	_, err := f.repo.Get(ctx, "session-2")
	require.NoError(t, err)
	_, err = f.repo.Get(ctx, testSessionID)
	require.ErrorIs(t, err, sessions.ErrNotFound)

	require.Error(t, f.service.Rotate(ctx, ""))
	require.Equal(t, "session-2", f.service.SessionID())
}

func TestTouchRefreshesIdleRecords(t *testing.T) {
	ctx := context.Background()
	restore := auth.NowTimeFunc
	t.Cleanup(func() { auth.NowTimeFunc = restore })
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	auth.NowTimeFunc = func() time.Time { return now }

	f := setupTestFixture(t)
	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, ""))
	loggedIn := now

	now = loggedIn.Add(auth.TouchInterval / 2)
	f.service.Touch(ctx)
	rec, err := f.repo.Get(ctx, testSessionID)
	require.NoError(t, err)
	require.Equal(t, loggedIn, rec.UpdatedAt)

	now = loggedIn.Add(3 * time.Hour)
	f.service.Touch(ctx)
	rec, err = f.repo.Get(ctx, testSessionID)
	require.NoError(t, err)
	require.Equal(t, now, rec.UpdatedAt)
	require.Equal(t, "tok", rec.Token)

	removed, err := f.repo.DeleteExpired(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, removed)
	require.True(t, f.service.IsAuthenticated(ctx))

	t.Run("no record is not created", func(t *testing.T) {
		empty := setupTestFixture(t)
		empty.service.Touch(ctx)
		require.Equal(t, 0, empty.repo.Len())
	})
}

func TestCorruptedUserIsClearedWithoutPanic(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.SetAuthData(ctx, "tok", f.user, "refresh"))

	f.repo.Corrupt(testSessionID, "{not json")

	require.NotPanics(t, func() {
		require.Nil(t, f.service.User(ctx))
	})
	_, err := f.repo.Get(ctx, testSessionID)
	require.ErrorIs(t, err, sessions.ErrNotFound)
	require.False(t, f.service.IsAuthenticated(ctx))
}

func TestTokenWithoutUserIsNotAuthenticated(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Upsert(ctx, testSessionID, sessions.Record{Token: "tok"}))

	require.False(t, f.service.IsAuthenticated(ctx))
	require.True(t, f.service.IsTokenValid(ctx))
}

func TestTokenValidity(t *testing.T) {
	ctx := context.Background()
	restore := auth.NowTimeFunc
	t.Cleanup(func() { auth.NowTimeFunc = restore })
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	auth.NowTimeFunc = func() time.Time { return now }

	t.Run("no token is expired", func(t *testing.T) {
		f := setupTestFixture(t)
		require.True(t, f.service.IsTokenExpired(ctx))
		require.False(t, f.service.IsTokenValid(ctx))
	})

	t.Run("expired jwt", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.service.SetAuthData(ctx, signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), f.user, ""))
		require.True(t, f.service.IsTokenExpired(ctx))
		require.False(t, f.service.IsTokenValid(ctx))
		require.True(t, f.service.IsAuthenticated(ctx))
	})

	t.Run("opaque token under permissive policy", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.service.SetAuthData(ctx, "opaque", f.user, ""))
		require.False(t, f.service.IsTokenExpired(ctx))
		require.True(t, f.service.IsTokenValid(ctx))
	})

	t.Run("opaque token under strict policy", func(t *testing.T) {
		f := setupTestFixture(t, auth.WithExpiryPolicy(auth.StrictExpiry))
		require.NoError(t, f.service.SetAuthData(ctx, "opaque", f.user, ""))
		require.True(t, f.service.IsTokenExpired(ctx))
		require.False(t, f.service.IsTokenValid(ctx))
	})
}

func TestNeedsAuthentication(t *testing.T) {
	f := setupTestFixture(t)
	require.False(t, f.service.NeedsAuthentication("/v1/usuario/login"))
	require.False(t, auth.NeedsAuthentication("http://api.test/v1/usuario/login?x=1"))
	require.True(t, auth.NeedsAuthentication("/v1/usuarios"))
	require.True(t, auth.NeedsAuthentication("/v1/treino/with-users"))
	require.True(t, auth.NeedsAuthentication("/some/new/endpoint"))
}

type failingRepo struct{}

func (failingRepo) Get(context.Context, string) (sessions.Record, error) {
	return sessions.Record{}, errors.New("store down")
}
func (failingRepo) Upsert(context.Context, string, sessions.Record) error {
	return errors.New("store down")
}
func (failingRepo) Delete(context.Context, string) error { return errors.New("store down") }

func TestStorageFailuresAreSoft(t *testing.T) {
	ctx := context.Background()
	s := auth.NewService(failingRepo{}, testSessionID)

	require.False(t, s.IsAuthenticated(ctx))
	require.Nil(t, s.User(ctx))
	require.True(t, s.IsTokenExpired(ctx))
	require.NotPanics(t, func() { s.Logout(ctx) })

	require.Error(t, s.SetAuthData(ctx, "tok", auth.User{ID: "1"}, ""))
	require.Error(t, s.ClearAuth(ctx))
}
