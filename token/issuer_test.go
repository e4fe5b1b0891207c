package token_test

import (
	"testing"
	"time"

	fedErrors "github.com/jrsteele09/fedteam/internal/errors"
	"github.com/jrsteele09/fedteam/token"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = orig })
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fixedNow(t, now)

	issuer := token.NewIssuer(token.NewHMACSigner("secret"), token.WithExpiry(time.Hour))
	issued, err := issuer.Issue(token.Subject{CdUsuario: 12, Login: "ana", CdTpAcesso: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3600), issued.ExpiresIn)

	claims, err := issuer.Verify("Bearer " + issued.Token)
	require.NoError(t, err)
	require.Equal(t, "12", claims.Subject)
	require.Equal(t, "ana", claims.Login)
	require.Equal(t, 2, claims.CdTpAcesso)
	require.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fixedNow(t, now)
	issuer := token.NewIssuer(token.NewHMACSigner("secret"), token.WithExpiry(time.Minute))
	issued, err := issuer.Issue(token.Subject{CdUsuario: 1})
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = issuer.Verify(issued.Token)
	require.ErrorIs(t, err, fedErrors.ErrTokenExpired)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	issued, err := token.NewIssuer(token.NewHMACSigner("other")).Issue(token.Subject{CdUsuario: 1})
	require.NoError(t, err)

	issuer := token.NewIssuer(token.NewHMACSigner("secret"))
	_, err = issuer.Verify(issued.Token)
	require.ErrorIs(t, err, fedErrors.ErrInvalidToken)

	_, err = issuer.Verify("")
	require.ErrorIs(t, err, fedErrors.ErrInvalidToken)

	_, err = issuer.Verify("not-a-jwt")
	require.ErrorIs(t, err, fedErrors.ErrInvalidToken)

	wrongIssuer := token.NewIssuer(token.NewHMACSigner("secret"), token.WithIssuer("elsewhere"))
	issued, err = wrongIssuer.Issue(token.Subject{CdUsuario: 1})
	require.NoError(t, err)
	_, err = issuer.Verify(issued.Token)
	require.ErrorIs(t, err, fedErrors.ErrInvalidToken)
}

func TestRandomSigner(t *testing.T) {
	a, err := token.NewRandomHMACSigner()
	require.NoError(t, err)
	b, err := token.NewRandomHMACSigner()
	require.NoError(t, err)

	issued, err := token.NewIssuer(a).Issue(token.Subject{CdUsuario: 1})
	require.NoError(t, err)
	_, err = token.NewIssuer(b).Verify(issued.Token)
	require.Error(t, err)
}
