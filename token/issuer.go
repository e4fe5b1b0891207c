package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	fedErrors "github.com/jrsteele09/fedteam/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const DefaultExpiry = 8 * time.Hour

// Subject is the identity an access token is issued for.
type Subject struct {
	CdUsuario  int64
	Login      string
	CdTpAcesso int
}

// Claims carried by the access tokens.
type Claims struct {
	Login      string `json:"login"`
	CdTpAcesso int    `json:"cdTpAcesso"`
	jwt.RegisteredClaims
}

type Issued struct {
	Token     string
	ExpiresIn int64 // seconds
}

// Issuer creates and verifies bearer tokens for the backend.
type Issuer struct {
	signer Signer
	issuer string
	expiry time.Duration
}

type IssuerOption func(*Issuer)

func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.expiry = expiry
	}
}

func WithIssuer(issuer string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = issuer
	}
}

func NewIssuer(signer Signer, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		signer: signer,
		issuer: "fedteam",
		expiry: DefaultExpiry,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) Issue(sub Subject) (Issued, error) {
	now := NowTimeFunc()
	claims := Claims{
		Login:      sub.Login,
		CdTpAcesso: sub.CdTpAcesso,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   fmt.Sprint(sub.CdUsuario),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return Issued{}, fmt.Errorf("[Issuer Issue] %w", err)
	}
	return Issued{Token: signed, ExpiresIn: int64(i.expiry / time.Second)}, nil
}

// Verify checks the signature, issuer and expiry of a raw token, with or
// without its "Bearer " prefix.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, fedErrors.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if fedErrors.Is(err, jwt.ErrTokenExpired) {
			return nil, fedErrors.Wrapf(fedErrors.ErrTokenExpired, "[Issuer Verify] %v", err)
		}
		return nil, fedErrors.Wrapf(fedErrors.ErrInvalidToken, "[Issuer Verify] %v", err)
	}
	if !parsed.Valid {
		return nil, fedErrors.ErrInvalidToken
	}
	return claims, nil
}
