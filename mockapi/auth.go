package mockapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/auth"
	fedErrors "github.com/jrsteele09/fedteam/internal/errors"
	"github.com/jrsteele09/fedteam/token"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

type callerKey struct{}

func withCaller(ctx context.Context, u users.Usuario) context.Context {
	return context.WithValue(ctx, callerKey{}, u)
}

func callerFrom(ctx context.Context) (users.Usuario, bool) {
	u, ok := ctx.Value(callerKey{}).(users.Usuario)
	return u, ok
}

// Login exchanges login and senha for a bearer token.
func (a *API) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds apiclient.LoginCredentials
		if err := decode(r, &creds); err != nil || creds.Login == "" || creds.Senha == "" {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}

		u, err := a.users.GetByLogin(creds.Login)
		if err != nil || !users.CheckPasswordHash(creds.Senha, u.Senha) {
			log.Info().Str("login", users.MaskLogin(creds.Login)).Msg("Rejected login")
			writeError(w, http.StatusUnauthorized, apiclient.MsgInvalidCredentials)
			return
		}

		switch u.Status(NowTimeFunc()) {
		case users.StatusInativo:
			writeError(w, http.StatusForbidden, apiclient.MsgUserInactive)
			return
		case users.StatusExpirado:
			writeError(w, http.StatusForbidden, apiclient.MsgUserExpired)
			return
		}

		issued, err := a.issuer.Issue(token.Subject{CdUsuario: u.CdUsuario, Login: u.Login, CdTpAcesso: u.CdTpAcesso})
		if err != nil {
			log.Err(err).Msg("Failed to issue token")
			writeError(w, http.StatusInternalServerError, apiclient.MsgServerError)
			return
		}

		writeJSON(w, http.StatusOK, apiclient.LoginResponse{
			Token:      issued.Token,
			CdUsuario:  u.CdUsuario,
			Login:      u.Login,
			Nome:       u.Nome,
			Email:      u.Email,
			ExpiresIn:  issued.ExpiresIn,
			CdTpAcesso: u.CdTpAcesso,
			TipoAcesso: u.AccessLabel(),
		})
	}
}

// bearerMiddleware admits requests carrying a valid token of an existing,
// active user.
func (a *API) bearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.issuer.Verify(r.Header.Get("Authorization"))
		if err != nil {
			if !fedErrors.Is(err, fedErrors.ErrTokenExpired) && !fedErrors.Is(err, fedErrors.ErrInvalidToken) {
				log.Err(err).Msg("Token verification failed")
			}
			writeError(w, http.StatusUnauthorized, apiclient.MsgUnauthorized)
			return
		}

		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnauthorized, apiclient.MsgUnauthorized)
			return
		}
		u, err := a.users.GetByID(id)
		if err != nil || u.Status(NowTimeFunc()) != users.StatusAtivo {
			writeError(w, http.StatusUnauthorized, apiclient.MsgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), u)))
	})
}

func (a *API) requireCapability(allowed func(auth.Capabilities) bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := callerFrom(r.Context())
		code, _ := auth.ParseAccessCode(u.CdTpAcesso)
		if !ok || !allowed(code.Capabilities()) {
			writeError(w, http.StatusForbidden, apiclient.MsgForbidden)
			return
		}
		next(w, r)
	}
}

func (a *API) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireCapability(func(c auth.Capabilities) bool { return c.Admin }, next)
}

func (a *API) requireTrainer(next http.HandlerFunc) http.HandlerFunc {
	return a.requireCapability(func(c auth.Capabilities) bool { return c.CreateTraining }, next)
}
