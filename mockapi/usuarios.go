package mockapi

import (
	"net/http"
	"time"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/auth"
	fedErrors "github.com/jrsteele09/fedteam/internal/errors"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/internal/validation"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

func publicUsuario(u users.Usuario) users.Usuario {
	u.Senha = ""
	return u
}

// writeRepoError maps repository and validation failures to responses.
func writeRepoError(w http.ResponseWriter, err error, notFound string) {
	var verrs validation.Errors
	switch {
	case fedErrors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, verrs.Summary())
	case fedErrors.Is(err, users.ErrLoginExists):
		writeError(w, http.StatusConflict, apiclient.MsgLoginAlreadyExists)
	case fedErrors.Is(err, users.ErrEmailExists):
		writeError(w, http.StatusConflict, apiclient.MsgEmailAlreadyExists)
	case fedErrors.Is(err, users.ErrNotFound), fedErrors.Is(err, trainings.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		log.Err(err).Msg("mockapi repository failure")
		writeError(w, http.StatusInternalServerError, apiclient.MsgServerError)
	}
}

func (a *API) ListUsuarios() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := a.users.List()
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		out := make([]users.Usuario, 0, len(list))
		for _, u := range list {
			out = append(out, publicUsuario(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (a *API) GetUsuario() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		u, err := a.users.GetByID(id)
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		writeJSON(w, http.StatusOK, publicUsuario(u))
	}
}

func (a *API) CreateUsuario() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in users.UsuarioCreate
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		if err := users.ValidateCreate(in); err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		hash, err := users.HashPassword(in.Senha)
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}

		created, err := a.users.Create(users.Usuario{
			Login:        in.Login,
			Senha:        hash,
			Nome:         in.Nome,
			Email:        in.Email,
			DataCadastro: NowTimeFunc().Format(time.RFC3339),
			FlAtivo:      utils.ValueOrDefault(in.FlAtivo, true),
			DtExpiracao:  in.DtExpiracao,
			CdTpAcesso:   utils.ValueOrDefault(in.CdTpAcesso, int(auth.AccessStandard)),
		})
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		log.Info().Int64("cdUsuario", created.CdUsuario).Msg("Usuario created")
		writeJSON(w, http.StatusCreated, publicUsuario(created))
	}
}

func (a *API) UpdateUsuario() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		var in users.UsuarioUpdate
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		if err := users.ValidateUpdate(in); err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}

		existing, err := a.users.GetByID(id)
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		existing.Login = in.Login
		existing.Nome = in.Nome
		existing.Email = in.Email
		existing.CdTpAcesso = in.CdTpAcesso
		existing.DtExpiracao = in.DtExpiracao
		if in.FlAtivo != nil {
			existing.FlAtivo = *in.FlAtivo
		}
		if senha := utils.Value(in.Senha); senha != "" {
			if existing.Senha, err = users.HashPassword(senha); err != nil {
				writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
				return
			}
		}

		updated, err := a.users.Update(existing)
		if err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		writeJSON(w, http.StatusOK, publicUsuario(updated))
	}
}

func (a *API) DeleteUsuario() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		if err := a.users.Delete(id); err != nil {
			writeRepoError(w, err, apiclient.MsgUsuarioNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
