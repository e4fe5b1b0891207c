package mockapi

import (
	"net/http"
	"sort"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/internal/validation"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

const msgTreinoNotFound = "Treino não encontrado."

func (a *API) ListTreinos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := a.treinos.List()
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		for i := range list {
			a.fillNames(&list[i])
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ListTreinosWithUsers joins every training with its professional and athlete.
func (a *API) ListTreinosWithUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := a.treinos.List()
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		now := NowTimeFunc()
		out := make([]trainings.TreinoWithUsers, 0, len(list))
		for _, t := range list {
			tw := trainings.TreinoWithUsers{
				CdTreino:     t.CdTreino,
				DsTreino:     t.DsTreino,
				DtCadastro:   t.DtCadastro,
				DtInicio:     t.DtInicio,
				DtFinal:      t.DtFinal,
				Obs:          t.Obs,
				Profissional: trainings.ProfissionalInfo{UsuarioTreino: a.usuarioTreino(t.CdProfissional)},
				Atleta:       trainings.AtletaInfo{UsuarioTreino: a.usuarioTreino(t.CdAtleta)},
			}
			tw.Enrich(now)
			out = append(out, tw)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].DtInicio.After(out[j].DtInicio) })
		writeJSON(w, http.StatusOK, out)
	}
}

func (a *API) GetTreino() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		t, err := a.treinos.GetByID(id)
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		a.fillNames(&t)
		writeJSON(w, http.StatusOK, t)
	}
}

func (a *API) CreateTreino() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in trainings.TreinoCreate
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		now := NowTimeFunc()
		if err := trainings.ValidateCreate(in, now); err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		if err := a.checkParticipants(in.CdProfissional, in.CdAtleta); err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}

		created, err := a.treinos.Create(trainings.Treino{
			DsTreino:       in.DsTreino,
			DtCadastro:     now,
			DtInicio:       in.DtInicio,
			DtFinal:        in.DtFinal,
			CdProfissional: in.CdProfissional,
			CdAtleta:       in.CdAtleta,
			Obs:            in.Obs,
		})
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		a.fillNames(&created)
		log.Info().Int64("cdTreino", created.CdTreino).Msg("Treino created")
		writeJSON(w, http.StatusCreated, created)
	}
}

func (a *API) UpdateTreino() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		var in trainings.TreinoUpdate
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		existing, err := a.treinos.GetByID(id)
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		merged := in.Apply(existing)
		if err := trainings.ValidateUpdate(merged); err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		if err := a.checkParticipants(merged.CdProfissional, merged.CdAtleta); err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		updated, err := a.treinos.Update(merged)
		if err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		a.fillNames(&updated)
		writeJSON(w, http.StatusOK, updated)
	}
}

func (a *API) DeleteTreino() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, apiclient.MsgBadRequest)
			return
		}
		if err := a.treinos.Delete(id); err != nil {
			writeRepoError(w, err, msgTreinoNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) checkParticipants(cdProfissional, cdAtleta int64) error {
	errs := validation.Errors{}
	if _, err := a.users.GetByID(cdProfissional); err != nil {
		errs.Add("cdProfissional", "Profissional não encontrado")
	}
	if _, err := a.users.GetByID(cdAtleta); err != nil {
		errs.Add("cdAtleta", "Atleta não encontrado")
	}
	return errs.Err()
}

func (a *API) usuarioTreino(id int64) trainings.UsuarioTreino {
	u, err := a.users.GetByID(id)
	if err != nil {
		return trainings.UsuarioTreino{CdUsuario: id}
	}
	return toUsuarioTreino(u)
}

func toUsuarioTreino(u users.Usuario) trainings.UsuarioTreino {
	return trainings.UsuarioTreino{
		CdUsuario:  u.CdUsuario,
		Nome:       u.Nome,
		Login:      u.Login,
		Email:      u.Email,
		CdTpAcesso: u.CdTpAcesso,
	}
}

func (a *API) fillNames(t *trainings.Treino) {
	t.NomeProfissional = a.usuarioTreino(t.CdProfissional).Nome
	t.NomeAtleta = a.usuarioTreino(t.CdAtleta).Nome
}
