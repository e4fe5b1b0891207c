package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/internal/validation"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/rs/zerolog/log"
)

var historyPeriods = []int{7, 30, 90, 365}

const defaultHistoryPeriod = 30

type treinoForm struct {
	DsTreino       string
	DtInicio       string
	DtFinal        string
	CdProfissional int64
	CdAtleta       int64
	Obs            string
}

type treinosView struct {
	Tab       string
	Tabs      []tabLink
	CanCreate bool
	ReadOnly  bool
	IsAdmin   bool
	Error     string

	// meus
	Treinos []trainings.TreinoWithUsers
	Stats   trainings.Stats

	// cadastro
	Form          treinoForm
	FormErrors    map[string]string
	Participantes []participantOption
	MinDate       string

	// biblioteca
	Exercicios   []trainings.Exercicio
	MuscleGroups []trainings.Option
	Equipment    []trainings.Option
	Grupo        string
	Equipamento  string

	// historico
	Historico []trainings.TreinoWithUsers
	Period    int
	Periods   []int
}

type tabLink struct {
	Key    string
	Label  string
	URL    string
	Active bool
}

type participantOption struct {
	ID   int64
	Nome string
	Tipo string
}

func treinoTabs(active string) []tabLink {
	tabs := []tabLink{
		{Key: TabMeus, Label: "Meus Treinos"},
		{Key: TabCadastro, Label: "Cadastro"},
		{Key: TabBiblioteca, Label: "Biblioteca"},
		{Key: TabHistorico, Label: "Histórico"},
	}
	for i := range tabs {
		tabs[i].URL = RouteTreinos + "?tab=" + tabs[i].Key
		tabs[i].Active = tabs[i].Key == active
	}
	return tabs
}

func parseTab(s string) string {
	switch s {
	case TabCadastro, TabBiblioteca, TabHistorico:
		return s
	default:
		return TabMeus
	}
}

// TreinosPageHandler renders the tabbed trainings page.
func (s *Server) TreinosPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("treinos.html")

	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := s.buildTreinosView(w, r, parseTab(r.URL.Query().Get("tab")))
		if !ok {
			return
		}
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:   "Treinos",
			Active:  "treinos",
			Content: tmpl,
			Data:    view,
		})
	}
}

// buildTreinosView loads what the tab needs. It reports false when it already
// wrote the response.
func (s *Server) buildTreinosView(w http.ResponseWriter, r *http.Request, tab string) (*treinosView, bool) {
	app, _ := sessionsFromRequest(r)
	perms := app.Permissions()
	now := trainings.NowTimeFunc()

	view := &treinosView{
		Tab:        tab,
		Tabs:       treinoTabs(tab),
		CanCreate:  perms.CanCreateTraining(),
		ReadOnly:   perms.IsReadOnly(),
		IsAdmin:    perms.IsAdmin(),
		FormErrors: map[string]string{},
		MinDate:    now.Format("2006-01-02"),
	}
	client := s.backendClient(r)

	switch tab {
	case TabMeus, TabHistorico:
		list, err := client.ListTreinosWithUsers(r.Context())
		if err != nil {
			if handleSessionLost(w, r, err) {
				return nil, false
			}
			log.Ctx(r.Context()).Err(err).Msg("Failed to list treinos")
			view.Error = apiclient.Message(err)
		}
		if !perms.IsAdmin() {
			list = ownTreinos(list, app.State().CurrentUser)
		}
		if tab == TabMeus {
			view.Treinos = list
			view.Stats = trainings.ComputeStats(list, now)
			break
		}
		view.Periods = historyPeriods
		view.Period = parsePeriod(r.URL.Query().Get("periodo"))
		view.Historico = trainings.History(list, now, view.Period)

	case TabCadastro:
		if !view.CanCreate {
			break
		}
		view.Form = treinoForm{DtInicio: view.MinDate, DtFinal: now.AddDate(0, 0, 30).Format("2006-01-02")}
		if u := app.State().CurrentUser; u != nil {
			view.Form.CdProfissional, _ = strconv.ParseInt(u.ID, 10, 64)
		}
		if !s.loadParticipants(w, r, view) {
			return nil, false
		}

	case TabBiblioteca:
		view.Grupo = r.URL.Query().Get("grupo")
		view.Equipamento = r.URL.Query().Get("equipamento")
		view.MuscleGroups = trainings.MuscleGroups
		view.Equipment = trainings.Equipment
		view.Exercicios = trainings.Library(view.Grupo, view.Equipamento)
	}
	return view, true
}

// loadParticipants fills the profissional and atleta choices with the active users.
func (s *Server) loadParticipants(w http.ResponseWriter, r *http.Request, view *treinosView) bool {
	list, err := s.backendClient(r).ListUsuarios(r.Context())
	if err != nil {
		if handleSessionLost(w, r, err) {
			return false
		}
		log.Ctx(r.Context()).Err(err).Msg("Failed to list participants")
		view.Error = apiclient.Message(err)
		return true
	}
	for _, u := range list {
		if !u.FlAtivo {
			continue
		}
		view.Participantes = append(view.Participantes, participantOption{
			ID:   u.CdUsuario,
			Nome: u.Nome,
			Tipo: u.AccessLabel(),
		})
	}
	return true
}

// TreinoCreateHandler validates and creates a training. Only profiles that can
// create trainings reach it.
func (s *Server) TreinoCreateHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("treinos.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		now := trainings.NowTimeFunc()
		form := readTreinoForm(r)

		in := trainings.TreinoCreate{
			DsTreino:       form.DsTreino,
			CdProfissional: form.CdProfissional,
			CdAtleta:       form.CdAtleta,
			Obs:            form.Obs,
		}
		if d, err := utils.ParseDate(form.DtInicio, now.Location()); err == nil {
			in.DtInicio = d
		}
		if d, err := utils.ParseDate(form.DtFinal, now.Location()); err == nil {
			in.DtFinal = d
		}

		verr := trainings.ValidateCreate(in, now)
		var backendErr error
		if verr == nil {
			_, backendErr = s.backendClient(r).CreateTreino(r.Context(), in)
			if backendErr == nil {
				redirectWithNotification(w, r, RouteTreinos+"?tab="+TabMeus, appstate.NotifySuccess, "Treino "+in.DsTreino+" cadastrado.")
				return
			}
			if handleSessionLost(w, r, backendErr) {
				return
			}
			log.Ctx(r.Context()).Warn().Err(backendErr).Msg("Failed to create treino")
		}

		view, ok := s.buildTreinosView(w, r, TabCadastro)
		if !ok {
			return
		}
		view.Form = form
		var verrs validation.Errors
		if errors.As(verr, &verrs) {
			for field := range verrs {
				view.FormErrors[field] = verrs.First(field)
			}
		}
		status := http.StatusUnprocessableEntity
		if backendErr != nil {
			view.Error = apiclient.Message(backendErr)
			status = formStatus(backendErr)
		}
		s.renderPage(w, r, status, pageView{
			Title:   "Treinos",
			Active:  "treinos",
			Content: tmpl,
			Data:    view,
		})
	}
}

// TreinoDeleteHandler removes a training
func (s *Server) TreinoDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := s.backendClient(r).DeleteTreino(r.Context(), id); err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			log.Ctx(r.Context()).Warn().Err(err).Int64("cdTreino", id).Msg("Failed to delete treino")
			redirectWithNotification(w, r, RouteTreinos, appstate.NotifyError, apiclient.Message(err))
			return
		}
		redirectWithNotification(w, r, RouteTreinos, appstate.NotifySuccess, "Treino excluído.")
	}
}

func readTreinoForm(r *http.Request) treinoForm {
	prof, _ := strconv.ParseInt(r.FormValue("cdProfissional"), 10, 64)
	atleta, _ := strconv.ParseInt(r.FormValue("cdAtleta"), 10, 64)
	return treinoForm{
		DsTreino:       strings.TrimSpace(r.FormValue("dsTreino")),
		DtInicio:       strings.TrimSpace(r.FormValue("dtInicio")),
		DtFinal:        strings.TrimSpace(r.FormValue("dtFinal")),
		CdProfissional: prof,
		CdAtleta:       atleta,
		Obs:            strings.TrimSpace(r.FormValue("obs")),
	}
}

// ownTreinos keeps the trainings the user takes part in.
func ownTreinos(list []trainings.TreinoWithUsers, user *auth.User) []trainings.TreinoWithUsers {
	if user == nil {
		return nil
	}
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return nil
	}
	out := make([]trainings.TreinoWithUsers, 0, len(list))
	for _, t := range list {
		if t.Profissional.CdUsuario == id || t.Atleta.CdUsuario == id {
			out = append(out, t)
		}
	}
	return out
}

func parsePeriod(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil {
		return defaultHistoryPeriod
	}
	for _, allowed := range historyPeriods {
		if p == allowed {
			return p
		}
	}
	return defaultHistoryPeriod
}
