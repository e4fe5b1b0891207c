package server

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/internal/validation"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

type usuarioRow struct {
	users.Usuario
	Status users.Status
}

type usuarioFilterForm struct {
	Nome     string
	Email    string
	Login    string
	Ativo    string // "", "true" or "false"
	Expirado string
}

type usuariosView struct {
	Rows       []usuarioRow
	Total      int
	Filters    usuarioFilterForm
	CanManage  bool
	Restricted bool
	Error      string
}

// usuarioForm is the create/edit form as posted.
type usuarioForm struct {
	CdUsuario   int64
	Login       string
	Nome        string
	Email       string
	FlAtivo     bool
	DtExpiracao string
	CdTpAcesso  int
}

type usuarioFormView struct {
	Editing      bool
	Action       string
	Form         usuarioForm
	Errors       map[string]string
	Error        string
	AccessCodes  []accessOption
	ValidateURL  string
	PasswordHint string
}

type accessOption struct {
	Code  int
	Label string
}

func accessOptions() []accessOption {
	codes := auth.AccessCodes()
	out := make([]accessOption, 0, len(codes))
	for _, c := range codes {
		out = append(out, accessOption{Code: int(c), Label: c.String()})
	}
	return out
}

func parseFilters(r *http.Request) (usuarioFilterForm, users.Filters) {
	q := r.URL.Query()
	form := usuarioFilterForm{
		Nome:     strings.TrimSpace(q.Get("nome")),
		Email:    strings.TrimSpace(q.Get("email")),
		Login:    strings.TrimSpace(q.Get("login")),
		Ativo:    q.Get("ativo"),
		Expirado: q.Get("expirado"),
	}
	f := users.Filters{Nome: form.Nome, Email: form.Email, Login: form.Login}
	if b, err := strconv.ParseBool(form.Ativo); err == nil {
		f.FlAtivo = &b
	} else {
		form.Ativo = ""
	}
	if b, err := strconv.ParseBool(form.Expirado); err == nil {
		f.Expirado = &b
	} else {
		form.Expirado = ""
	}
	return form, f
}

// UsuariosListHandler lists users. Management controls are only shown to admins.
func (s *Server) UsuariosListHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("usuarios.html")

	return func(w http.ResponseWriter, r *http.Request) {
		app, _ := sessionsFromRequest(r)
		perms := app.Permissions()
		form, filters := parseFilters(r)
		view := usuariosView{
			Filters:    form,
			CanManage:  perms.IsAdmin(),
			Restricted: perms.HasRestrictedAccess(),
		}

		list, err := s.backendClient(r).ListUsuarios(r.Context())
		if err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			log.Ctx(r.Context()).Err(err).Msg("Failed to list usuarios")
			view.Error = apiclient.Message(err)
		}

		now := users.NowTimeFunc()
		view.Total = len(list)
		for _, u := range filters.Apply(list, now) {
			view.Rows = append(view.Rows, usuarioRow{Usuario: u, Status: u.Status(now)})
		}

		s.renderPage(w, r, http.StatusOK, pageView{
			Title:   "Usuários",
			Active:  "usuarios",
			Content: tmpl,
			Data:    view,
		})
	}
}

// UsuarioNovoPageHandler renders an empty create form
func (s *Server) UsuarioNovoPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("usuario_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		form := usuarioForm{FlAtivo: true, CdTpAcesso: int(auth.AccessStandard)}
		s.renderUsuarioForm(w, r, http.StatusOK, tmpl, form, nil, "")
	}
}

// UsuarioCreateHandler validates the form locally, then asks the backend to create the user
func (s *Server) UsuarioCreateHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("usuario_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := readUsuarioForm(r)
		senha := r.FormValue("senha")

		in := users.UsuarioCreate{
			Login:       form.Login,
			Senha:       senha,
			Nome:        form.Nome,
			Email:       form.Email,
			FlAtivo:     utils.Ptr(form.FlAtivo),
			DtExpiracao: optionalString(form.DtExpiracao),
			CdTpAcesso:  utils.Ptr(form.CdTpAcesso),
		}
		if err := users.ValidateCreate(in); err != nil {
			s.renderUsuarioForm(w, r, http.StatusUnprocessableEntity, tmpl, form, err, "")
			return
		}

		created, err := s.backendClient(r).CreateUsuario(r.Context(), in)
		if err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			log.Ctx(r.Context()).Warn().Err(err).Str("login", users.MaskLogin(form.Login)).Msg("Failed to create usuario")
			s.renderUsuarioForm(w, r, formStatus(err), tmpl, form, nil, apiclient.Message(err))
			return
		}

		redirectWithNotification(w, r, RouteUsuarios, appstate.NotifySuccess, "Usuário "+created.Nome+" criado com sucesso.")
	}
}

// UsuarioEditarPageHandler loads the user into the edit form
func (s *Server) UsuarioEditarPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("usuario_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}

		u, err := s.backendClient(r).GetUsuario(r.Context(), id)
		if err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			if apiclient.StatusCode(err) == http.StatusNotFound {
				redirectWithNotification(w, r, RouteUsuarios, appstate.NotifyError, apiclient.MsgUsuarioNotFound)
				return
			}
			redirectWithNotification(w, r, RouteUsuarios, appstate.NotifyError, apiclient.Message(err))
			return
		}

		form := usuarioForm{
			CdUsuario:   u.CdUsuario,
			Login:       u.Login,
			Nome:        u.Nome,
			Email:       u.Email,
			FlAtivo:     u.FlAtivo,
			DtExpiracao: dateOnly(utils.Value(u.DtExpiracao)),
			CdTpAcesso:  u.CdTpAcesso,
		}
		s.renderUsuarioForm(w, r, http.StatusOK, tmpl, form, nil, "")
	}
}

// UsuarioUpdateHandler saves the edit form. An empty senha keeps the current password.
func (s *Server) UsuarioUpdateHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("usuario_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := readUsuarioForm(r)
		form.CdUsuario = id

		in := users.UsuarioUpdate{
			Login:       form.Login,
			Senha:       optionalString(r.FormValue("senha")),
			Nome:        form.Nome,
			Email:       form.Email,
			FlAtivo:     utils.Ptr(form.FlAtivo),
			DtExpiracao: optionalString(form.DtExpiracao),
			CdTpAcesso:  form.CdTpAcesso,
		}
		if err := users.ValidateUpdate(in); err != nil {
			s.renderUsuarioForm(w, r, http.StatusUnprocessableEntity, tmpl, form, err, "")
			return
		}

		updated, err := s.backendClient(r).UpdateUsuario(r.Context(), id, in)
		if err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			log.Ctx(r.Context()).Warn().Err(err).Int64("cdUsuario", id).Msg("Failed to update usuario")
			s.renderUsuarioForm(w, r, formStatus(err), tmpl, form, nil, apiclient.Message(err))
			return
		}

		redirectWithNotification(w, r, RouteUsuarios, appstate.NotifySuccess, "Usuário "+updated.Nome+" atualizado.")
	}
}

// UsuarioDeleteHandler removes a user. Admins cannot delete their own account.
func (s *Server) UsuarioDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}

		app, _ := sessionsFromRequest(r)
		if u := app.State().CurrentUser; u != nil && u.ID == strconv.FormatInt(id, 10) {
			redirectWithNotification(w, r, RouteUsuarios, appstate.NotifyWarning, "Você não pode excluir o próprio usuário.")
			return
		}

		if err := s.backendClient(r).DeleteUsuario(r.Context(), id); err != nil {
			if handleSessionLost(w, r, err) {
				return
			}
			log.Ctx(r.Context()).Warn().Err(err).Int64("cdUsuario", id).Msg("Failed to delete usuario")
			redirectWithNotification(w, r, RouteUsuarios, appstate.NotifyError, apiclient.Message(err))
			return
		}

		redirectWithNotification(w, r, RouteUsuarios, appstate.NotifySuccess, "Usuário excluído.")
	}
}

func (s *Server) renderUsuarioForm(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, form usuarioForm, validationErr error, message string) {
	view := usuarioFormView{
		Editing:      form.CdUsuario != 0,
		Action:       RouteUsuarioNovo,
		Form:         form,
		Errors:       map[string]string{},
		Error:        message,
		AccessCodes:  accessOptions(),
		ValidateURL:  RouteUsuarioValidarSenha,
		PasswordHint: passwordHint,
	}
	title := "Novo usuário"
	if view.Editing {
		view.Action = strings.Replace(RouteUsuarioEditar, "{id}", strconv.FormatInt(form.CdUsuario, 10), 1)
		title = "Editar usuário"
	}

	var verrs validation.Errors
	if errors.As(validationErr, &verrs) {
		for field := range verrs {
			view.Errors[field] = verrs.First(field)
		}
	}

	s.renderPage(w, r, status, pageView{
		Title:   title,
		Active:  "usuarios",
		Content: tmpl,
		Data:    view,
	})
}

func readUsuarioForm(r *http.Request) usuarioForm {
	code, err := strconv.Atoi(r.FormValue("cdTpAcesso"))
	if err != nil {
		code = 0
	}
	return usuarioForm{
		Login:       strings.TrimSpace(r.FormValue("login")),
		Nome:        strings.TrimSpace(r.FormValue("nome")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		FlAtivo:     r.FormValue("flAtivo") != "",
		DtExpiracao: strings.TrimSpace(r.FormValue("dtExpiracao")),
		CdTpAcesso:  code,
	}
}

// formStatus picks the status for re-rendering a form after a backend failure.
func formStatus(err error) int {
	switch status := apiclient.StatusCode(err); {
	case status == http.StatusConflict, status == http.StatusBadRequest:
		return http.StatusUnprocessableEntity
	case status == http.StatusForbidden, status == http.StatusNotFound:
		return status
	default:
		return http.StatusBadGateway
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// dateOnly trims a backend timestamp to the yyyy-mm-dd a date input expects.
func dateOnly(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
