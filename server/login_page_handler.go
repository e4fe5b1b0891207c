package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/internal/obs"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

const (
	msgLoginFailed       = "Erro ao fazer login. Verifique suas credenciais."
	msgLoginMissing      = "Informe login e senha."
	msgLoginRateLimited  = "Muitas tentativas de login. Aguarde um momento e tente novamente."
	msgLoginSessionSetup = "Não foi possível iniciar a sessão. Tente novamente."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	From        string
	Login       string // Preserve login on error
	Error       string
	RedirectKey string
}

// LoginPageHandler displays the login page (GET /auth)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("auth.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderLogin(w, r, http.StatusOK, tmpl, LoginPageData{From: redirectStateFrom(r).From})
	}
}

// LoginSubmissionHandler processes the login form. On success the visitor is
// sent back to /auth with the redirect state, and the public guard finishes the trip.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("auth.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		logger := log.Ctx(ctx)

		from := redirectStateFrom(r)
		data := LoginPageData{From: from.From, Login: strings.TrimSpace(r.FormValue("login"))}
		senha := r.FormValue("senha")

		allowed, err := s.loginLimiter.Allow(ctx, s.clientIP(r))
		if err != nil {
			logger.Warn().Err(err).Msg("Login limiter failed, allowing attempt")
		}
		if !allowed {
			obs.ObserveLogin(obs.LoginRateLimited)
			w.Header().Set("Retry-After", strconv.Itoa(int(s.config.GetLoginRateWindow().Seconds())))
			data.Error = msgLoginRateLimited
			s.renderLogin(w, r, http.StatusTooManyRequests, tmpl, data)
			return
		}

		if data.Login == "" || senha == "" {
			obs.ObserveLogin(obs.LoginFailed)
			data.Error = msgLoginMissing
			s.renderLogin(w, r, http.StatusBadRequest, tmpl, data)
			return
		}

		resp, err := s.api.Login(ctx, apiclient.LoginCredentials{Login: data.Login, Senha: senha})
		if err != nil {
			obs.ObserveLogin(obs.LoginFailed)
			status := apiclient.StatusCode(err)
			logger.Info().Str("login", users.MaskLogin(data.Login)).Int("status", status).Msg("Login rejected")

			data.Error = loginErrorMessage(err)
			if status == 0 || status >= http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			s.renderLogin(w, r, status, tmpl, data)
			return
		}

		app, _ := sessionsFromRequest(r)
		user := resp.User()
		if err := app.Login(ctx, resp.Token, user, ""); err != nil {
			logger.Err(err).Str("login", users.MaskLogin(user.Login)).Msg("Failed to persist session")
			data.Error = msgLoginSessionSetup
			s.renderLogin(w, r, http.StatusInternalServerError, tmpl, data)
			return
		}

		obs.ObserveLogin(obs.LoginSuccess)
		logger.Info().Str("login", users.MaskLogin(user.Login)).Str("perfil", user.Perfil).Msg("Login succeeded")
		redirectWithNotification(w, r, from.LoginURL(), appstate.NotifySuccess, "Bem-vindo, "+user.Nome+"!")
	}
}

// LogoutHandler clears the credentials and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app, _ := sessionsFromRequest(r); app != nil {
			app.Logout(r.Context())
		}
		redirectWithNotification(w, r, RouteAuth, appstate.NotifyInfo, "Sessão encerrada.")
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data LoginPageData) {
	data.RedirectKey = RedirectStateKey
	s.renderPage(w, r, status, pageView{
		Title:   "Entrar",
		Active:  "auth",
		Content: tmpl,
		Data:    data,
	})
}

func loginErrorMessage(err error) string {
	if msg := apiclient.BackendMessage(err); msg != "" {
		return msg
	}
	if apiclient.IsNetworkError(err) {
		return apiclient.MsgNetworkError
	}
	return msgLoginFailed
}
