package server

import (
	"net/http"

	"github.com/jrsteele09/fedteam/auth"
)

type homeView struct {
	Authenticated bool
	Nome          string
	Perfil        string
	Perms         auth.Permissions
}

// HomeHandler renders the home page. It is public, visitors get a login prompt.
func (s *Server) HomeHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("home.html")

	return func(w http.ResponseWriter, r *http.Request) {
		view := homeView{}
		if app, _ := sessionsFromRequest(r); app != nil {
			st := app.State()
			view.Authenticated = st.IsAuthenticated
			view.Perms = app.Permissions()
			if u := st.CurrentUser; u != nil {
				view.Nome = u.Nome
				view.Perfil = auth.AccessCode(u.CdTpAcesso).String()
			}
		}

		s.renderPage(w, r, http.StatusOK, pageView{
			Title:   "Início",
			Active:  "home",
			Content: tmpl,
			Data:    view,
		})
	}
}
