package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"maskLogin":     users.MaskLogin,
	"dataCadastro":  users.FormatDataCadastro,
	"dataExpiracao": users.FormatDataExpiracao,
	"accessLabel": func(code int) string {
		return auth.AccessCode(code).String()
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02/01/2006")
	},
	"isoDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse %s template: %v", name, err))
	}
	return tmpl
}

// pageView is one server rendered page: a content template inside the layout.
type pageView struct {
	Title   string
	Active  string
	Content *template.Template
	Data    any
}

// layoutData is what layout.html sees.
type layoutData struct {
	AppName    string
	Version    string
	Title      string
	ActivePage string
	State      appstate.State
	Perms      auth.Permissions
	UserLabel  string
	Content    template.HTML
}

var (
	layoutTmpl    = mustParseTemplate("layout.html")
	loadingTmpl   = mustParseTemplate("loading.html")
	notFoundTmpl  = mustParseTemplate("not_found.html")
	forbiddenTmpl = mustParseTemplate("forbidden.html")
)

// renderPage renders the content into the layout and writes it with status.
// Notifications are shown once, so the cookie is saved without them.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	var content bytes.Buffer
	if err := view.Content.Execute(&content, view.Data); err != nil {
		log.Ctx(r.Context()).Err(err).Str("template", view.Content.Name()).Msg("Failed to render content template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	data := layoutData{
		AppName:    s.config.GetAppName(),
		Version:    s.config.GetAppVersion(),
		Title:      view.Title,
		ActivePage: view.Active,
		Content:    template.HTML(content.String()),
	}
	if app, _ := sessionsFromRequest(r); app != nil {
		data.State = app.State()
		data.Perms = app.Permissions()
		if u := data.State.CurrentUser; u != nil {
			data.UserLabel = u.Nome
			if data.UserLabel == "" {
				data.UserLabel = u.Login
			}
		}
	}

	var page bytes.Buffer
	if err := layoutTmpl.Execute(&page, data); err != nil {
		log.Ctx(r.Context()).Err(err).Msg("Failed to render layout template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	saveSession(w, r, false)
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}

// renderFragment renders a template on its own, for HTMX swaps.
func renderFragment(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Ctx(r.Context()).Err(err).Str("template", name).Msg("Failed to render fragment")
		http.Error(w, "Failed to render fragment", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderLoading is the placeholder shown while authentication is unresolved.
// The browser retries on its own.
func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := map[string]any{
		"AppName": s.config.GetAppName(),
		"Message": "Verificando autenticação...",
	}
	if err := loadingTmpl.Execute(&buf, data); err != nil {
		log.Ctx(r.Context()).Err(err).Msg("Failed to render loading template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Refresh", "2")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderForbidden(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusForbidden, pageView{
		Title:   "Acesso negado",
		Content: forbiddenTmpl,
	})
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusNotFound, pageView{
		Title:   "Página não encontrada",
		Content: notFoundTmpl,
		Data:    map[string]string{"Path": r.URL.Path},
	})
}
