package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/appstate"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

const msgSessionExpired = "Sua sessão expirou. Faça login novamente."

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithNotification saves the notification as a flash for the next page and redirects.
func redirectWithNotification(w http.ResponseWriter, r *http.Request, path string, kind appstate.NotificationType, message string) {
	if app, _ := sessionsFromRequest(r); app != nil && message != "" {
		app.AddNotification(kind, message)
	}
	saveSession(w, r, true)
	redirectSuccess(w, r, path)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// backendClient is the REST client acting for the request's session. A 401 from
// the backend logs the session out through the client's callback.
func (s *Server) backendClient(r *http.Request) *apiclient.Client {
	app, _ := sessionsFromRequest(r)
	if app == nil {
		return s.api
	}
	return s.api.For(app.Auth(), app.UnauthorizedHandler())
}

// handleSessionLost sends the visitor to login when a backend call ended the
// session. It reports whether it wrote the response.
func handleSessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if apiclient.StatusCode(err) != http.StatusUnauthorized {
		return false
	}
	app, _ := sessionsFromRequest(r)
	if app != nil && app.State().IsAuthenticated {
		return false
	}

	from := RedirectState{From: localPath(r.URL.RequestURI())}
	if r.Method != http.MethodGet {
		from.From = refererPath(r)
	}
	redirectWithNotification(w, r, from.LoginURL(), appstate.NotifyWarning, msgSessionExpired)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}
