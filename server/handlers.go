package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/fedteam/appstate"
)

// ThemeHandler switches between light and dark. The choice lives in the cookie.
func (s *Server) ThemeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, _ := sessionsFromRequest(r)
		if app == nil {
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		theme := appstate.ParseTheme(r.FormValue("theme"))
		if r.FormValue("theme") == "" {
			theme = appstate.ThemeDark
			if app.State().Theme == appstate.ThemeDark {
				theme = appstate.ThemeLight
			}
		}
		app.SetTheme(theme)

		back := refererPath(r)
		if back == "" {
			back = RouteHome
		}
		// Pending notifications were restored by the middleware, keep them for the next page
		saveSession(w, r, true)
		redirectSuccess(w, r, back)
	}
}

// DismissNotificationHandler drops a notification. HTMX swaps the element out
// with the empty response.
func (s *Server) DismissNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, _ := sessionsFromRequest(r)
		if app != nil {
			app.RemoveNotification(r.PathValue("id"))
		}
		saveSession(w, r, true)

		if isHTMXRequest(r) {
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(http.StatusOK)
			return
		}
		back := refererPath(r)
		if back == "" {
			back = RouteHome
		}
		redirectSuccess(w, r, back)
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	SessionStore string `json:"sessionStore"`
	Plugin       string `json:"plugin"`
}

// HealthHandler reports the session store and plugin availability. Only a
// session store outage makes it 503.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Version: s.config.GetAppVersion(), SessionStore: "ok", Plugin: "ok"}
		status := http.StatusOK
		if !s.storeReady(ctx, true) {
			resp.Status, resp.SessionStore = "degraded", "unavailable"
			status = http.StatusServiceUnavailable
		}
		if !s.plugin.IsAvailable(ctx) {
			resp.Plugin = "unavailable"
		}
		writeJSON(w, status, resp)
	}
}
