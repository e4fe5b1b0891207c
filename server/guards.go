package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/fedteam/appstate"
)

// RedirectStateKey names the query parameter and form field both guards use
// to carry the page a visitor was sent away from.
const RedirectStateKey = "from"

// RedirectState remembers where to return after logging in.
type RedirectState struct {
	From string
}

// redirectStateFrom reads the state from the query string or a posted form.
// Anything but a local absolute path is dropped.
func redirectStateFrom(r *http.Request) RedirectState {
	return RedirectState{From: localPath(r.FormValue(RedirectStateKey))}
}

// LoginURL is the auth page carrying this state.
func (rs RedirectState) LoginURL() string {
	if rs.From == "" {
		return RouteAuth
	}
	return RouteAuth + "?" + url.Values{RedirectStateKey: {rs.From}}.Encode()
}

// Target is where an authenticated visitor should land.
func (rs RedirectState) Target() string {
	if rs.From == "" {
		return RouteHome
	}
	return rs.From
}

func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return p
}

// refererPath returns the path of a same host Referer.
func refererPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return ""
	}
	return localPath(ref.RequestURI())
}

// RequireAuth guards a page. Pages that do not require auth render for
// everyone. While the session is still loading a placeholder is shown,
// anonymous visitors are sent to the login page with the current location.
func (s *Server) RequireAuth(requiredAuth bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !requiredAuth {
				next(w, r)
				return
			}

			st := sessionState(r)
			switch {
			case st.IsLoading:
				s.renderLoading(w, r)
			case !st.IsAuthenticated:
				from := RedirectState{From: localPath(r.URL.RequestURI())}
				if r.Method != http.MethodGet {
					from.From = refererPath(r)
				}
				redirectSuccess(w, r, from.LoginURL())
			default:
				next(w, r)
			}
		}
	}
}

// PublicOnly guards pages meant for anonymous visitors, such as the login page.
// Authenticated visitors are sent back to where they came from, or home.
func (s *Server) PublicOnly() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			st := sessionState(r)
			switch {
			case st.IsLoading:
				s.renderLoading(w, r)
			case st.IsAuthenticated:
				redirectSuccess(w, r, redirectStateFrom(r).Target())
			default:
				next(w, r)
			}
		}
	}
}

func sessionState(r *http.Request) appstate.State {
	app, _ := sessionsFromRequest(r)
	if app == nil {
		return appstate.State{IsLoading: true}
	}
	return app.State()
}
