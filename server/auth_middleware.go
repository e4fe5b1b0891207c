package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/ids"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyCookieSession stores the gorilla cookie session of the request
const ContextKeyCookieSession ContextKey = "cookie_session"

// Cookie session values
const (
	cookieKeySessionID = "sid"
	cookieKeyTheme     = "theme"
)

// pinger is implemented by session stores that can report their availability.
type pinger interface {
	Ping(ctx context.Context) error
}

const storePingInterval = 5 * time.Second

// pingCache remembers the last session store ping for a short interval.
type pingCache struct {
	store pinger
	every time.Duration

	mu      sync.Mutex
	checked time.Time
	err     error
}

// newPingCache returns nil for stores that cannot be pinged, which always count as ready.
func newPingCache(repo any, every time.Duration) *pingCache {
	p, ok := repo.(pinger)
	if !ok {
		return nil
	}
	return &pingCache{store: p, every: every}
}

// check returns the cached result unless it is older than the interval or force is set.
func (sp *pingCache) check(ctx context.Context, force bool) error {
	if sp == nil {
		return nil
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()

	now := time.Now()
	if !force && !sp.checked.IsZero() && now.Sub(sp.checked) < sp.every {
		return sp.err
	}
	sp.err = sp.store.Ping(ctx)
	sp.checked = now
	return sp.err
}

// SessionMiddleware loads the browser session for the request: the cookie holds
// the session id, theme and pending notifications, the session repo holds the
// credentials. Authentication is resolved unless the store cannot be reached,
// in which case the session stays loading.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := s.cookies.Get(r, s.config.GetSessionCookieName())
		if err != nil {
			// gorilla still hands back a fresh session
			log.Ctx(r.Context()).Warn().Err(err).Msg("Discarding unreadable session cookie")
		}

		sid, _ := cs.Values[cookieKeySessionID].(string)
		if sid == "" {
			sid = ids.SessionID()
			cs.Values[cookieKeySessionID] = sid
		}

		app := appstate.New(auth.NewService(s.sessionRepo, sid, auth.WithExpiryPolicy(s.expiry)))
		if theme, ok := cs.Values[cookieKeyTheme].(string); ok {
			app.SetTheme(appstate.ParseTheme(theme))
		}
		app.RestoreNotifications(takeNotifications(cs))

		if s.sessionStoreReady(r.Context()) {
			app.CheckAuthStatus(r.Context())
		}

		ctx := appstate.WithSession(r.Context(), app)
		ctx = context.WithValue(ctx, ContextKeyCookieSession, cs)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) sessionStoreReady(ctx context.Context) bool {
	return s.storeReady(ctx, false)
}

func (s *Server) storeReady(ctx context.Context, force bool) bool {
	if err := s.store.check(ctx, force); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Session store unavailable, authentication left unresolved")
		return false
	}
	return true
}

// sessionsFromRequest returns the app session and its cookie. Both are set by SessionMiddleware.
func sessionsFromRequest(r *http.Request) (*appstate.Session, *sessions.Session) {
	app, _ := appstate.FromContext(r.Context())
	cs, _ := r.Context().Value(ContextKeyCookieSession).(*sessions.Session)
	return app, cs
}

// saveSession writes the cookie. With carry set, the notifications still held by
// the session are stored as flashes for the next page, which is what redirects want.
func saveSession(w http.ResponseWriter, r *http.Request, carry bool) {
	app, cs := sessionsFromRequest(r)
	if app == nil || cs == nil {
		return
	}

	st := app.State()
	cs.Values[cookieKeySessionID] = app.Auth().SessionID()
	cs.Values[cookieKeyTheme] = string(st.Theme)
	if carry {
		for _, n := range st.Notifications {
			raw, err := json.Marshal(n)
			if err != nil {
				continue
			}
			cs.AddFlash(string(raw))
		}
	}
	if err := cs.Save(r, w); err != nil {
		log.Ctx(r.Context()).Err(err).Msg("Failed to save session cookie")
	}
}

func takeNotifications(cs *sessions.Session) []appstate.Notification {
	var out []appstate.Notification
	for _, f := range cs.Flashes() {
		raw, ok := f.(string)
		if !ok {
			continue
		}
		var n appstate.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// RequirePermission renders the forbidden page unless check passes for the
// session's permissions. Chain it after RequireAuth(true).
func (s *Server) RequirePermission(check func(auth.Permissions) bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			app, _ := sessionsFromRequest(r)
			if app == nil || !check(app.Permissions()) {
				s.renderForbidden(w, r)
				return
			}
			next(w, r)
		}
	}
}

func canAdmin(p auth.Permissions) bool          { return p.IsAdmin() }
func canCreateTraining(p auth.Permissions) bool { return p.CanCreateTraining() }
