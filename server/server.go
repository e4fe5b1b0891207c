package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/config"
	"github.com/jrsteele09/fedteam/internal/limiter"
	"github.com/jrsteele09/fedteam/internal/obs"
	"github.com/jrsteele09/fedteam/plugin"
	fedsessions "github.com/jrsteele09/fedteam/sessions"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	handler      http.Handler
	routes       []string
	config       config.Config
	cookies      *sessions.CookieStore
	sessionRepo  fedsessions.Repo
	api          *apiclient.Client
	plugin       *plugin.Client
	loginLimiter limiter.Limiter
	expiry       auth.ExpiryPolicy
	proxies      []netip.Prefix
	store        *pingCache
}

// New wires the page handlers. api and pluginClient are shared, per request
// copies carrying the session's bearer token are derived from them.
func New(cfg config.Config, sessionRepo fedsessions.Repo, api *apiclient.Client, pluginClient *plugin.Client, loginLimiter limiter.Limiter) (*Server, error) {
	if sessionRepo == nil || api == nil || pluginClient == nil || loginLimiter == nil {
		return nil, fmt.Errorf("[Server New] session repo, api client, plugin client and login limiter are required")
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		cookies:      newCookieStore(cfg),
		sessionRepo:  sessionRepo,
		api:          api,
		plugin:       pluginClient,
		loginLimiter: loginLimiter,
		expiry:       auth.ExpiryPolicyByName(cfg.GetTokenExpiryPolicy()),
		proxies:      parseTrustedProxies(cfg.GetTrustedProxies()),
		store:        newPingCache(sessionRepo, storePingInterval),
	}
	s.initRoutes()
	s.handler = obs.Instrument(s.mux)
	s.logRoutes()

	return s, nil
}

func newCookieStore(cfg config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.GetMaxSessionAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// clientIP is the peer address. When the peer is a trusted proxy the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not a trusted proxy wins, so a client cannot pick its own address.
func (s *Server) clientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	if !s.isTrustedProxy(remote) {
		return remote
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !s.isTrustedProxy(hop) {
			return hop
		}
	}
	return remote
}

func (s *Server) isTrustedProxy(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// parseTrustedProxies accepts single IPs and CIDRs. Invalid entries are logged and skipped.
func parseTrustedProxies(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				log.Warn().Err(err).Str("proxy", e).Msg("Ignoring invalid trusted proxy")
				continue
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			log.Warn().Err(err).Str("proxy", e).Msg("Ignoring invalid trusted proxy")
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}
