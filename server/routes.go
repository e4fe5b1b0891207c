package server

import (
	"net/http"

	"github.com/jrsteele09/fedteam/internal/obs"
)

func (s *Server) initRoutes() {
	public := s.RequireAuth(false)
	protected := s.RequireAuth(true)
	admin := s.RequirePermission(canAdmin)
	trainer := s.RequirePermission(canCreateTraining)

	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.HomeHandler(), s.PageMiddleware(public)...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteAuth, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware(s.PublicOnly())...))
	s.RegisterRouteFunc("POST "+RouteAuth, ChainMiddleware(s.LoginSubmissionHandler(), s.PageMiddleware(s.PublicOnly())...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// USUARIOS
	s.RegisterRouteFunc("GET "+RouteUsuarios, ChainMiddleware(s.UsuariosListHandler(), s.PageMiddleware(protected)...))
	s.RegisterRouteFunc("GET "+RouteUsuarioNovo, ChainMiddleware(s.UsuarioNovoPageHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RouteUsuarioNovo, ChainMiddleware(s.UsuarioCreateHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("GET "+RouteUsuarioEditar, ChainMiddleware(s.UsuarioEditarPageHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RouteUsuarioEditar, ChainMiddleware(s.UsuarioUpdateHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RouteUsuarioExcluir, ChainMiddleware(s.UsuarioDeleteHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RouteUsuarioValidarSenha, ChainMiddleware(s.ValidatePasswordHandler(), s.PageMiddleware(protected, admin)...))

	// TREINOS
	s.RegisterRouteFunc("GET "+RouteTreinos, ChainMiddleware(s.TreinosPageHandler(), s.PageMiddleware(protected)...))
	s.RegisterRouteFunc("POST "+RouteTreinos, ChainMiddleware(s.TreinoCreateHandler(), s.PageMiddleware(protected, trainer)...))
	s.RegisterRouteFunc("POST "+RouteTreinoExcluir, ChainMiddleware(s.TreinoDeleteHandler(), s.PageMiddleware(protected, trainer)...))

	// PLUGINS
	s.RegisterRouteFunc("GET "+RoutePlugins, ChainMiddleware(s.PluginsPageHandler(), s.PageMiddleware(protected)...))
	s.RegisterRouteFunc("POST "+RoutePluginRestart, ChainMiddleware(s.PluginRestartHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RoutePluginConfig, ChainMiddleware(s.PluginConfigHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RoutePluginCommand, ChainMiddleware(s.PluginCommandHandler(), s.PageMiddleware(protected, admin)...))
	s.RegisterRouteFunc("POST "+RoutePluginDevice, ChainMiddleware(s.PluginDeviceHandler(), s.PageMiddleware(protected)...))

	// UI state
	s.RegisterRouteFunc("POST "+RouteTheme, ChainMiddleware(s.ThemeHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteNotificationDismiss, ChainMiddleware(s.DismissNotificationHandler(), s.PageMiddleware()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, obs.Handler())

	s.RegisterRouteFunc("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteFunc("/", ChainMiddleware(s.NotFoundHandler(), s.PageMiddleware()...))
}

// NotFoundHandler renders the 404 page inside the layout
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderNotFound(w, r)
	}
}
