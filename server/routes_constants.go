package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/"

	// Auth Routes - Login & Logout
	RouteAuth       = "/auth"
	RouteAuthLogout = "/auth/logout"

	// Usuários
	RouteUsuarios            = "/usuarios"
	RouteUsuarioNovo         = "/usuarios/novo"
	RouteUsuarioEditar       = "/usuarios/{id}/editar"
	RouteUsuarioExcluir      = "/usuarios/{id}/excluir"
	RouteUsuarioValidarSenha = "/usuarios/validar-senha"

	// Treinos
	RouteTreinos       = "/treinos"
	RouteTreinoExcluir = "/treinos/{id}/excluir"

	// Plugins
	RoutePlugins       = "/plugins"
	RoutePluginRestart = "/plugins/restart"
	RoutePluginDevice  = "/plugins/devices/{id}/{action}"
	RoutePluginConfig  = "/plugins/config"
	RoutePluginCommand = "/plugins/execute"

	// UI state
	RouteTheme               = "/theme"
	RouteNotificationDismiss = "/notifications/{id}/dismiss"

	// Operational
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file...}"
)

// Treinos tabs
const (
	TabMeus       = "meus"
	TabCadastro   = "cadastro"
	TabBiblioteca = "biblioteca"
	TabHistorico  = "historico"
)
